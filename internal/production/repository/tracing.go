package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/tair/farm-management/internal/production/domain"
)

var tracer = otel.Tracer("production-repository")

// GormProductionRepositoryWithTracing wraps GormProductionRepository with tracing
type GormProductionRepositoryWithTracing struct {
	*GormProductionRepository
}

// NewGormProductionRepositoryWithTracing creates a new repository with tracing
func NewGormProductionRepositoryWithTracing(db *gorm.DB) *GormProductionRepositoryWithTracing {
	return &GormProductionRepositoryWithTracing{
		GormProductionRepository: NewGormProductionRepository(db),
	}
}

// CreateWithContext creates a production item with tracing
func (r *GormProductionRepositoryWithTracing) CreateWithContext(ctx context.Context, item *domain.ProductionItem) error {
	_, span := tracer.Start(ctx, "repository.Create")
	span.SetAttributes(
		attribute.Int("production.owner_id", int(item.OwnerID)),
		attribute.Int("production.product_id", int(item.ProductID)),
		attribute.String("production.status", string(item.Status)),
	)
	defer span.End()

	err := r.GormProductionRepository.Create(item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("production.id", int(item.ID)))
	return nil
}

// FindByIDWithContext loads a production item with tracing
func (r *GormProductionRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.ProductionItem, error) {
	_, span := tracer.Start(ctx, "repository.FindByID")
	span.SetAttributes(attribute.Int("production.id", int(id)))
	defer span.End()

	item, err := r.GormProductionRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("production.status", string(item.Status)),
		attribute.Int("production.product_id", int(item.ProductID)),
	)
	return item, nil
}

// UpdateStatusWithContext updates a production item status with tracing
func (r *GormProductionRepositoryWithTracing) UpdateStatusWithContext(ctx context.Context, id uint, status domain.Status) error {
	_, span := tracer.Start(ctx, "repository.UpdateStatus")
	span.SetAttributes(
		attribute.Int("production.id", int(id)),
		attribute.String("production.new_status", string(status)),
	)
	defer span.End()

	err := r.GormProductionRepository.UpdateStatus(id, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// SetAsHarvestedWithContext stamps the harvest transition with tracing
func (r *GormProductionRepositoryWithTracing) SetAsHarvestedWithContext(ctx context.Context, id uint, yield float64) error {
	_, span := tracer.Start(ctx, "repository.SetAsHarvested")
	span.SetAttributes(
		attribute.Int("production.id", int(id)),
		attribute.Float64("production.yield", yield),
	)
	defer span.End()

	err := r.GormProductionRepository.SetAsHarvested(id, yield)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
