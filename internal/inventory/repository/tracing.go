package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/tair/farm-management/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// GormInventoryRepositoryWithTracing wraps GormInventoryRepository with tracing
type GormInventoryRepositoryWithTracing struct {
	*GormInventoryRepository
}

// NewGormInventoryRepositoryWithTracing creates a new repository with tracing
func NewGormInventoryRepositoryWithTracing(db *gorm.DB) *GormInventoryRepositoryWithTracing {
	return &GormInventoryRepositoryWithTracing{
		GormInventoryRepository: NewGormInventoryRepository(db),
	}
}

// CreditHarvest with tracing
func (r *GormInventoryRepositoryWithTracing) CreditHarvest(ctx context.Context, credit domain.HarvestCredit) error {
	ctx, span := tracer.Start(ctx, "repository.CreditHarvest")
	span.SetAttributes(
		attribute.Int("inventory.owner_id", int(credit.OwnerID)),
		attribute.Int("inventory.product_id", int(credit.ProductID)),
		attribute.Float64("inventory.yield", credit.Yield),
		attribute.Int("inventory.harvest_id", int(credit.HarvestID)),
	)
	defer span.End()

	err := r.GormInventoryRepository.CreditHarvest(ctx, credit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// DebitSale with tracing
func (r *GormInventoryRepositoryWithTracing) DebitSale(ctx context.Context, ownerID, productID uint, quantity float64) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.DebitSale")
	span.SetAttributes(
		attribute.Int("inventory.owner_id", int(ownerID)),
		attribute.Int("inventory.product_id", int(productID)),
		attribute.Float64("inventory.quantity", quantity),
	)
	defer span.End()

	debited, err := r.GormInventoryRepository.DebitSale(ctx, ownerID, productID, quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	span.SetAttributes(attribute.Bool("inventory.debited", debited))
	return debited, nil
}
