package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tair/farm-management/internal/production/domain"
)

type GormProductionRepository struct {
	db *gorm.DB
}

func NewGormProductionRepository(db *gorm.DB) *GormProductionRepository {
	return &GormProductionRepository{db: db}
}

func (r *GormProductionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.ProductionItem{})
}

func (r *GormProductionRepository) Create(item *domain.ProductionItem) error {
	return r.db.Create(item).Error
}

func (r *GormProductionRepository) FindByID(id uint) (*domain.ProductionItem, error) {
	var item domain.ProductionItem
	err := r.db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormProductionRepository) FindByOwner(ownerID uint, limit, offset int) ([]domain.ProductionItem, error) {
	var items []domain.ProductionItem
	err := r.db.Where("owner_id = ?", ownerID).
		Order("planted_date DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	return items, err
}

func (r *GormProductionRepository) FindByProduct(productID uint) ([]domain.ProductionItem, error) {
	var items []domain.ProductionItem
	err := r.db.Where("product_id = ?", productID).Find(&items).Error
	return items, err
}

func (r *GormProductionRepository) FindByStatus(ownerID uint, status domain.Status) ([]domain.ProductionItem, error) {
	var items []domain.ProductionItem
	err := r.db.Where("owner_id = ? AND status = ?", ownerID, status).Find(&items).Error
	return items, err
}

func (r *GormProductionRepository) UpdateStatus(id uint, status domain.Status) error {
	result := r.db.Model(&domain.ProductionItem{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetAsHarvested stamps the harvest transition: status, yield and the
// harvested date are written together, exactly once.
func (r *GormProductionRepository) SetAsHarvested(id uint, yield float64) error {
	now := time.Now()
	result := r.db.Model(&domain.ProductionItem{}).
		Where("id = ? AND status <> ?", id, domain.StatusHarvested).
		Updates(map[string]interface{}{
			"status":         domain.StatusHarvested,
			"yield":          yield,
			"harvested_date": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
