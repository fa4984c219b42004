package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tair/farm-management/internal/sale/domain"
)

type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Sale{}, &domain.SaleItem{})
}

func (r *GormSaleRepository) Create(sale *domain.Sale) error {
	return r.db.Create(sale).Error
}

func (r *GormSaleRepository) FindByID(id uint) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.Preload("Items").First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *GormSaleRepository) FindByOwner(ownerID uint, limit, offset int) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := r.db.Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("sale_date DESC").
		Limit(limit).Offset(offset).
		Find(&sales).Error
	return sales, err
}

func (r *GormSaleRepository) FindByDateRange(ownerID uint, from, to time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := r.db.Preload("Items").
		Where("owner_id = ? AND sale_date >= ? AND sale_date <= ?", ownerID, from, to).
		Order("sale_date ASC").
		Find(&sales).Error
	return sales, err
}

func (r *GormSaleRepository) FindByClient(ownerID uint, clientName string) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := r.db.Preload("Items").
		Where("owner_id = ? AND client_name = ?", ownerID, clientName).
		Order("sale_date DESC").
		Find(&sales).Error
	return sales, err
}

func (r *GormSaleRepository) GetTotalSalesAmount(ownerID uint) (float64, error) {
	var total float64
	err := r.db.Model(&domain.Sale{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

// UpdateProfit patches the sale in place after reconciliation: each line that
// got a computed profit, and the aggregate total.
func (r *GormSaleRepository) UpdateProfit(saleID uint, items []domain.SaleItem, totalProfit float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.Profit == nil {
				continue
			}
			if err := tx.Model(&domain.SaleItem{}).
				Where("id = ? AND sale_id = ?", item.ID, saleID).
				Update("profit", *item.Profit).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&domain.Sale{}).
			Where("id = ?", saleID).
			Update("total_profit", totalProfit)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
