package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tair/farm-management/internal/inventory/domain"
	"github.com/tair/farm-management/pkg/logger"
)

// ErrWriteConflict is returned when an optimistic concurrency check fails
var ErrWriteConflict = errors.New("inventory write conflict")

// maxRetries bounds the optimistic retry loop of CreditHarvest. Harvest
// events for the same (owner, product) pair can arrive concurrently.
const maxRetries = 5

type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Inventory{})
}

func (r *GormInventoryRepository) FindByOwner(ownerID uint) ([]domain.Inventory, error) {
	var inventories []domain.Inventory
	err := r.db.Where("owner_id = ?", ownerID).
		Order("product_name ASC").
		Find(&inventories).Error
	return inventories, err
}

func (r *GormInventoryRepository) FindByProduct(productID uint) ([]domain.Inventory, error) {
	var inventories []domain.Inventory
	err := r.db.Where("product_id = ?", productID).Find(&inventories).Error
	return inventories, err
}

func (r *GormInventoryRepository) FindByOwnerAndProduct(ownerID, productID uint) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := r.db.Where("owner_id = ? AND product_id = ?", ownerID, productID).
		First(&inventory).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}

// CreditHarvest applies one harvest credit inside a transaction, retrying on
// optimistic-lock conflicts. The credit is a no-op when the entry already
// records the same harvest id, which makes event redelivery safe.
func (r *GormInventoryRepository) CreditHarvest(ctx context.Context, credit domain.HarvestCredit) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = r.tryCredit(ctx, credit)
		if !errors.Is(lastErr, ErrWriteConflict) {
			return lastErr
		}
		logger.WithContext(ctx).Warn().
			Uint("owner_id", credit.OwnerID).
			Uint("product_id", credit.ProductID).
			Int("attempt", attempt+1).
			Msg("Inventory credit conflict, retrying")
	}
	return fmt.Errorf("credit harvest for owner %d product %d: %w", credit.OwnerID, credit.ProductID, lastErr)
}

func (r *GormInventoryRepository) tryCredit(ctx context.Context, credit domain.HarvestCredit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv domain.Inventory
		err := tx.Where("owner_id = ? AND product_id = ?", credit.OwnerID, credit.ProductID).
			First(&inv).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lazily created on first harvest, seeded from the catalog
			inv = domain.Inventory{
				OwnerID:       credit.OwnerID,
				ProductID:     credit.ProductID,
				ProductName:   credit.ProductName,
				Unit:          credit.Unit,
				Quantity:      credit.Yield,
				Version:       1,
				LastHarvestID: credit.HarvestID,
				LastUpdated:   time.Now(),
			}
			if createErr := tx.Create(&inv).Error; createErr != nil {
				// A concurrent first harvest won the unique (owner, product)
				// index; retry against the now-existing row.
				return ErrWriteConflict
			}
			return nil
		}
		if err != nil {
			return err
		}

		if inv.LastHarvestID == credit.HarvestID {
			// Already credited for this harvest, redelivered event
			return nil
		}

		result := tx.Model(&domain.Inventory{}).
			Where("id = ? AND version = ?", inv.ID, inv.Version).
			Updates(map[string]interface{}{
				"quantity":        gorm.Expr("quantity + ?", credit.Yield),
				"version":         inv.Version + 1,
				"last_harvest_id": credit.HarvestID,
				"last_updated":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrWriteConflict
		}
		return nil
	})
}

// DebitSale decrements stock with a single conditional update, so the
// sufficiency re-check and the decrement are one atomic statement. A false
// return means stock was insufficient (or the entry does not exist) at the
// time of the debit.
func (r *GormInventoryRepository) DebitSale(ctx context.Context, ownerID, productID uint, quantity float64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Inventory{}).
		Where("owner_id = ? AND product_id = ? AND quantity >= ?", ownerID, productID, quantity).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity - ?", quantity),
			"version":      gorm.Expr("version + 1"),
			"last_updated": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("debit sale for owner %d product %d: %w", ownerID, productID, result.Error)
	}
	return result.RowsAffected > 0, nil
}
