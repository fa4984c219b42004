package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/farm-management/internal/inventory/delivery/http"
	"github.com/tair/farm-management/internal/inventory/domain"
	"github.com/tair/farm-management/internal/inventory/repository"
)

// ProvideInventoryRepository provides the inventory repository
func ProvideInventoryRepository(db *gorm.DB) domain.InventoryRepository {
	return repository.NewGormInventoryRepositoryWithTracing(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideInventoryRepository,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*httpDelivery.InventoryHandler, error) {
	repo := ProvideInventoryRepository(db)
	return httpDelivery.NewInventoryHandler(repo), nil
}
