package sale

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	inventorydomain "github.com/tair/farm-management/internal/inventory/domain"
	inventoryrepository "github.com/tair/farm-management/internal/inventory/repository"
	productdomain "github.com/tair/farm-management/internal/product/domain"
	productrepository "github.com/tair/farm-management/internal/product/repository"
	httpDelivery "github.com/tair/farm-management/internal/sale/delivery/http"
	"github.com/tair/farm-management/internal/sale/domain"
	"github.com/tair/farm-management/internal/sale/repository"
	"github.com/tair/farm-management/internal/sale/usecase/command"
	"github.com/tair/farm-management/internal/sale/usecase/query"
	"github.com/tair/farm-management/kafka"
)

// ProvideSaleRepository provides the sale repository
func ProvideSaleRepository(db *gorm.DB) domain.SaleRepository {
	return repository.NewGormSaleRepository(db)
}

// ProvideInventoryRepository provides the stock ledger used by the pre-check
func ProvideInventoryRepository(db *gorm.DB) inventorydomain.InventoryRepository {
	return inventoryrepository.NewGormInventoryRepositoryWithTracing(db)
}

// ProvideProductRepository provides the read-only catalog repository
func ProvideProductRepository(db *gorm.DB) productdomain.ProductRepository {
	return productrepository.NewGormProductRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideSaleRepository,
	ProvideInventoryRepository,
	ProvideProductRepository,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher, redisClient *redis.Client) (*httpDelivery.SaleHandler, error) {
	repo := ProvideSaleRepository(db)
	inventory := ProvideInventoryRepository(db)
	products := ProvideProductRepository(db)

	handler := httpDelivery.NewSaleHandler(
		command.NewRegisterSaleHandler(repo, inventory, products),
		query.NewListSalesHandler(repo),
		query.NewGetDashboardHandler(repo),
		repo,
		publisher,
		redisClient,
	)
	return handler, nil
}
