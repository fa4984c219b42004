package production

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	productdomain "github.com/tair/farm-management/internal/product/domain"
	productrepository "github.com/tair/farm-management/internal/product/repository"
	httpDelivery "github.com/tair/farm-management/internal/production/delivery/http"
	"github.com/tair/farm-management/internal/production/domain"
	"github.com/tair/farm-management/internal/production/repository"
	"github.com/tair/farm-management/internal/production/usecase/command"
	"github.com/tair/farm-management/internal/production/usecase/query"
	"github.com/tair/farm-management/kafka"
)

// ProvideProductionRepository provides the production repository
func ProvideProductionRepository(db *gorm.DB) domain.ProductionRepository {
	return repository.NewGormProductionRepositoryWithTracing(db)
}

// ProvideProductRepository provides the read-only catalog repository
func ProvideProductRepository(db *gorm.DB) productdomain.ProductRepository {
	return productrepository.NewGormProductRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductionRepository,
	ProvideProductRepository,
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher) (*httpDelivery.ProductionHandler, error) {
	repo := ProvideProductionRepository(db)
	products := ProvideProductRepository(db)

	handler := httpDelivery.NewProductionHandler(
		command.NewStartProductionHandler(repo, products),
		command.NewUpdateStatusHandler(repo),
		query.NewGetProductionHandler(repo),
		query.NewListProductionHandler(repo),
		query.NewGetOverviewHandler(repo),
		query.NewGetDashboardHandler(repo),
		products,
		publisher,
	)
	return handler, nil
}
