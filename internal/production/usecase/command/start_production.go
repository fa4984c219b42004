package command

import (
	"fmt"
	"time"

	productdomain "github.com/tair/farm-management/internal/product/domain"
	"github.com/tair/farm-management/internal/production/domain"
)

// StartProductionCommand represents the command to start a production cycle
type StartProductionCommand struct {
	OwnerID             uint
	ProductID           uint
	ExpectedHarvestDate time.Time
	Location            string
}

// StartProductionHandler handles start production command
type StartProductionHandler struct {
	repo     domain.ProductionRepository
	products productdomain.ProductRepository
}

// NewStartProductionHandler creates a new start production handler
func NewStartProductionHandler(repo domain.ProductionRepository, products productdomain.ProductRepository) *StartProductionHandler {
	return &StartProductionHandler{repo: repo, products: products}
}

// Handle executes the start production command. The new item always enters
// the state machine at planted; no transition validation applies here.
func (h *StartProductionHandler) Handle(cmd StartProductionCommand) (*domain.ProductionItem, error) {
	if cmd.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}

	product, err := h.products.FindByID(cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", cmd.ProductID, err)
	}

	location := cmd.Location
	if location == "" {
		location = "field"
	}

	item := &domain.ProductionItem{
		OwnerID:             cmd.OwnerID,
		ProductID:           product.ID,
		ProductName:         product.Name,
		Unit:                product.Unit,
		Status:              domain.StatusPlanted,
		PlantedDate:         time.Now(),
		ExpectedHarvestDate: cmd.ExpectedHarvestDate,
		Location:            location,
	}

	if err := h.repo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create production item: %w", err)
	}

	return item, nil
}
