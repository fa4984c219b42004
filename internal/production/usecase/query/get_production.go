package query

import (
	"fmt"

	"github.com/tair/farm-management/internal/production/domain"
)

// GetProductionQuery represents the query to get a production item by id
type GetProductionQuery struct {
	ItemID uint
}

// GetProductionHandler handles get production query
type GetProductionHandler struct {
	repo domain.ProductionRepository
}

// NewGetProductionHandler creates a new get production handler
func NewGetProductionHandler(repo domain.ProductionRepository) *GetProductionHandler {
	return &GetProductionHandler{repo: repo}
}

// Handle executes the get production query
func (h *GetProductionHandler) Handle(query GetProductionQuery) (*domain.ProductionItem, error) {
	if query.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required")
	}
	return h.repo.FindByID(query.ItemID)
}
