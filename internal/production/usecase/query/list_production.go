package query

import (
	"fmt"

	"github.com/tair/farm-management/internal/production/domain"
)

// ListProductionQuery represents the query to list production items for an owner
type ListProductionQuery struct {
	OwnerID uint
	Status  domain.Status
	Limit   int
	Offset  int
}

// ListProductionHandler handles list production query
type ListProductionHandler struct {
	repo domain.ProductionRepository
}

// NewListProductionHandler creates a new list production handler
func NewListProductionHandler(repo domain.ProductionRepository) *ListProductionHandler {
	return &ListProductionHandler{repo: repo}
}

// Handle executes the list production query
func (h *ListProductionHandler) Handle(query ListProductionQuery) ([]domain.ProductionItem, error) {
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}

	if query.Status != "" {
		if !query.Status.IsValid() {
			return nil, fmt.Errorf("unknown status: %q", query.Status)
		}
		return h.repo.FindByStatus(query.OwnerID, query.Status)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	return h.repo.FindByOwner(query.OwnerID, limit, query.Offset)
}
