package query

import (
	"fmt"

	"github.com/tair/farm-management/internal/inventory/domain"
)

// GetOverviewQuery represents the query to get an owner's inventory overview
type GetOverviewQuery struct {
	OwnerID uint
}

// UnitTotal is the summed quantity for one unit of measure
type UnitTotal struct {
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// InventoryOverview is the owner's full stock snapshot
type InventoryOverview struct {
	Items         []domain.Inventory `json:"items"`
	TotalProducts int                `json:"total_products"`
	UnitTotals    []UnitTotal        `json:"unit_totals"`
	OutOfStock    int                `json:"out_of_stock"`
}

// GetOverviewHandler handles get overview query
type GetOverviewHandler struct {
	repo domain.InventoryRepository
}

// NewGetOverviewHandler creates a new get overview handler
func NewGetOverviewHandler(repo domain.InventoryRepository) *GetOverviewHandler {
	return &GetOverviewHandler{repo: repo}
}

// Handle executes the get overview query
func (h *GetOverviewHandler) Handle(query GetOverviewQuery) (*InventoryOverview, error) {
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}

	items, err := h.repo.FindByOwner(query.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	overview := &InventoryOverview{
		Items:         items,
		TotalProducts: len(items),
		UnitTotals:    []UnitTotal{},
	}

	totals := make(map[string]float64)
	order := []string{}
	for _, item := range items {
		if _, seen := totals[item.Unit]; !seen {
			order = append(order, item.Unit)
		}
		totals[item.Unit] += item.Quantity
		if item.Quantity <= 0 {
			overview.OutOfStock++
		}
	}

	for _, unit := range order {
		overview.UnitTotals = append(overview.UnitTotals, UnitTotal{Unit: unit, Quantity: totals[unit]})
	}

	return overview, nil
}
