package query

import (
	"fmt"
	"time"

	"github.com/tair/farm-management/internal/production/domain"
)

// GetOverviewQuery represents the query to get the production overview
type GetOverviewQuery struct {
	OwnerID uint
}

// ProductionOverview partitions an owner's production items by lifecycle
// phase. ReadyToHarvest holds unharvested items past their expected harvest
// date; those items also appear in their phase bucket.
type ProductionOverview struct {
	Planted        []domain.ProductionItem `json:"planted"`
	InProduction   []domain.ProductionItem `json:"in_production"`
	Harvested      []domain.ProductionItem `json:"harvested"`
	ReadyToHarvest []domain.ProductionItem `json:"ready_to_harvest"`
}

// GetOverviewHandler handles get overview query
type GetOverviewHandler struct {
	repo domain.ProductionRepository
}

// NewGetOverviewHandler creates a new get overview handler
func NewGetOverviewHandler(repo domain.ProductionRepository) *GetOverviewHandler {
	return &GetOverviewHandler{repo: repo}
}

// Handle executes the get overview query. Pure filtering over a snapshot,
// no mutation.
func (h *GetOverviewHandler) Handle(query GetOverviewQuery) (*ProductionOverview, error) {
	if query.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}

	items, err := h.repo.FindByOwner(query.OwnerID, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load production items: %w", err)
	}

	now := time.Now()
	overview := &ProductionOverview{
		Planted:        []domain.ProductionItem{},
		InProduction:   []domain.ProductionItem{},
		Harvested:      []domain.ProductionItem{},
		ReadyToHarvest: []domain.ProductionItem{},
	}

	for _, item := range items {
		switch item.Status {
		case domain.StatusPlanted:
			overview.Planted = append(overview.Planted, item)
		case domain.StatusInProduction:
			overview.InProduction = append(overview.InProduction, item)
		case domain.StatusHarvested:
			overview.Harvested = append(overview.Harvested, item)
		}

		if item.ReadyToHarvest(now) {
			overview.ReadyToHarvest = append(overview.ReadyToHarvest, item)
		}
	}

	return overview, nil
}
