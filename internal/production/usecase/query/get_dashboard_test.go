package query

import (
	"errors"
	"testing"
	"time"

	"github.com/tair/farm-management/internal/production/domain"
)

// fakeProductionRepo serves a fixed slice of items for query tests
type fakeProductionRepo struct {
	items   []domain.ProductionItem
	findErr error
}

func (f *fakeProductionRepo) Create(item *domain.ProductionItem) error { return nil }

func (f *fakeProductionRepo) FindByID(id uint) (*domain.ProductionItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProductionRepo) FindByOwner(ownerID uint, limit, offset int) ([]domain.ProductionItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var result []domain.ProductionItem
	for _, item := range f.items {
		if item.OwnerID == ownerID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeProductionRepo) FindByProduct(productID uint) ([]domain.ProductionItem, error) {
	return nil, nil
}

func (f *fakeProductionRepo) FindByStatus(ownerID uint, status domain.Status) ([]domain.ProductionItem, error) {
	var result []domain.ProductionItem
	for _, item := range f.items {
		if item.OwnerID == ownerID && item.Status == status {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeProductionRepo) UpdateStatus(id uint, status domain.Status) error { return nil }

func (f *fakeProductionRepo) SetAsHarvested(id uint, yield float64) error { return nil }

func plantedOn(owner uint, name string, date string) domain.ProductionItem {
	parsed, _ := time.Parse("2006-01-02", date)
	return domain.ProductionItem{
		OwnerID:     owner,
		ProductName: name,
		Status:      domain.StatusPlanted,
		PlantedDate: parsed,
	}
}

func harvestedOn(owner uint, name string, planted, harvested string) domain.ProductionItem {
	item := plantedOn(owner, name, planted)
	parsed, _ := time.Parse("2006-01-02", harvested)
	item.Status = domain.StatusHarvested
	item.HarvestedDate = &parsed
	return item
}

func TestProductionDashboard_Distribution(t *testing.T) {
	repo := &fakeProductionRepo{items: []domain.ProductionItem{
		plantedOn(10, "Tomatoes", "2025-01-01"),
		plantedOn(10, "Tomatoes", "2025-01-02"),
		plantedOn(10, "Potatoes", "2025-01-03"),
		plantedOn(10, "Carrots", "2025-01-04"),
	}}
	handler := NewGetDashboardHandler(repo)

	dashboard, err := handler.Handle(GetDashboardQuery{OwnerID: 10})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if dashboard.TotalItems != 4 {
		t.Errorf("expected 4 items, got %d", dashboard.TotalItems)
	}
	if len(dashboard.Distribution) != 3 {
		t.Fatalf("expected 3 products, got %d", len(dashboard.Distribution))
	}
	// Tomatoes 2/4 = 50%, sorted first
	if dashboard.Distribution[0].ProductName != "Tomatoes" || dashboard.Distribution[0].Percentage != 50 {
		t.Errorf("expected Tomatoes at 50%%, got %+v", dashboard.Distribution[0])
	}
	// Ties at 25% keep encounter order: Potatoes before Carrots
	if dashboard.Distribution[1].ProductName != "Potatoes" || dashboard.Distribution[1].Percentage != 25 {
		t.Errorf("expected Potatoes at 25%%, got %+v", dashboard.Distribution[1])
	}
	if dashboard.Distribution[2].ProductName != "Carrots" {
		t.Errorf("expected Carrots last, got %+v", dashboard.Distribution[2])
	}
}

func TestProductionDashboard_DistributionRounding(t *testing.T) {
	repo := &fakeProductionRepo{items: []domain.ProductionItem{
		plantedOn(10, "Tomatoes", "2025-01-01"),
		plantedOn(10, "Potatoes", "2025-01-02"),
		plantedOn(10, "Carrots", "2025-01-03"),
	}}
	handler := NewGetDashboardHandler(repo)

	dashboard, err := handler.Handle(GetDashboardQuery{OwnerID: 10})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	// 1/3 rounds to 33 for each; the sum is 99, not forced to 100
	for _, share := range dashboard.Distribution {
		if share.Percentage != 33 {
			t.Errorf("expected each share rounded to 33, got %+v", share)
		}
	}
}

func TestProductionDashboard_Trend(t *testing.T) {
	repo := &fakeProductionRepo{items: []domain.ProductionItem{
		harvestedOn(10, "Tomatoes", "2025-01-05", "2025-03-20"),
		plantedOn(10, "Tomatoes", "2025-03-01"),
		plantedOn(10, "Potatoes", "2025-01-15"),
	}}
	handler := NewGetDashboardHandler(repo)

	dashboard, err := handler.Handle(GetDashboardQuery{OwnerID: 10})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if len(dashboard.Trend) != 2 {
		t.Fatalf("expected 2 trend buckets, got %d", len(dashboard.Trend))
	}
	jan := dashboard.Trend[0]
	if jan.Year != 2025 || jan.Month != 1 || jan.Planted != 2 || jan.Harvested != 0 {
		t.Errorf("unexpected january bucket: %+v", jan)
	}
	mar := dashboard.Trend[1]
	if mar.Year != 2025 || mar.Month != 3 || mar.Planted != 1 || mar.Harvested != 1 {
		t.Errorf("unexpected march bucket: %+v", mar)
	}
}

func TestProductionDashboard_Empty(t *testing.T) {
	handler := NewGetDashboardHandler(&fakeProductionRepo{})

	dashboard, err := handler.Handle(GetDashboardQuery{OwnerID: 10})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if dashboard.TotalItems != 0 {
		t.Errorf("expected 0 items, got %d", dashboard.TotalItems)
	}
	if dashboard.Distribution == nil {
		t.Error("expected empty distribution slice, not nil")
	}
}

func TestProductionDashboard_RepoError(t *testing.T) {
	repo := &fakeProductionRepo{findErr: errors.New("connection refused")}
	handler := NewGetDashboardHandler(repo)

	if _, err := handler.Handle(GetDashboardQuery{OwnerID: 10}); err == nil {
		t.Error("expected error from repository to propagate")
	}
}

func TestProductionDashboard_MissingOwner(t *testing.T) {
	handler := NewGetDashboardHandler(&fakeProductionRepo{})
	if _, err := handler.Handle(GetDashboardQuery{}); err == nil {
		t.Error("expected validation error for missing owner_id")
	}
}
