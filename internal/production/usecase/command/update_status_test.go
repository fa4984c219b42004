package command

import (
	"errors"
	"testing"
	"time"

	"github.com/tair/farm-management/internal/production/domain"
)

// mockProductionRepo is an in-memory ProductionRepository for handler tests.
type mockProductionRepo struct {
	items map[uint]*domain.ProductionItem

	updateStatusCalls int
	harvestCalls      int
}

func newMockProductionRepo(items ...*domain.ProductionItem) *mockProductionRepo {
	repo := &mockProductionRepo{items: make(map[uint]*domain.ProductionItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (m *mockProductionRepo) Create(item *domain.ProductionItem) error {
	item.ID = uint(len(m.items) + 1)
	m.items[item.ID] = item
	return nil
}

func (m *mockProductionRepo) FindByID(id uint) (*domain.ProductionItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *mockProductionRepo) FindByOwner(ownerID uint, limit, offset int) ([]domain.ProductionItem, error) {
	var result []domain.ProductionItem
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockProductionRepo) FindByProduct(productID uint) ([]domain.ProductionItem, error) {
	var result []domain.ProductionItem
	for _, item := range m.items {
		if item.ProductID == productID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockProductionRepo) FindByStatus(ownerID uint, status domain.Status) ([]domain.ProductionItem, error) {
	var result []domain.ProductionItem
	for _, item := range m.items {
		if item.OwnerID == ownerID && item.Status == status {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockProductionRepo) UpdateStatus(id uint, status domain.Status) error {
	item, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.updateStatusCalls++
	item.Status = status
	return nil
}

func (m *mockProductionRepo) SetAsHarvested(id uint, yield float64) error {
	item, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if item.Status == domain.StatusHarvested {
		return domain.ErrNotFound
	}
	m.harvestCalls++
	now := time.Now()
	item.Status = domain.StatusHarvested
	item.Yield = &yield
	item.HarvestedDate = &now
	return nil
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	repo := newMockProductionRepo(&domain.ProductionItem{
		ID:          1,
		OwnerID:     10,
		ProductID:   3,
		ProductName: "Tomatoes",
		Unit:        "kg",
		Status:      domain.StatusPlanted,
		PlantedDate: time.Now().AddDate(0, -2, 0),
	})
	handler := NewUpdateStatusHandler(repo)

	result, err := handler.Handle(UpdateStatusCommand{ItemID: 1, Status: domain.StatusInProduction})
	if err != nil {
		t.Fatalf("planted -> in_production failed: %v", err)
	}
	if result.Previous.Status != domain.StatusPlanted {
		t.Errorf("expected previous status planted, got %s", result.Previous.Status)
	}
	if result.Updated.Status != domain.StatusInProduction {
		t.Errorf("expected updated status in_production, got %s", result.Updated.Status)
	}

	yield := 150.0
	result, err = handler.Handle(UpdateStatusCommand{ItemID: 1, Status: domain.StatusHarvested, YieldAmount: &yield})
	if err != nil {
		t.Fatalf("in_production -> harvested failed: %v", err)
	}
	if result.Updated.Status != domain.StatusHarvested {
		t.Errorf("expected updated status harvested, got %s", result.Updated.Status)
	}
	if result.Updated.Yield == nil || *result.Updated.Yield != 150.0 {
		t.Errorf("expected yield 150.0 stamped on the item, got %v", result.Updated.Yield)
	}
	if result.Updated.HarvestedDate == nil {
		t.Error("expected harvested date to be stamped")
	}
	if repo.harvestCalls != 1 {
		t.Errorf("expected exactly one harvest write, got %d", repo.harvestCalls)
	}
}

func TestUpdateStatus_SkipPhaseRejected(t *testing.T) {
	repo := newMockProductionRepo(&domain.ProductionItem{
		ID:     1,
		Status: domain.StatusPlanted,
	})
	handler := NewUpdateStatusHandler(repo)

	yield := 50.0
	_, err := handler.Handle(UpdateStatusCommand{ItemID: 1, Status: domain.StatusHarvested, YieldAmount: &yield})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Kind != domain.KindSkipPhase {
		t.Errorf("expected skip_phase, got %s", validationErr.Kind)
	}
	if repo.harvestCalls != 0 {
		t.Errorf("rejected transition must not write, got %d harvest calls", repo.harvestCalls)
	}
}

func TestUpdateStatus_TerminalState(t *testing.T) {
	yield := 80.0
	repo := newMockProductionRepo(&domain.ProductionItem{
		ID:     1,
		Status: domain.StatusHarvested,
		Yield:  &yield,
	})
	handler := NewUpdateStatusHandler(repo)

	_, err := handler.Handle(UpdateStatusCommand{ItemID: 1, Status: domain.StatusPlanted})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Kind != domain.KindTerminalState {
		t.Errorf("expected terminal_state, got %s", validationErr.Kind)
	}
}

func TestUpdateStatus_HarvestRequiresYield(t *testing.T) {
	repo := newMockProductionRepo(&domain.ProductionItem{
		ID:     1,
		Status: domain.StatusInProduction,
	})
	handler := NewUpdateStatusHandler(repo)

	if _, err := handler.Handle(UpdateStatusCommand{ItemID: 1, Status: domain.StatusHarvested}); err == nil {
		t.Error("expected error when harvesting without yield")
	}

	zero := 0.0
	if _, err := handler.Handle(UpdateStatusCommand{ItemID: 1, Status: domain.StatusHarvested, YieldAmount: &zero}); err == nil {
		t.Error("expected error when harvesting with zero yield")
	}
	if repo.harvestCalls != 0 {
		t.Errorf("expected no harvest writes, got %d", repo.harvestCalls)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo := newMockProductionRepo()
	handler := NewUpdateStatusHandler(repo)

	_, err := handler.Handle(UpdateStatusCommand{ItemID: 99, Status: domain.StatusInProduction})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := newMockProductionRepo(&domain.ProductionItem{ID: 1, Status: domain.StatusPlanted})
	handler := NewUpdateStatusHandler(repo)

	if _, err := handler.Handle(UpdateStatusCommand{ItemID: 1, Status: "rotten"}); err == nil {
		t.Error("expected error for unknown status")
	}
}
