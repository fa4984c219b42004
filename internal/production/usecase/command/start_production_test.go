package command

import (
	"fmt"
	"testing"
	"time"

	productdomain "github.com/tair/farm-management/internal/product/domain"
	"github.com/tair/farm-management/internal/production/domain"
)

type mockProductRepo struct {
	products map[uint]*productdomain.Product
}

func (m *mockProductRepo) FindByID(id uint) (*productdomain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not found", id)
	}
	return product, nil
}

func (m *mockProductRepo) FindAll(limit, offset int) ([]productdomain.Product, error) {
	return nil, nil
}

func TestStartProduction_Success(t *testing.T) {
	repo := newMockProductionRepo()
	products := &mockProductRepo{products: map[uint]*productdomain.Product{
		3: {ID: 3, Name: "Tomatoes", Unit: "kg"},
	}}
	handler := NewStartProductionHandler(repo, products)

	expected := time.Now().AddDate(0, 3, 0)
	item, err := handler.Handle(StartProductionCommand{
		OwnerID:             10,
		ProductID:           3,
		ExpectedHarvestDate: expected,
		Location:            "greenhouse 2",
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if item.Status != domain.StatusPlanted {
		t.Errorf("new item must enter at planted, got %s", item.Status)
	}
	if item.ProductName != "Tomatoes" || item.Unit != "kg" {
		t.Errorf("expected name and unit from the catalog, got %q %q", item.ProductName, item.Unit)
	}
	if item.Location != "greenhouse 2" {
		t.Errorf("expected explicit location kept, got %q", item.Location)
	}
	if item.PlantedDate.IsZero() {
		t.Error("expected planted date stamped")
	}
	if item.ID == 0 {
		t.Error("expected item persisted with an id")
	}
}

func TestStartProduction_DefaultLocation(t *testing.T) {
	repo := newMockProductionRepo()
	products := &mockProductRepo{products: map[uint]*productdomain.Product{
		3: {ID: 3, Name: "Tomatoes", Unit: "kg"},
	}}
	handler := NewStartProductionHandler(repo, products)

	item, err := handler.Handle(StartProductionCommand{OwnerID: 10, ProductID: 3})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if item.Location != "field" {
		t.Errorf("expected default location field, got %q", item.Location)
	}
}

func TestStartProduction_UnknownProduct(t *testing.T) {
	handler := NewStartProductionHandler(newMockProductionRepo(), &mockProductRepo{})

	if _, err := handler.Handle(StartProductionCommand{OwnerID: 10, ProductID: 99}); err == nil {
		t.Error("expected error for unknown product")
	}
}

func TestStartProduction_Validation(t *testing.T) {
	handler := NewStartProductionHandler(newMockProductionRepo(), &mockProductRepo{})

	if _, err := handler.Handle(StartProductionCommand{ProductID: 3}); err == nil {
		t.Error("expected error for missing owner_id")
	}
	if _, err := handler.Handle(StartProductionCommand{OwnerID: 10}); err == nil {
		t.Error("expected error for missing product_id")
	}
}
