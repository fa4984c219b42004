package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	inventorydomain "github.com/tair/farm-management/internal/inventory/domain"
	productdomain "github.com/tair/farm-management/internal/product/domain"
	"github.com/tair/farm-management/internal/sale/domain"
)

type stockKey struct {
	ownerID   uint
	productID uint
}

// stubInventoryRepo is a read-only stub: register-sale only consults the
// point-in-time finder, never the atomic mutations.
type stubInventoryRepo struct {
	entries map[stockKey]*inventorydomain.Inventory
	findErr error
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{entries: make(map[stockKey]*inventorydomain.Inventory)}
}

func (s *stubInventoryRepo) seed(ownerID, productID uint, name string, quantity float64) {
	s.entries[stockKey{ownerID, productID}] = &inventorydomain.Inventory{
		OwnerID:     ownerID,
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		Unit:        "kg",
	}
}

func (s *stubInventoryRepo) FindByOwner(ownerID uint) ([]inventorydomain.Inventory, error) {
	return nil, nil
}

func (s *stubInventoryRepo) FindByProduct(productID uint) ([]inventorydomain.Inventory, error) {
	return nil, nil
}

func (s *stubInventoryRepo) FindByOwnerAndProduct(ownerID, productID uint) (*inventorydomain.Inventory, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	entry, ok := s.entries[stockKey{ownerID, productID}]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (s *stubInventoryRepo) CreditHarvest(ctx context.Context, credit inventorydomain.HarvestCredit) error {
	return errors.New("not expected in register-sale")
}

func (s *stubInventoryRepo) DebitSale(ctx context.Context, ownerID, productID uint, quantity float64) (bool, error) {
	return false, errors.New("not expected in register-sale")
}

type stubSaleRepo struct {
	created *domain.Sale
}

func (s *stubSaleRepo) Create(sale *domain.Sale) error {
	sale.ID = 1
	s.created = sale
	return nil
}

func (s *stubSaleRepo) FindByID(id uint) (*domain.Sale, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSaleRepo) FindByOwner(ownerID uint, limit, offset int) ([]domain.Sale, error) {
	return nil, nil
}

func (s *stubSaleRepo) FindByDateRange(ownerID uint, from, to time.Time) ([]domain.Sale, error) {
	return nil, nil
}

func (s *stubSaleRepo) FindByClient(ownerID uint, clientName string) ([]domain.Sale, error) {
	return nil, nil
}

func (s *stubSaleRepo) GetTotalSalesAmount(ownerID uint) (float64, error) {
	return 0, nil
}

func (s *stubSaleRepo) UpdateProfit(saleID uint, items []domain.SaleItem, totalProfit float64) error {
	return nil
}

type stubProductRepo struct {
	products map[uint]*productdomain.Product
}

func (s *stubProductRepo) FindByID(id uint) (*productdomain.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not found", id)
	}
	return product, nil
}

func (s *stubProductRepo) FindAll(limit, offset int) ([]productdomain.Product, error) {
	return nil, nil
}

func TestRegisterSale_Success(t *testing.T) {
	inventory := newStubInventoryRepo()
	inventory.seed(10, 3, "Tomatoes", 145)
	repo := &stubSaleRepo{}
	handler := NewRegisterSaleHandler(repo, inventory, &stubProductRepo{})

	sale, err := handler.Handle(RegisterSaleCommand{
		OwnerID:    10,
		ClientName: "Restaurant Azure",
		Items: []RegisterSaleItem{
			{ProductID: 3, Quantity: 5, PricePerUnit: 10.0},
		},
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if sale.TotalAmount != 50.0 {
		t.Errorf("expected total amount 50.0, got %.2f", sale.TotalAmount)
	}
	if sale.TotalProfit != nil {
		t.Errorf("profit must be absent until reconciliation, got %v", *sale.TotalProfit)
	}
	if len(sale.Items) != 1 || sale.Items[0].ProductName != "Tomatoes" {
		t.Errorf("expected item named from the stock entry, got %+v", sale.Items)
	}
	if !strings.HasPrefix(sale.Reference, "SAL-") {
		t.Errorf("expected generated reference, got %q", sale.Reference)
	}
	if repo.created == nil {
		t.Error("expected sale to be persisted")
	}
}

func TestRegisterSale_InsufficientInventory(t *testing.T) {
	inventory := newStubInventoryRepo()
	inventory.seed(10, 3, "Tomatoes", 145)
	repo := &stubSaleRepo{}
	handler := NewRegisterSaleHandler(repo, inventory, &stubProductRepo{})

	_, err := handler.Handle(RegisterSaleCommand{
		OwnerID:    10,
		ClientName: "Restaurant Azure",
		Items: []RegisterSaleItem{
			{ProductID: 3, Quantity: 200, PricePerUnit: 10.0},
		},
	})

	var insufficientErr *domain.InsufficientInventoryError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if insufficientErr.ProductName != "Tomatoes" {
		t.Errorf("expected product name Tomatoes, got %q", insufficientErr.ProductName)
	}
	if insufficientErr.Available != 145 {
		t.Errorf("expected available 145, got %.2f", insufficientErr.Available)
	}
	if insufficientErr.Requested != 200 {
		t.Errorf("expected requested 200, got %.2f", insufficientErr.Requested)
	}
	if repo.created != nil {
		t.Error("rejected sale must not be persisted")
	}
}

func TestRegisterSale_NoStockEntryUsesCatalogName(t *testing.T) {
	inventory := newStubInventoryRepo() // no entry at all
	products := &stubProductRepo{products: map[uint]*productdomain.Product{
		3: {ID: 3, Name: "Tomatoes", Unit: "kg"},
	}}
	handler := NewRegisterSaleHandler(&stubSaleRepo{}, inventory, products)

	_, err := handler.Handle(RegisterSaleCommand{
		OwnerID:    10,
		ClientName: "Restaurant Azure",
		Items: []RegisterSaleItem{
			{ProductID: 3, Quantity: 1, PricePerUnit: 10.0},
		},
	})

	var insufficientErr *domain.InsufficientInventoryError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if insufficientErr.ProductName != "Tomatoes" {
		t.Errorf("expected name resolved from catalog, got %q", insufficientErr.ProductName)
	}
	if insufficientErr.Available != 0 {
		t.Errorf("expected available 0 for missing entry, got %.2f", insufficientErr.Available)
	}
}

func TestRegisterSale_MultipleItems(t *testing.T) {
	inventory := newStubInventoryRepo()
	inventory.seed(10, 3, "Tomatoes", 100)
	inventory.seed(10, 4, "Potatoes", 100)
	repo := &stubSaleRepo{}
	handler := NewRegisterSaleHandler(repo, inventory, &stubProductRepo{})

	sale, err := handler.Handle(RegisterSaleCommand{
		OwnerID:    10,
		ClientName: "Restaurant Azure",
		SaleDate:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Items: []RegisterSaleItem{
			{ProductID: 3, Quantity: 5, PricePerUnit: 10.0},
			{ProductID: 4, Quantity: 10, PricePerUnit: 3.0},
		},
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	// 5*10 + 10*3 = 80
	if sale.TotalAmount != 80.0 {
		t.Errorf("expected total amount 80.0, got %.2f", sale.TotalAmount)
	}
	if !sale.SaleDate.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected explicit sale date preserved, got %v", sale.SaleDate)
	}
}

func TestRegisterSale_Validation(t *testing.T) {
	inventory := newStubInventoryRepo()
	inventory.seed(10, 3, "Tomatoes", 100)
	handler := NewRegisterSaleHandler(&stubSaleRepo{}, inventory, &stubProductRepo{})

	cases := []struct {
		name string
		cmd  RegisterSaleCommand
	}{
		{"missing owner", RegisterSaleCommand{ClientName: "c", Items: []RegisterSaleItem{{ProductID: 3, Quantity: 1, PricePerUnit: 1}}}},
		{"missing client", RegisterSaleCommand{OwnerID: 10, Items: []RegisterSaleItem{{ProductID: 3, Quantity: 1, PricePerUnit: 1}}}},
		{"no items", RegisterSaleCommand{OwnerID: 10, ClientName: "c"}},
		{"zero quantity", RegisterSaleCommand{OwnerID: 10, ClientName: "c", Items: []RegisterSaleItem{{ProductID: 3, Quantity: 0, PricePerUnit: 1}}}},
		{"negative price", RegisterSaleCommand{OwnerID: 10, ClientName: "c", Items: []RegisterSaleItem{{ProductID: 3, Quantity: 1, PricePerUnit: -1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := handler.Handle(tc.cmd); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
