package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	inventorydomain "github.com/tair/farm-management/internal/inventory/domain"
	productdomain "github.com/tair/farm-management/internal/product/domain"
	"github.com/tair/farm-management/internal/sale/domain"
)

// RegisterSaleItem is one requested line of a sale
type RegisterSaleItem struct {
	ProductID    uint
	Quantity     float64
	PricePerUnit float64
}

// RegisterSaleCommand represents the command to register a sale
type RegisterSaleCommand struct {
	OwnerID    uint
	ClientName string
	SaleDate   time.Time
	Items      []RegisterSaleItem
}

// RegisterSaleHandler handles register sale command
type RegisterSaleHandler struct {
	repo      domain.SaleRepository
	inventory inventorydomain.InventoryRepository
	products  productdomain.ProductRepository
}

// NewRegisterSaleHandler creates a new register sale handler
func NewRegisterSaleHandler(
	repo domain.SaleRepository,
	inventory inventorydomain.InventoryRepository,
	products productdomain.ProductRepository,
) *RegisterSaleHandler {
	return &RegisterSaleHandler{repo: repo, inventory: inventory, products: products}
}

// Handle executes the register sale command.
//
// The inventory check here is a read-only point-in-time pre-check: the
// authoritative decrement happens later in the sale reconciliation trigger.
// Two sales racing on the same shrinking stock can both pass this check; the
// trigger resolves that by re-checking inside its own transaction. The sale
// is persisted without profit, which reconciliation fills in asynchronously.
func (h *RegisterSaleHandler) Handle(cmd RegisterSaleCommand) (*domain.Sale, error) {
	if cmd.OwnerID == 0 {
		return nil, fmt.Errorf("owner_id is required")
	}
	if cmd.ClientName == "" {
		return nil, fmt.Errorf("client_name is required")
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("at least one sale item is required")
	}

	saleDate := cmd.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	totalAmount := 0.0
	items := make([]domain.SaleItem, 0, len(cmd.Items))

	for _, line := range cmd.Items {
		if line.ProductID == 0 {
			return nil, fmt.Errorf("product_id is required for every sale item")
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be greater than 0")
		}
		if line.PricePerUnit < 0 {
			return nil, fmt.Errorf("price_per_unit cannot be negative")
		}

		stock, err := h.inventory.FindByOwnerAndProduct(cmd.OwnerID, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to check inventory for product %d: %w", line.ProductID, err)
		}

		productName := ""
		available := 0.0
		if stock != nil {
			productName = stock.ProductName
			available = stock.Quantity
		} else if product, lookupErr := h.products.FindByID(line.ProductID); lookupErr == nil {
			productName = product.Name
		}

		if stock == nil || stock.Quantity < line.Quantity {
			return nil, &domain.InsufficientInventoryError{
				ProductName: productName,
				Available:   available,
				Requested:   line.Quantity,
			}
		}

		items = append(items, domain.SaleItem{
			ProductID:    line.ProductID,
			ProductName:  productName,
			Quantity:     line.Quantity,
			PricePerUnit: line.PricePerUnit,
		})
		totalAmount += line.Quantity * line.PricePerUnit
	}

	sale := &domain.Sale{
		OwnerID:     cmd.OwnerID,
		Reference:   fmt.Sprintf("SAL-%s", uuid.New().String()[:8]),
		ClientName:  cmd.ClientName,
		SaleDate:    saleDate,
		Items:       items,
		TotalAmount: totalAmount,
	}

	if err := h.repo.Create(sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	return sale, nil
}
