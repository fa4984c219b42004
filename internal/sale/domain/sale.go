package domain

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a sale id does not resolve
var ErrNotFound = errors.New("sale not found")

// Sale represents a completed transaction. TotalAmount is fixed at creation;
// TotalProfit is filled in asynchronously by reconciliation and is therefore
// eventually consistent, never atomic with creation.
type Sale struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	OwnerID     uint           `json:"owner_id" gorm:"not null;index"`
	Reference   string         `json:"reference" gorm:"not null;uniqueIndex"`
	ClientName  string         `json:"client_name" gorm:"not null;index"`
	SaleDate    time.Time      `json:"sale_date" gorm:"not null;index"`
	Items       []SaleItem     `json:"items" gorm:"foreignKey:SaleID"`
	TotalAmount float64        `json:"total_sale_amount" gorm:"not null"`
	TotalProfit *float64       `json:"total_sale_profit,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a sale. Profit is absent until the sale
// reconciliation trigger computes it from the catalog cost per unit.
type SaleItem struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	SaleID       uint     `json:"-" gorm:"not null;index"`
	ProductID    uint     `json:"product_id" gorm:"not null;index"`
	ProductName  string   `json:"product_name" gorm:"not null"`
	Quantity     float64  `json:"quantity" gorm:"not null"`
	PricePerUnit float64  `json:"price_per_unit" gorm:"not null"`
	Profit       *float64 `json:"profit,omitempty"`
}

// TableName specifies the table name
func (SaleItem) TableName() string {
	return "sale_items"
}

// Subtotal is the line amount (quantity x price per unit)
func (i SaleItem) Subtotal() float64 {
	return i.Quantity * i.PricePerUnit
}

// InsufficientInventoryError is returned by the register-sale pre-check when
// stock is lower than the requested quantity
type InsufficientInventoryError struct {
	ProductName string
	Available   float64
	Requested   float64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %q: available %.2f, required %.2f",
		e.ProductName, e.Available, e.Requested)
}

// SaleRepository defines the contract for sale data access
type SaleRepository interface {
	Create(sale *Sale) error
	FindByID(id uint) (*Sale, error)
	FindByOwner(ownerID uint, limit, offset int) ([]Sale, error)
	FindByDateRange(ownerID uint, from, to time.Time) ([]Sale, error)
	FindByClient(ownerID uint, clientName string) ([]Sale, error)
	GetTotalSalesAmount(ownerID uint) (float64, error)

	// UpdateProfit patches a sale in place with reconciled per-item profits
	// and the aggregate total profit.
	UpdateProfit(saleID uint, items []SaleItem, totalProfit float64) error
}
