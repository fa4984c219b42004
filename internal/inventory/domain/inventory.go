package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Inventory is the per (owner, product) stock ledger entry. Its quantity is
// the cumulative harvested yield minus the cumulative sold quantity; it is
// written only by the reconciliation triggers, never by user-facing use cases.
type Inventory struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	OwnerID       uint           `json:"owner_id" gorm:"not null;uniqueIndex:idx_owner_product"`
	ProductID     uint           `json:"product_id" gorm:"not null;uniqueIndex:idx_owner_product"`
	ProductName   string         `json:"product_name" gorm:"not null"`
	Quantity      float64        `json:"quantity" gorm:"not null;default:0"`
	Unit          string         `json:"unit" gorm:"not null;default:'kg'"`
	Version       int            `json:"-" gorm:"not null;default:0"`
	LastHarvestID uint           `json:"-" gorm:"not null;default:0"`
	LastUpdated   time.Time      `json:"last_updated"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Inventory) TableName() string {
	return "inventories"
}

// HarvestCredit is the payload of an atomic inventory credit. ProductName and
// Unit seed the ledger entry when it is lazily created on first harvest.
type HarvestCredit struct {
	OwnerID     uint
	ProductID   uint
	ProductName string
	Unit        string
	Yield       float64
	HarvestID   uint
}

// InventoryRepository defines the contract for stock ledger access.
//
// CreditHarvest and DebitSale are the only authoritative mutations: both run
// as atomic read-modify-writes and must retry internally on write conflicts.
// The plain finders are point-in-time reads and must not be relied upon for
// correctness of concurrent updates.
type InventoryRepository interface {
	FindByOwner(ownerID uint) ([]Inventory, error)
	FindByProduct(productID uint) ([]Inventory, error)
	FindByOwnerAndProduct(ownerID, productID uint) (*Inventory, error)

	// CreditHarvest adds yield to the (owner, product) entry, creating it if
	// missing. A credit already recorded for the same harvest id is a no-op.
	CreditHarvest(ctx context.Context, credit HarvestCredit) error

	// DebitSale decrements quantity if and only if at least that much stock
	// is available. It reports whether the debit was applied.
	DebitSale(ctx context.Context, ownerID, productID uint, quantity float64) (bool, error)
}
