package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a production item id does not resolve
var ErrNotFound = errors.New("production item not found")

// ProductionItem represents one planting-to-harvest cycle
type ProductionItem struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	OwnerID             uint           `json:"owner_id" gorm:"not null;index"`
	ProductID           uint           `json:"product_id" gorm:"not null;index"`
	ProductName         string         `json:"product_name" gorm:"not null"`
	Unit                string         `json:"unit" gorm:"not null;default:'kg'"`
	Status              Status         `json:"status" gorm:"not null;default:'planted';index"`
	PlantedDate         time.Time      `json:"planted_date" gorm:"not null"`
	ExpectedHarvestDate time.Time      `json:"expected_harvest_date"`
	HarvestedDate       *time.Time     `json:"harvested_date,omitempty"`
	Yield               *float64       `json:"yield,omitempty"`
	Location            string         `json:"location" gorm:"default:'field'"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (ProductionItem) TableName() string {
	return "production_items"
}

// IsHarvested reports whether the cycle has reached its terminal state
func (p *ProductionItem) IsHarvested() bool {
	return p.Status == StatusHarvested
}

// ReadyToHarvest reports whether the item is past its expected harvest date
// but has not been harvested yet
func (p *ProductionItem) ReadyToHarvest(now time.Time) bool {
	return p.Status != StatusHarvested && !p.ExpectedHarvestDate.After(now)
}

// ProductionRepository defines the contract for production item data access
type ProductionRepository interface {
	Create(item *ProductionItem) error
	FindByID(id uint) (*ProductionItem, error)
	FindByOwner(ownerID uint, limit, offset int) ([]ProductionItem, error)
	FindByProduct(productID uint) ([]ProductionItem, error)
	FindByStatus(ownerID uint, status Status) ([]ProductionItem, error)
	UpdateStatus(id uint, status Status) error
	SetAsHarvested(id uint, yield float64) error
}
