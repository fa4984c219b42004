package domain

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog entry. The catalog is owned by catalog
// management; this core only reads it (name, unit, cost per unit).
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Unit        string         `json:"unit" gorm:"not null;default:'kg'"`
	CostPerUnit float64        `json:"cost_per_unit" gorm:"not null;default:0"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// ProductRepository defines the read-only contract for catalog access
type ProductRepository interface {
	FindByID(id uint) (*Product, error)
	FindAll(limit, offset int) ([]Product, error)
}
