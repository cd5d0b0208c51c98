package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the catalog.
// Deletion is a soft delete: DeletedAt is set and the row stays in
// storage, excluded from all default queries.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"uniqueIndex;not null"`
	CategoryID  uint            `gorm:"not null;index:idx_products_enabled_category,priority:2"`
	Category    Category        `gorm:"foreignKey:CategoryID"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       uint            `gorm:"not null;default:0"`
	Enabled     bool            `gorm:"not null;default:true;index:idx_products_enabled_category,priority:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (p *Product) TableName() string {
	return "products"
}
