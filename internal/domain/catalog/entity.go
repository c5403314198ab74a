// internal/domain/catalog/entity.go
package catalog

import (
	"time"
)

// Category represents a product category
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents a catalog product. The checkout engine only reads this
// table; catalog maintenance happens elsewhere.
type Product struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"not null;size:255" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	Price         int64  `gorm:"not null" json:"price"` // In cents
	StockQuantity int    `gorm:"not null;default:0" json:"stock_quantity"`
	// No default tag: gorm skips zero-valued fields that carry one, so a
	// false here would be inserted as true.
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides
func (Category) TableName() string { return "categories" }
func (Product) TableName() string  { return "products" }

// InStock reports whether the requested quantity is available
func (p *Product) InStock(quantity int) bool {
	return p.StockQuantity >= quantity
}
