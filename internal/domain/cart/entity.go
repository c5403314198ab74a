// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is the per-customer cart row. A customer has at most one cart,
// enforced by the unique index; the row is created lazily and never deleted,
// only emptied.
type Cart struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"uniqueIndex:idx_carts_customer;not null" json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CartItem is one product-and-quantity line in a cart. At most one line per
// (cart, product) pair; a duplicate add merges quantities instead.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_items_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_items_cart_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// Line is a cart line joined with the catalog's current name and price. It is
// the unit the coordinator snapshots at checkout: UnitPrice is read from the
// catalog at snapshot time, never trusted from an earlier UI read.
type Line struct {
	CartItemID  uint      `json:"-"`
	CartID      uint      `json:"-"`
	ProductID   uint      `json:"-"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"` // In cents
	AddedAt     time.Time `json:"added_at"`
}

// Subtotal returns quantity times unit price for this line
func (l *Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}
