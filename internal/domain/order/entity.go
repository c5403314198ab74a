// internal/domain/order/entity.go
package order

import (
	"time"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents payment status, an axis independent of the order
// status.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Order is an immutable record of a completed checkout. TotalAmount is fixed
// at creation and never recomputed; only the two status fields change after
// commit, and only through the explicit update operations.
type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	CustomerID      uint          `gorm:"not null;index" json:"customer_id"`
	OrderDate       time.Time     `gorm:"not null" json:"order_date"`
	TotalAmount     int64         `gorm:"not null" json:"total_amount"` // In cents
	ShippingAddress string        `gorm:"not null;type:text" json:"shipping_address"`
	BillingAddress  string        `gorm:"not null;type:text" json:"billing_address"`
	Status          OrderStatus   `gorm:"not null;default:'pending';size:20" json:"status"`
	PaymentMethod   string        `gorm:"not null;size:50" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"not null;default:'pending';size:20" json:"payment_status"`
	Notes           string        `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a price-frozen copy of a cart line. UnitPrice is the catalog
// price at order-creation time; later catalog changes never reach it. Lines
// are written exactly once, atomically with their parent order.
type OrderItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	ProductID uint  `gorm:"not null;index" json:"product_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"` // In cents
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// CanBeCancelled reports whether the order is still in a pre-shipped state
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}
