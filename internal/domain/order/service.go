// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when an order token resolves to no row
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition is returned for a status change the state machine forbids
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service owns the persisted order read and status-update paths. Order
// creation happens only through CreateTx, invoked by the checkout coordinator
// inside its transaction; everything else here runs as an independent
// single-statement operation that merely observes committed checkouts.
type Service struct {
	db     *gorm.DB
	codec  *token.Codec
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, codec *token.Codec, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		codec:  codec,
		config: cfg,
	}
}

// OrderItemView is the external representation of an order line
type OrderItemView struct {
	ProductToken string `json:"product_id"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	TotalPrice   int64  `json:"total_price"`
}

// OrderView is the external representation of an order
type OrderView struct {
	OrderToken      string          `json:"order_id"`
	CustomerToken   string          `json:"customer_id"`
	OrderDate       time.Time       `json:"order_date"`
	TotalAmount     int64           `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Notes           string          `json:"notes,omitempty"`
	Items           []OrderItemView `json:"items"`
}

// Statistics summarizes a customer's order history
type Statistics struct {
	TotalOrders       int64 `json:"total_orders"`
	TotalSpent        int64 `json:"total_spent"`
	AverageOrderValue int64 `json:"average_order_value"`
}

// CreateTx persists an order header and its lines inside the caller's
// transaction. The lines carry the caller's snapshotted unit prices verbatim;
// nothing here re-reads the catalog.
func (s *Service) CreateTx(tx *gorm.DB, ord *Order, items []OrderItem) error {
	if err := tx.Create(ord).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = ord.ID
		if err := tx.Create(&items[i]).Error; err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	ord.Items = items
	return nil
}

// GetOrder retrieves a single order with its lines
func (s *Service) GetOrder(ctx context.Context, orderToken string) (*OrderView, error) {
	orderID, err := s.codec.Decode(orderToken)
	if err != nil {
		return nil, err
	}

	var ord Order
	result := s.db.WithContext(ctx).First(&ord, orderID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	view, err := s.toView(ctx, &ord)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetOrdersByCustomer retrieves all of a customer's orders, newest first
func (s *Service) GetOrdersByCustomer(ctx context.Context, customerToken string) ([]OrderView, error) {
	return s.ordersByCustomer(ctx, customerToken, 0)
}

// RecentOrders retrieves the customer's most recent orders, newest first
func (s *Service) RecentOrders(ctx context.Context, customerToken string, limit int) ([]OrderView, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.ordersByCustomer(ctx, customerToken, limit)
}

// UpdateStatus applies a validated order-status transition
func (s *Service) UpdateStatus(ctx context.Context, orderToken string, status OrderStatus) error {
	orderID, err := s.codec.Decode(orderToken)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var ord Order
	if err := db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !isValidStatusTransition(ord.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ord.Status, status)
	}

	if err := db.Model(&ord).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdatePaymentStatus applies a validated payment-status transition
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderToken string, status PaymentStatus) error {
	orderID, err := s.codec.Decode(orderToken)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var ord Order
	if err := db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !(ord.PaymentStatus == PaymentStatusPending && status == PaymentStatusPaid) {
		return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, ord.PaymentStatus, status)
	}

	if err := db.Model(&ord).Update("payment_status", status).Error; err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

// GetStatistics summarizes the customer's order history
func (s *Service) GetStatistics(ctx context.Context, customerToken string) (*Statistics, error) {
	customerID, err := s.codec.Decode(customerToken)
	if err != nil {
		return nil, err
	}

	// The average is derived in Go; SQL AVG comes back as a float and the
	// statistics stay in whole cents.
	var stats Statistics
	row := s.db.WithContext(ctx).Model(&Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_spent").
		Where("customer_id = ?", customerID).
		Row()
	if err := row.Scan(&stats.TotalOrders, &stats.TotalSpent); err != nil {
		return nil, fmt.Errorf("failed to compute order statistics: %w", err)
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalSpent / stats.TotalOrders
	}

	return &stats, nil
}

// Private helpers

func (s *Service) ordersByCustomer(ctx context.Context, customerToken string, limit int) ([]OrderView, error) {
	customerID, err := s.codec.Decode(customerToken)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("order_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		view, err := s.toView(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// itemRow is an order line joined with the product's current display name
type itemRow struct {
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice int64
}

func (s *Service) toView(ctx context.Context, ord *Order) (*OrderView, error) {
	var rows []itemRow
	err := s.db.WithContext(ctx).Table("order_items").
		Select("order_items.product_id, products.name, order_items.quantity, order_items.unit_price").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", ord.ID).
		Order("order_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order items: %w", err)
	}

	items := make([]OrderItemView, len(rows))
	for i, r := range rows {
		items[i] = OrderItemView{
			ProductToken: s.codec.Encode(r.ProductID),
			ProductName:  r.Name,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
			TotalPrice:   r.UnitPrice * int64(r.Quantity),
		}
	}

	return &OrderView{
		OrderToken:      s.codec.Encode(ord.ID),
		CustomerToken:   s.codec.Encode(ord.CustomerID),
		OrderDate:       ord.OrderDate,
		TotalAmount:     ord.TotalAmount,
		ShippingAddress: ord.ShippingAddress,
		BillingAddress:  ord.BillingAddress,
		Status:          ord.Status,
		PaymentMethod:   ord.PaymentMethod,
		PaymentStatus:   ord.PaymentStatus,
		Notes:           ord.Notes,
		Items:           items,
	}, nil
}

func isValidStatusTransition(from, to OrderStatus) bool {
	validTransitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered},
	}

	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
