// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

// Service is the order creation coordinator. It is the only writer allowed to
// turn cart lines into order lines, and it does so in a single transaction:
// a concurrent observer sees either the untouched cart or the committed order
// with an empty cart, never anything in between.
type Service struct {
	db     *gorm.DB
	codec  *token.Codec
	carts  *cart.Service
	orders *order.Service
	config *config.Config
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, codec *token.Codec, carts *cart.Service, orders *order.Service, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		codec:  codec,
		carts:  carts,
		orders: orders,
		config: cfg,
	}
}

// CheckoutRequest carries the checkout parameters. BillingAddress defaults to
// ShippingAddress when empty. Required fields are checked here rather than by
// binding tags, so a missing one surfaces as a FieldError naming the field.
type CheckoutRequest struct {
	CustomerToken   string `json:"-"`
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
}

// CheckoutResult is returned on a committed checkout
type CheckoutResult struct {
	OrderToken  string    `json:"order_id"`
	TotalAmount int64     `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}

// CreateOrderFromCart atomically converts the customer's cart into an order:
// snapshot the lines, compute the total from the prices read inside the
// transaction, persist the header and lines, clear the cart, commit. Any
// failure rolls the whole scope back and the cart is left exactly as it was.
//
// The coordinator does not deduplicate: two calls against a repopulated cart
// legitimately create two orders. Caller-level idempotency is the caller's
// concern.
func (s *Service) CreateOrderFromCart(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	// Validate before touching storage
	shipping := strings.TrimSpace(req.ShippingAddress)
	if shipping == "" {
		return nil, &FieldError{Field: "shipping address"}
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, &FieldError{Field: "payment method"}
	}

	billing := strings.TrimSpace(req.BillingAddress)
	if billing == "" {
		billing = shipping
	}

	customerID, err := s.codec.Decode(req.CustomerToken)
	if err != nil {
		return nil, err
	}

	var created order.Order

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the cart row so a racing checkout or mutation for this
		// customer serializes behind us
		crt, err := s.carts.CartForCustomerTx(tx, customerID, true)
		if err != nil {
			if errors.Is(err, cart.ErrCartNotFound) {
				return ErrEmptyCart
			}
			return &PersistenceError{Op: "resolve cart", Err: err}
		}

		// Snapshot the lines in the same transactional scope; these unit
		// prices are the ones the order freezes
		lines, err := s.carts.LinesTx(tx, crt.ID)
		if err != nil {
			return &PersistenceError{Op: "snapshot cart", Err: err}
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		var total int64
		for i := range lines {
			total += lines[i].Subtotal()
		}

		created = order.Order{
			CustomerID:      customerID,
			OrderDate:       time.Now().UTC(),
			TotalAmount:     total,
			ShippingAddress: shipping,
			BillingAddress:  billing,
			Status:          order.OrderStatusPending,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   order.PaymentStatusPending,
			Notes:           req.Notes,
		}

		items := make([]order.OrderItem, len(lines))
		for i := range lines {
			items[i] = order.OrderItem{
				ProductID: lines[i].ProductID,
				Quantity:  lines[i].Quantity,
				UnitPrice: lines[i].UnitPrice,
			}
		}

		if err := s.orders.CreateTx(tx, &created, items); err != nil {
			return &PersistenceError{Op: "create order", Err: err}
		}

		if err := s.carts.ClearTx(tx, crt.ID); err != nil {
			return &PersistenceError{Op: "clear cart", Err: err}
		}

		return nil
	})
	if err != nil {
		return nil, s.classify(err)
	}

	return &CheckoutResult{
		OrderToken:  s.codec.Encode(created.ID),
		TotalAmount: created.TotalAmount,
		OrderDate:   created.OrderDate,
	}, nil
}

// classify maps transaction failures onto the checkout error taxonomy. Our
// own typed errors pass through; cancellation and lock-wait expiry surface as
// a retryable conflict; anything else storage-side is wrapped.
func (s *Service) classify(err error) error {
	var pe *PersistenceError
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrValidation):
		return err
	case errors.As(err, &pe):
		if errors.Is(pe.Err, context.DeadlineExceeded) || errors.Is(pe.Err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrConflict, pe.Err)
		}
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return &PersistenceError{Op: "checkout transaction", Err: err}
	}
}
