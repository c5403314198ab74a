// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidQuantity is returned when an add specifies a non-positive quantity
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrProductUnavailable is returned when the product is missing, inactive or out of stock
	ErrProductUnavailable = errors.New("product not found or unavailable")

	// ErrCartNotFound is returned when a cart token resolves to no cart row
	ErrCartNotFound = errors.New("cart not found")

	// ErrLineNotFound is returned when updating or removing a line that is not in the cart
	ErrLineNotFound = errors.New("item not found in cart")
)

// Service owns persisted cart state. All public operations speak opaque
// tokens; the *Tx variants take the caller's transaction handle so the
// checkout coordinator can run reads and writes in one unit of work.
type Service struct {
	db     *gorm.DB
	codec  *token.Codec
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, codec *token.Codec, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		codec:  codec,
		config: cfg,
	}
}

// LineView is the external representation of a cart line
type LineView struct {
	ProductToken string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int       `json:"quantity"`
	UnitPrice    int64     `json:"unit_price"`
	Subtotal     int64     `json:"subtotal"`
	AddedAt      time.Time `json:"added_at"`
}

// CartResponse is the external representation of a cart. Total is derived
// from the lines, never stored.
type CartResponse struct {
	CartToken     string     `json:"cart_id"`
	CustomerToken string     `json:"customer_id"`
	Items         []LineView `json:"items"`
	TotalAmount   int64      `json:"total_amount"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GetOrCreateCart returns the customer's cart, creating an empty one on first
// use. The unique index on customer_id guards the create against a concurrent
// first add: the loser of that race re-reads the winner's row.
func (s *Service) GetOrCreateCart(ctx context.Context, customerToken string) (*CartResponse, error) {
	customerID, err := s.codec.Decode(customerToken)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var crt Cart
	result := db.Where("customer_id = ?", customerID).First(&crt)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to retrieve cart: %w", result.Error)
		}

		crt = Cart{CustomerID: customerID}
		if createErr := db.Create(&crt).Error; createErr != nil {
			// Unique violation means another request created it first.
			if refetch := db.Where("customer_id = ?", customerID).First(&crt); refetch.Error != nil {
				return nil, fmt.Errorf("failed to create cart: %w", createErr)
			}
		}
	}

	return s.buildResponse(db, &crt)
}

// AddItem appends a product to the cart. Adding a product that is already in
// the cart merges by summing quantities.
func (s *Service) AddItem(ctx context.Context, cartToken, productToken string, quantity int) (*CartResponse, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cartID, err := s.codec.Decode(cartToken)
	if err != nil {
		return nil, err
	}
	productID, err := s.codec.Decode(productToken)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var crt Cart
	if err := db.First(&crt, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	// Validate product exists, is active and has stock
	var prod catalog.Product
	if err := db.Where("id = ? AND is_active = ?", productID, true).First(&prod).Error; err != nil {
		return nil, ErrProductUnavailable
	}
	if !prod.InStock(quantity) {
		return nil, fmt.Errorf("%w: insufficient stock for %q", ErrProductUnavailable, prod.Name)
	}

	// Duplicate adds merge into the existing line
	item := CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	if err := s.touch(db, cartID); err != nil {
		return nil, err
	}

	return s.responseByID(db, cartID)
}

// SetItemQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line; a zero-quantity line never exists.
func (s *Service) SetItemQuantity(ctx context.Context, cartToken, productToken string, quantity int) (*CartResponse, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartToken, productToken)
	}

	cartID, err := s.codec.Decode(cartToken)
	if err != nil {
		return nil, err
	}
	productID, err := s.codec.Decode(productToken)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	result := db.Model(&CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update item quantity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLineNotFound
	}

	if err := s.touch(db, cartID); err != nil {
		return nil, err
	}

	return s.responseByID(db, cartID)
}

// RemoveItem removes a single line from the cart
func (s *Service) RemoveItem(ctx context.Context, cartToken, productToken string) (*CartResponse, error) {
	cartID, err := s.codec.Decode(cartToken)
	if err != nil {
		return nil, err
	}
	productID, err := s.codec.Decode(productToken)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	result := db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove item from cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLineNotFound
	}

	if err := s.touch(db, cartID); err != nil {
		return nil, err
	}

	return s.responseByID(db, cartID)
}

// Clear deletes all lines, leaving the cart row in place
func (s *Service) Clear(ctx context.Context, cartToken string) error {
	cartID, err := s.codec.Decode(cartToken)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	if err := s.ClearTx(db, cartID); err != nil {
		return err
	}
	return nil
}

// Snapshot returns a point-in-time read of the cart's lines joined with the
// catalog's current name and price, most-recently-added first.
func (s *Service) Snapshot(ctx context.Context, cartToken string) ([]LineView, error) {
	cartID, err := s.codec.Decode(cartToken)
	if err != nil {
		return nil, err
	}

	lines, err := s.LinesTx(s.db.WithContext(ctx), cartID)
	if err != nil {
		return nil, err
	}

	return s.toViews(lines), nil
}

// Transaction-scoped operations, called by the checkout coordinator with its
// own *gorm.DB so the snapshot, the order writes and the cart clear are one
// atomic unit.

// CartForCustomerTx resolves the customer's cart inside tx. With forUpdate
// set, the row is locked so a racing checkout or cart mutation for the same
// customer blocks until this transaction finishes. SQLite has no FOR UPDATE;
// it serializes writing transactions on its own.
func (s *Service) CartForCustomerTx(tx *gorm.DB, customerID uint, forUpdate bool) (*Cart, error) {
	query := tx.Where("customer_id = ?", customerID)
	if forUpdate && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var crt Cart
	if err := query.First(&crt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to resolve cart: %w", err)
	}
	return &crt, nil
}

// LinesTx reads the cart's lines joined with current catalog data inside tx
func (s *Service) LinesTx(tx *gorm.DB, cartID uint) ([]Line, error) {
	var lines []Line
	err := tx.Table("cart_items").
		Select("cart_items.id AS cart_item_id, cart_items.cart_id, cart_items.product_id, "+
			"cart_items.quantity, cart_items.created_at AS added_at, "+
			"products.name AS product_name, products.price AS unit_price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.created_at DESC, cart_items.id DESC").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}
	return lines, nil
}

// ClearTx deletes all of the cart's lines inside tx and bumps updated_at
func (s *Service) ClearTx(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return s.touch(tx, cartID)
}

// Private helpers

func (s *Service) touch(db *gorm.DB, cartID uint) error {
	if err := db.Model(&Cart{}).Where("id = ?", cartID).
		Update("updated_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to update cart timestamp: %w", err)
	}
	return nil
}

func (s *Service) responseByID(db *gorm.DB, cartID uint) (*CartResponse, error) {
	var crt Cart
	if err := db.First(&crt, cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return s.buildResponse(db, &crt)
}

func (s *Service) buildResponse(db *gorm.DB, crt *Cart) (*CartResponse, error) {
	lines, err := s.LinesTx(db, crt.ID)
	if err != nil {
		return nil, err
	}

	views := s.toViews(lines)

	var total int64
	for i := range lines {
		total += lines[i].Subtotal()
	}

	return &CartResponse{
		CartToken:     s.codec.Encode(crt.ID),
		CustomerToken: s.codec.Encode(crt.CustomerID),
		Items:         views,
		TotalAmount:   total,
		UpdatedAt:     crt.UpdatedAt,
	}, nil
}

func (s *Service) toViews(lines []Line) []LineView {
	views := make([]LineView, len(lines))
	for i := range lines {
		views[i] = LineView{
			ProductToken: s.codec.Encode(lines[i].ProductID),
			ProductName:  lines[i].ProductName,
			Quantity:     lines[i].Quantity,
			UnitPrice:    lines[i].UnitPrice,
			Subtotal:     lines[i].Subtotal(),
			AddedAt:      lines[i].AddedAt,
		}
	}
	return views
}
