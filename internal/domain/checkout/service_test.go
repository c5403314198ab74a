package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	codec    *token.Codec
	carts    *cart.Service
	orders   *order.Service
	checkout *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Token: config.TokenConfig{Key: "unit-test-token-key"},
	}
	codec := token.NewCodec(cfg)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	))

	products := []catalog.Product{
		{Name: "Widget Pro Laptop", Price: 644999, StockQuantity: 10, IsActive: true},
		{Name: "Wireless Headphones", Price: 29999, StockQuantity: 25, IsActive: true},
	}
	require.NoError(t, db.Create(&products).Error)

	carts := cart.NewService(db, codec, cfg)
	orders := order.NewService(db, codec, cfg)

	return &testEnv{
		db:       db,
		codec:    codec,
		carts:    carts,
		orders:   orders,
		checkout: NewService(db, codec, carts, orders, cfg),
	}
}

// fillCart puts two laptops and one pair of headphones in the customer's cart
func (e *testEnv) fillCart(t *testing.T, customerToken string) string {
	t.Helper()
	ctx := context.Background()

	crt, err := e.carts.GetOrCreateCart(ctx, customerToken)
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, crt.CartToken, e.codec.Encode(1), 2)
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, crt.CartToken, e.codec.Encode(2), 1)
	require.NoError(t, err)

	return crt.CartToken
}

func TestCreateOrderFromCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	result, err := env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St, Springfield",
		PaymentMethod:   "credit_card",
	})
	require.NoError(t, err)

	// 2 x 6449.99 + 1 x 299.99 = 13199.97
	assert.Equal(t, int64(1319997), result.TotalAmount)
	assert.NotEmpty(t, result.OrderToken)
	assert.False(t, result.OrderDate.IsZero())

	view, err := env.orders.GetOrder(ctx, result.OrderToken)
	require.NoError(t, err)
	assert.Equal(t, customerToken, view.CustomerToken)
	assert.Equal(t, order.OrderStatusPending, view.Status)
	assert.Equal(t, order.PaymentStatusPending, view.PaymentStatus)
	assert.Equal(t, "123 Main St, Springfield", view.ShippingAddress)
	// Billing defaults to shipping when absent
	assert.Equal(t, view.ShippingAddress, view.BillingAddress)
	require.Len(t, view.Items, 2)

	// The committed checkout emptied the cart
	crt, err := env.carts.GetOrCreateCart(ctx, customerToken)
	require.NoError(t, err)
	assert.Empty(t, crt.Items)
}

func TestCreateOrderFromCart_ExplicitBilling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	result, err := env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		BillingAddress:  "PO Box 7, Springfield",
		PaymentMethod:   "credit_card",
	})
	require.NoError(t, err)

	view, err := env.orders.GetOrder(ctx, result.OrderToken)
	require.NoError(t, err)
	assert.Equal(t, "PO Box 7, Springfield", view.BillingAddress)
}

func TestCreateOrderFromCart_FreezesUnitPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	result, err := env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	})
	require.NoError(t, err)

	// A catalog price change after commit must not reach the order
	require.NoError(t, env.db.Model(&catalog.Product{}).
		Where("id = ?", 1).Update("price", 999999).Error)

	view, err := env.orders.GetOrder(ctx, result.OrderToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1319997), view.TotalAmount)
	for _, item := range view.Items {
		if item.ProductToken == env.codec.Encode(1) {
			assert.Equal(t, int64(644999), item.UnitPrice)
		}
	}
}

func TestCreateOrderFromCart_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)

	// No cart at all
	_, err := env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)

	// A cart that exists but has no lines
	_, err = env.carts.GetOrCreateCart(ctx, customerToken)
	require.NoError(t, err)

	_, err = env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderFromCart_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	_, err := env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken: customerToken,
		PaymentMethod: "credit_card",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "   ",
		PaymentMethod:   "credit_card",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
	})
	assert.ErrorIs(t, err, ErrValidation)

	// The error names the missing field
	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "payment method", ferr.Field)

	// Validation failures never touch the cart
	crt, err := env.carts.GetOrCreateCart(ctx, customerToken)
	require.NoError(t, err)
	assert.Len(t, crt.Items, 2)
}

func TestCreateOrderFromCart_MalformedCustomerToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkout.CreateOrderFromCart(context.Background(), &CheckoutRequest{
		CustomerToken:   "garbage",
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	})
	assert.ErrorIs(t, err, token.ErrMalformedIdentifier)
}

func TestCreateOrderFromCart_SecondCheckoutFindsEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	req := &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	}

	_, err := env.checkout.CreateOrderFromCart(ctx, req)
	require.NoError(t, err)

	_, err = env.checkout.CreateOrderFromCart(ctx, req)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrderFromCart_ConcurrentCheckouts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	req := &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.checkout.CreateOrderFromCart(ctx, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// Exactly one checkout wins; the loser sees the emptied cart
	var committed, empty int
	for err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, empty)

	var count int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	crt, err := env.carts.GetOrCreateCart(ctx, customerToken)
	require.NoError(t, err)
	assert.Empty(t, crt.Items)
}

func TestCreateOrderFromCart_RollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customerToken := env.codec.Encode(1)
	env.fillCart(t, customerToken)

	// Break the order-item insert mid-transaction
	require.NoError(t, env.db.Migrator().DropTable(&order.OrderItem{}))

	_, err := env.checkout.CreateOrderFromCart(ctx, &CheckoutRequest{
		CustomerToken:   customerToken,
		ShippingAddress: "123 Main St",
		PaymentMethod:   "credit_card",
	})
	require.Error(t, err)

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)

	// No order header survived the rollback
	var count int64
	require.NoError(t, env.db.Model(&order.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	// The cart is exactly as it was
	crt, err := env.carts.GetOrCreateCart(ctx, customerToken)
	require.NoError(t, err)
	assert.Len(t, crt.Items, 2)
	assert.Equal(t, int64(1319997), crt.TotalAmount)
}
