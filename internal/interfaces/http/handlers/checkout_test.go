package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiEnv struct {
	router *gin.Engine
	codec  *token.Codec
	cfg    *config.Config
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:   config.AppConfig{Name: "storefront-test"},
		Token: config.TokenConfig{Key: "unit-test-token-key"},
		JWT: config.JWTConfig{
			Secret:            "unit-test-jwt-secret",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
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
		&customer.Customer{},
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

	router := gin.New()
	routes.SetupRoutes(router.Group("/api/v1"), db, nil, codec, cfg)

	return &apiEnv{router: router, codec: codec, cfg: cfg}
}

func (e *apiEnv) bearerFor(t *testing.T, customerID uint) string {
	t.Helper()

	signed, err := auth.NewJWTManager(e.cfg).
		GenerateAccessToken(e.codec.Encode(customerID), "jo@example.com")
	require.NoError(t, err)
	return "Bearer " + signed
}

func (e *apiEnv) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutFlow(t *testing.T) {
	env := newAPIEnv(t)
	bearer := env.bearerFor(t, 1)

	// Fill the cart: 2 laptops, 1 pair of headphones
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", bearer, gin.H{
		"product_id": env.codec.Encode(1),
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", bearer, gin.H{
		"product_id": env.codec.Encode(2),
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Place the order
	rec = env.do(t, http.MethodPost, "/api/v1/checkout", bearer, gin.H{
		"shipping_address": "123 Main St, Springfield",
		"payment_method":   "credit_card",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var placed struct {
		Data struct {
			OrderToken  string `json:"order_id"`
			TotalAmount int64  `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, int64(1319997), placed.Data.TotalAmount)
	require.NotEmpty(t, placed.Data.OrderToken)

	// The cart is empty afterwards
	rec = env.do(t, http.MethodGet, "/api/v1/cart", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched struct {
		Data struct {
			Items       []json.RawMessage `json:"items"`
			TotalAmount int64             `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Empty(t, fetched.Data.Items)
	assert.Zero(t, fetched.Data.TotalAmount)

	// A second checkout against the now-empty cart is a caller mistake
	rec = env.do(t, http.MethodPost, "/api/v1/checkout", bearer, gin.H{
		"shipping_address": "123 Main St, Springfield",
		"payment_method":   "credit_card",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your cart is empty")

	// The order shows up in the customer's history
	rec = env.do(t, http.MethodGet, "/api/v1/orders", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), placed.Data.OrderToken)

	// But not in anyone else's
	rec = env.do(t, http.MethodGet, "/api/v1/orders/"+placed.Data.OrderToken, env.bearerFor(t, 2), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_RequiresAuth(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", "", gin.H{
		"shipping_address": "123 Main St",
		"payment_method":   "credit_card",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", "Bearer not-a-jwt", gin.H{
		"shipping_address": "123 Main St",
		"payment_method":   "credit_card",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_MissingShippingAddress(t *testing.T) {
	env := newAPIEnv(t)
	bearer := env.bearerFor(t, 1)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", bearer, gin.H{
		"product_id": env.codec.Encode(1),
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", bearer, gin.H{
		"payment_method": "credit_card",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please provide a shipping address")
}

func TestCheckout_MissingPaymentMethod(t *testing.T) {
	env := newAPIEnv(t)
	bearer := env.bearerFor(t, 1)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", bearer, gin.H{
		"product_id": env.codec.Encode(1),
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The error names the field that is actually missing
	rec = env.do(t, http.MethodPost, "/api/v1/checkout", bearer, gin.H{
		"shipping_address": "123 Main St",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please provide a payment method")
}
