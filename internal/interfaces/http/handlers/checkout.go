// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

// CheckoutHandler handles cart-to-order conversion
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, codec *token.Codec, cfg *config.Config) *CheckoutHandler {
	carts := cart.NewService(db, codec, cfg)
	orders := order.NewService(db, codec, cfg)

	return &CheckoutHandler{
		checkoutService: checkout.NewService(db, codec, carts, orders, cfg),
		config:          cfg,
	}
}

// Checkout handles POST /checkout. The customer identity comes from the
// authenticated session, never from the request body.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	customerToken, ok := middleware.GetCustomerTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	req.CustomerToken = customerToken

	result, err := h.checkoutService.CreateOrderFromCart(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}
