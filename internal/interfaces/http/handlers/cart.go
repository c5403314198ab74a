// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

// CartHandler handles shopping cart endpoints. Every operation resolves the
// cart through the authenticated customer's opaque token, so a customer can
// only ever touch their own cart.
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, codec *token.Codec, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, codec, cfg),
		config:      cfg,
	}
}

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change for a cart line
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	customerToken, ok := middleware.GetCustomerTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	resp, err := h.cartService.GetOrCreateCart(c.Request.Context(), customerToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    resp,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	customerToken, ok := middleware.GetCustomerTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	crt, err := h.cartService.GetOrCreateCart(c.Request.Context(), customerToken)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), crt.CartToken, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    resp,
	})
}

// UpdateItem handles PUT /cart/items/:productId. A quantity of zero or less
// removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	customerToken, ok := middleware.GetCustomerTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	crt, err := h.cartService.GetOrCreateCart(c.Request.Context(), customerToken)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.cartService.SetItemQuantity(c.Request.Context(), crt.CartToken, c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated successfully",
		"data":    resp,
	})
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	customerToken, ok := middleware.GetCustomerTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	crt, err := h.cartService.GetOrCreateCart(c.Request.Context(), customerToken)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.cartService.RemoveItem(c.Request.Context(), crt.CartToken, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    resp,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	customerToken, ok := middleware.GetCustomerTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	crt, err := h.cartService.GetOrCreateCart(c.Request.Context(), customerToken)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), crt.CartToken); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}
