// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/token"
)

// respondError translates domain errors into HTTP responses. Caller mistakes
// map to 4xx with a message safe to show an end user; transient conflicts map
// to 409 so clients know a retry may succeed; everything else collapses into a
// generic 500 that leaks no storage detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, token.ErrMalformedIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid identifier",
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Your cart is empty",
		})
	case errors.Is(err, checkout.ErrValidation):
		msg := "Please provide a shipping address"
		var ferr *checkout.FieldError
		if errors.As(err, &ferr) {
			msg = "Please provide a " + ferr.Field
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": msg,
		})
	case errors.Is(err, checkout.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Something went wrong, please try again",
		})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must be at least 1",
		})
	case errors.Is(err, cart.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Product is not available",
		})
	case errors.Is(err, cart.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart not found",
		})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found in cart",
		})
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, order.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, order.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status transition",
		})
	default:
		// Persistence failures and anything unclassified leak no detail
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong, please try again",
		})
	}
}
