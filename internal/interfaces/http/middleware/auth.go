// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// AuthMiddleware creates JWT authentication middleware. The validated claims
// carry the customer's opaque token, which is the only customer identity
// handlers ever see: a caller can operate solely on their own cart and
// orders because the token comes from the verified JWT, not from the request.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Validate access token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store customer information in context
		c.Set("customer_token", claims.CustomerToken)
		c.Set("customer_email", claims.Email)

		c.Next()
	}
}

// GetCustomerTokenFromContext extracts the customer's opaque token from gin context
func GetCustomerTokenFromContext(c *gin.Context) (string, bool) {
	tok, exists := c.Get("customer_token")
	if !exists {
		return "", false
	}
	return tok.(string), true
}
