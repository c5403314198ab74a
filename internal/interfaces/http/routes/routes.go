// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes onto the versioned route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, codec *token.Codec, cfg *config.Config) {
	SetupAuthRoutes(rg, db, codec, cfg)
	SetupCatalogRoutes(rg, db, redisClient, codec, cfg)
	SetupCartRoutes(rg, db, codec, cfg)
	SetupCheckoutRoutes(rg, db, codec, cfg)
	SetupOrderRoutes(rg, db, codec, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, codec *token.Codec, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, codec, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

// SetupCatalogRoutes sets up product browsing routes
func SetupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, codec *token.Codec, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, redisClient, codec, cfg)

	products := rg.Group("/products")
	{
		products.GET("/search", catalogHandler.SearchProducts)
		products.GET("/:id", catalogHandler.GetProduct)
	}
}

// SetupCartRoutes sets up shopping cart routes
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, codec *token.Codec, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, codec, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:productId", cartHandler.UpdateItem)
		cart.DELETE("/items/:productId", cartHandler.RemoveItem)
	}
}

// SetupCheckoutRoutes sets up the cart-to-order conversion route
func SetupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, codec *token.Codec, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(db, codec, cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("", checkoutHandler.Checkout)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, codec *token.Codec, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, codec, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/recent", orderHandler.RecentOrders)
		orders.GET("/stats", orderHandler.GetStatistics)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/status", orderHandler.UpdateStatus)
		orders.PUT("/:id/payment-status", orderHandler.UpdatePaymentStatus)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
	}
}
