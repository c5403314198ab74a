// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// Models returns every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		// Customer domain - base table
		&customer.Customer{},

		// Catalog domain - base tables
		&catalog.Category{},
		&catalog.Product{},

		// Cart domain
		&cart.Cart{},
		&cart.CartItem{},

		// Order domain - dependent tables
		&order.Order{},
		&order.OrderItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	for _, model := range Models() {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("Creating additional database indexes...")

	indexes := []string{
		// Customer indexes
		"CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers(created_at DESC)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)",

		// Cart indexes; the unique constraints back the one-cart-per-customer
		// and one-line-per-product invariants
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_customer ON carts(customer_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_date ON orders(customer_id, order_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("Database indexes created successfully")
	return nil
}

// SeedInitialData seeds a small catalog for development environments
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	log.Println("Seeding initial catalog data...")

	electronics := catalog.Category{Name: "Electronics", Description: "Devices and accessories"}
	if err := m.db.Create(&electronics).Error; err != nil {
		return fmt.Errorf("failed to seed category: %w", err)
	}

	products := []catalog.Product{
		{Name: "Widget Pro Laptop", Description: "15-inch developer laptop", Price: 644999, StockQuantity: 12, IsActive: true, CategoryID: electronics.ID},
		{Name: "Wireless Headphones", Description: "Over-ear, noise cancelling", Price: 29999, StockQuantity: 40, IsActive: true, CategoryID: electronics.ID},
		{Name: "USB-C Dock", Description: "11-in-1 docking station", Price: 8999, StockQuantity: 25, IsActive: true, CategoryID: electronics.ID},
	}
	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Printf("Seeded %d products", len(products))
	return nil
}
