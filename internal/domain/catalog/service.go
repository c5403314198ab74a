// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no active product matches the identifier
var ErrProductNotFound = errors.New("product not found")

// Service exposes the read-only catalog surface consumed by the cart and by
// product browsing. Identifiers cross this boundary as opaque tokens.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	codec       *token.Codec
	config      *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, redisClient *redis.Client, codec *token.Codec, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		codec:       codec,
		config:      cfg,
	}
}

// ProductView is the external representation of a product
type ProductView struct {
	ProductToken string `json:"product_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	InStock      bool   `json:"in_stock"`
}

// GetProduct retrieves a single active product by its opaque token
func (s *Service) GetProduct(ctx context.Context, productToken string) (*ProductView, error) {
	id, err := s.codec.Decode(productToken)
	if err != nil {
		return nil, err
	}

	var prod Product
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	view := s.toView(&prod)
	return &view, nil
}

// ProductPrice returns the current catalog price in cents
func (s *Service) ProductPrice(ctx context.Context, productToken string) (int64, error) {
	view, err := s.GetProduct(ctx, productToken)
	if err != nil {
		return 0, err
	}
	return view.Price, nil
}

// ProductName returns the current catalog name
func (s *Service) ProductName(ctx context.Context, productToken string) (string, error) {
	view, err := s.GetProduct(ctx, productToken)
	if err != nil {
		return "", err
	}
	return view.Name, nil
}

// Search finds active products whose name or description matches the query,
// newest first. Results are cached in Redis; cache failures fall through to
// the database.
func (s *Service) Search(ctx context.Context, query string) ([]ProductView, error) {
	cacheKey := fmt.Sprintf("catalog:search:%s", query)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var views []ProductView
			if err := json.Unmarshal([]byte(cached), &views); err == nil {
				return views, nil
			}
		}
	}

	var products []Product
	pattern := "%" + query + "%"
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC").
		Limit(50).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = s.toView(&products[i])
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(views); err == nil {
			ttl := s.config.Redis.SearchTTL
			if ttl <= 0 {
				ttl = 5 * time.Minute
			}
			s.redisClient.Set(ctx, cacheKey, data, ttl)
		}
	}

	return views, nil
}

func (s *Service) toView(p *Product) ProductView {
	return ProductView{
		ProductToken: s.codec.Encode(p.ID),
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		InStock:      p.StockQuantity > 0,
	}
}
