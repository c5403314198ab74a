// internal/domain/customer/service.go
package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so callers cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service handles customer registration and authentication
type Service struct {
	db        *gorm.DB
	codec     *token.Codec
	passwords *auth.PasswordManager
	jwt       *auth.JWTManager
	config    *config.Config
}

// NewService creates a new customer service
func NewService(db *gorm.DB, codec *token.Codec, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		codec:     codec,
		passwords: auth.NewPasswordManager(cfg),
		jwt:       auth.NewJWTManager(cfg),
		config:    cfg,
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResponse carries the customer's opaque token and a signed access token
type AuthResponse struct {
	CustomerToken string `json:"customer_id"`
	Email         string `json:"email"`
	AccessToken   string `json:"access_token"`
}

// Register creates a new customer account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	cust := Customer{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.db.WithContext(ctx).Create(&cust).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return s.issueTokens(&cust)
}

// Authenticate verifies credentials and issues an access token
func (s *Service) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	var cust Customer
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&cust)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up customer: %w", result.Error)
	}

	if err := s.passwords.VerifyPassword(password, cust.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(&cust)
}

func (s *Service) issueTokens(cust *Customer) (*AuthResponse, error) {
	customerToken := s.codec.Encode(cust.ID)

	accessToken, err := s.jwt.GenerateAccessToken(customerToken, cust.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &AuthResponse{
		CustomerToken: customerToken,
		Email:         cust.Email,
		AccessToken:   accessToken,
	}, nil
}
