package customer

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/token"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		Token: config.TokenConfig{Key: "unit-test-token-key"},
		JWT: config.JWTConfig{
			Secret:            "unit-test-jwt-secret",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Customer{}))

	return NewService(db, token.NewCodec(cfg), cfg), cfg
}

func TestRegister(t *testing.T) {
	svc, cfg := newTestService(t)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:     "jo@example.com",
		Password:  "correct-horse",
		FirstName: "Jo",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", resp.Email)
	assert.NotEmpty(t, resp.CustomerToken)
	assert.NotEmpty(t, resp.AccessToken)

	// The access token embeds the same opaque customer token
	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.CustomerToken, claims.CustomerToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := &RegisterRequest{Email: "jo@example.com", Password: "correct-horse"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.Error(t, err)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "jo@example.com",
		Password: "short",
	})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:    "jo@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	resp, err := svc.Authenticate(ctx, "jo@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.CustomerToken, resp.CustomerToken)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{
		Email:    "jo@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	// Wrong password and unknown email fail identically
	_, err = svc.Authenticate(ctx, "jo@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
