package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testJWTConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:            "unit-test-jwt-secret",
			AccessTokenExpiry: time.Hour,
		},
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	mgr := NewJWTManager(testJWTConfig())

	signed, err := mgr.GenerateAccessToken("opaque-customer-token", "jo@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "opaque-customer-token", claims.CustomerToken)
	assert.Equal(t, "jo@example.com", claims.Email)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testJWTConfig())

	signed, err := mgr.GenerateAccessToken("opaque-customer-token", "jo@example.com")
	require.NoError(t, err)

	other := testJWTConfig()
	other.JWT.Secret = "a-different-secret"

	_, err = NewJWTManager(other).ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.JWT.AccessTokenExpiry = -time.Minute
	mgr := NewJWTManager(cfg)

	signed, err := mgr.GenerateAccessToken("opaque-customer-token", "jo@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestJWTManager_RejectsMissingCustomerToken(t *testing.T) {
	mgr := NewJWTManager(testJWTConfig())

	signed, err := mgr.GenerateAccessToken("", "jo@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("Basic dXNlcjpwYXNz"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
