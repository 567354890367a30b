package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundoo/config"
)

func testIssuerConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = secret

	return cfg
}

func TestJWTIssuer_IssueAndValidate(t *testing.T) {
	issuer, err := NewJWTIssuer(testIssuerConfig("test_access_secret_key_very_long_for_testing"))
	require.NoError(t, err)
	require.NotNil(t, issuer)

	token, err := issuer.Issue(42, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestJWTIssuer_InvalidToken(t *testing.T) {
	issuer, err := NewJWTIssuer(testIssuerConfig("test_access_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	claims, err := issuer.Validate("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	issuer, err := NewJWTIssuer(testIssuerConfig("first_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	other, err := NewJWTIssuer(testIssuerConfig("second_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	token, err := issuer.Issue(7, "bob@example.com")
	require.NoError(t, err)

	claims, err := other.Validate(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTIssuer_EmptySecret(t *testing.T) {
	issuer, err := NewJWTIssuer(testIssuerConfig(""))
	assert.Error(t, err)
	assert.Nil(t, issuer)
	assert.Contains(t, err.Error(), "jwt access secret must be provided")
}

func TestJWTIssuer_ConfiguredTTL(t *testing.T) {
	cfg := testIssuerConfig("test_access_secret_key_very_long_for_testing")
	cfg.Auth = &config.AuthConfig{AccessTokenTTL: time.Minute}

	issuer, err := NewJWTIssuer(cfg)
	require.NoError(t, err)

	token, err := issuer.Issue(1, "carol@example.com")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}
