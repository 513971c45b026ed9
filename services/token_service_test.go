package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	service := NewTokenService("test-secret")
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "user@example.com", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := issuer.GenerateAccessToken(uuid.New(), "user@example.com", "customer")
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	service := NewTokenService("test-secret")

	claims := jwt.MapClaims{
		"user_id": uuid.NewString(),
		"email":   "user@example.com",
		"role":    "customer",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(expired)
	assert.Error(t, err)
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	service := NewTokenService("test-secret")

	claims := jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(unsigned)
	assert.Error(t, err)
}

func TestValidateAccessToken_MissingRole(t *testing.T) {
	service := NewTokenService("test-secret")

	claims := jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	service := NewTokenService("test-secret")
	userID := uuid.New()

	signed, tokenID, expiresAt, err := service.GenerateRefreshToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)
	assert.True(t, expiresAt.After(time.Now().Add(29*24*time.Hour)))

	parsedUser, parsedTokenID, err := service.ParseRefreshToken(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedUser)
	assert.Equal(t, tokenID, parsedTokenID)
}

func TestParseRefreshToken_RejectsAccessToken(t *testing.T) {
	service := NewTokenService("test-secret")

	// An access token has no token_id claim and must not pass as refresh.
	access, err := service.GenerateAccessToken(uuid.New(), "user@example.com", "customer")
	require.NoError(t, err)

	_, _, err = service.ParseRefreshToken(access)
	assert.Error(t, err)
}
