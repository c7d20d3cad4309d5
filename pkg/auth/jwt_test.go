package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	validator, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "hackmate-test",
	})
	require.NoError(t, err)
	return validator
}

func newTestGenerator(t *testing.T, expiry time.Duration) *JWTGenerator {
	t.Helper()
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey:  testSecret,
		Issuer:     "hackmate-test",
		ExpiryTime: expiry,
	})
	require.NoError(t, err)
	return generator
}

func TestValidateToken_RoundTrip(t *testing.T) {
	generator := newTestGenerator(t, time.Hour)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-1", "u@example.com", "User One")
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "User One", claims.Name)
}

func TestValidateToken_StripsBearerPrefix(t *testing.T) {
	generator := newTestGenerator(t, time.Hour)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-1", "u@example.com", "")
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	generator := newTestGenerator(t, -time.Minute)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-1", "u@example.com", "")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	otherGenerator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: "a-different-secret",
		Issuer:    "hackmate-test",
	})
	require.NoError(t, err)
	validator := newTestValidator(t)

	token, err := otherGenerator.GenerateToken("user-1", "u@example.com", "")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongIssuer(t *testing.T) {
	generator, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret,
		Issuer:    "someone-else",
	})
	require.NoError(t, err)
	validator := newTestValidator(t)

	token, err := generator.GenerateToken("user-1", "u@example.com", "")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateToken_RejectsEmpty(t *testing.T) {
	validator := newTestValidator(t)
	_, err := validator.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewJWTValidator_RequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)

	_, err = NewJWTValidator(JWTConfig{SigningMethod: "none"})
	assert.Error(t, err)
}

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "user-1", Email: "u@example.com"})

	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)

	_, err = GetUserFromContext(context.Background())
	assert.Error(t, err)
}
