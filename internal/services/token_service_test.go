package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/services"
)

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := services.NewTokenService("")
	assert.Error(t, err)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens, err := services.NewTokenService(testJWTSecret)
	require.NoError(t, err)

	user := &models.User{ID: "user-123", Email: "test@example.com", Role: models.RoleAdmin}

	signed, err := tokens.Issue(user, services.TokenPurposeSession, time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, services.TokenPurposeSession, claims.Purpose)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	tokens, err := services.NewTokenService(testJWTSecret)
	require.NoError(t, err)

	user := &models.User{ID: "user-123", Email: "test@example.com"}
	signed, err := tokens.Issue(user, services.TokenPurposeReset, -time.Hour)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, services.ErrTokenExpired)
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	tokens, err := services.NewTokenService(testJWTSecret)
	require.NoError(t, err)
	otherTokens, err := services.NewTokenService("a_different_secret")
	require.NoError(t, err)

	user := &models.User{ID: "user-123", Email: "test@example.com"}
	signed, err := otherTokens.Issue(user, services.TokenPurposeSession, time.Hour)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, services.ErrTokenInvalid)
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	tokens, err := services.NewTokenService(testJWTSecret)
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		_, err := tokens.Verify(bad)
		assert.ErrorIs(t, err, services.ErrTokenInvalid, "token %q", bad)
	}
}

func TestPasswordHasher(t *testing.T) {
	hasher := services.NewPasswordHasher()

	hash, err := hasher.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", hash)
	assert.True(t, hasher.Verify("Password123!", hash))
	assert.False(t, hasher.Verify("WrongPass123!", hash))

	// Salted: two hashes of the same input differ, both verify.
	hash2, err := hasher.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	assert.True(t, hasher.Verify("Password123!", hash2))

	// Empty input is rejected.
	_, err = hasher.Hash("")
	assert.Error(t, err)

	// Malformed hash fails verification without panicking.
	assert.False(t, hasher.Verify("Password123!", "not-a-bcrypt-hash"))
}
