package auth

import (
	"testing"
	"time"

	"bladeshop-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestAdmin_Login(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	a := NewAdmin("support", hash, "testsecret")

	t.Run("Success", func(t *testing.T) {
		token, err := a.Login("support", "s3cret")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := a.ParseJWT(token)
		require.NoError(t, err)
		assert.Equal(t, "support", claims.Username)
		assert.Equal(t, utils.RoleAdmin, claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := a.Login("support", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongUsername", func(t *testing.T) {
		_, err := a.Login("root", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("NoHashConfigured", func(t *testing.T) {
		_, err := NewAdmin("support", "", "testsecret").Login("support", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAdmin_GenerateJWT_NoSecret(t *testing.T) {
	_, err := NewAdmin("support", "", "").GenerateJWT("support")
	assert.ErrorIs(t, err, ErrSecretNotSet)
}

func TestAdmin_ParseJWT(t *testing.T) {
	a := NewAdmin("support", "", "secret1")
	tokenStr, err := a.GenerateJWT("support")
	require.NoError(t, err)

	t.Run("InvalidToken", func(t *testing.T) {
		_, err := a.ParseJWT("invalid-token-string")
		assert.Error(t, err)
	})

	t.Run("NoSecret", func(t *testing.T) {
		_, err := NewAdmin("support", "", "").ParseJWT(tokenStr)
		assert.ErrorIs(t, err, ErrSecretNotSet)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := NewAdmin("support", "", "secret2").ParseJWT(tokenStr)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewAdmin("support", "", "secret1")
		expired.ttl = -time.Hour
		token, err := expired.GenerateJWT("support")
		require.NoError(t, err)

		_, err = a.ParseJWT(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("WrongAlgorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "support", Role: utils.RoleAdmin})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = a.ParseJWT(signed)
		assert.Error(t, err)
	})
}
