package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("very-secure")
	assert.Nil(t, err)
	assert.NotEqual(t, "very-secure", hash)

	assert.True(t, CheckPasswordHash("very-secure", hash))
	assert.False(t, CheckPasswordHash("not-my-password", hash))
	assert.False(t, CheckPasswordHash("very-secure", ""))
}

func TestJWTRoundTrip(t *testing.T) {
	claims := NewAccessTokenClaims(42, "stark@avengers.com")

	tokenString, err := EncodeJWT(claims, "test-secret")
	assert.Nil(t, err)
	assert.NotEmpty(t, tokenString)

	decoded, err := DecodeJWT(tokenString, "test-secret")
	assert.Nil(t, err)
	assert.Equal(t, "42", decoded.Subject)
	assert.Equal(t, "stark@avengers.com", decoded.Email)
	assert.Equal(t, "sentinela", decoded.Issuer)

	expiresIn := time.Unix(decoded.ExpiresAt, 0).Sub(time.Unix(decoded.IssuedAt, 0))
	assert.Equal(t, AccessTokenDuration, expiresIn)
}

func TestExpiredJWT(t *testing.T) {
	claims := NewAccessTokenClaims(42, "stark@avengers.com")
	claims.IssuedAt = time.Now().Add(-2 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()

	tokenString, err := EncodeJWT(claims, "test-secret")
	assert.Nil(t, err)

	_, err = DecodeJWT(tokenString, "test-secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestInvalidJWT(t *testing.T) {
	claims := NewAccessTokenClaims(42, "stark@avengers.com")

	tokenString, err := EncodeJWT(claims, "test-secret")
	assert.Nil(t, err)

	// wrong secret
	_, err = DecodeJWT(tokenString, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// garbage token
	_, err = DecodeJWT("not-a-token", "test-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
