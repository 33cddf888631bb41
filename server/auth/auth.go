package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AccessTokenDuration is how long an issued token stays valid
const AccessTokenDuration = time.Hour

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

type AccessTokenClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// NewAccessTokenClaims returns claims for the given user,
// expiring 'AccessTokenDuration' from now.
func NewAccessTokenClaims(userID uint, email string) AccessTokenClaims {
	now := time.Now()

	return AccessTokenClaims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(AccessTokenDuration).Unix(),
			Issuer:    "sentinela",
		},
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims AccessTokenClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// DecodeJWT verifies the token signature & expiry with the shared secret,
// returning ErrTokenExpired for valid-but-expired tokens and
// ErrInvalidToken for everything else that fails verification.
func DecodeJWT(tokenString, secret string) (*AccessTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secret), nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}

		return nil, ErrInvalidToken
	}

	tokenClaims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return tokenClaims, nil
}
