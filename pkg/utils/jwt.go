package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var jwtSecret = []byte("secret")

// SetSecret allows injecting the secret from config
func SetSecret(secret string) {
	jwtSecret = []byte(secret)
}

type UserClaims struct {
	UserID    string `json:"user_id"`
	TheaterID string `json:"theater_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken mints the bearer token value issued at login. Tokens live for
// 24 hours; validation happens against the user's stored token ring, so the
// value is treated as opaque by everything downstream of this function.
func GenerateToken(userID primitive.ObjectID, theaterID, role string, expiresAt time.Time) (string, error) {
	claims := UserClaims{
		UserID:    userID.Hex(),
		TheaterID: theaterID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}
