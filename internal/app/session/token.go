package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tripdeck/tripsync/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func generateToken(userID domain.UserID, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: string(userID),
	})
	return token.SignedString(secret)
}

// UserIDFromToken verifies a session token and extracts the identity.
func UserIDFromToken(tokenString string, secret []byte) (domain.UserID, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || c.UserID == "" {
		return "", ErrInvalidToken
	}
	return domain.UserID(c.UserID), nil
}
