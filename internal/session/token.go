package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims is the persisted form of a Session.
type Claims struct {
	jwt.RegisteredClaims
}

// EncodeToken signs s as an HS256 JWT.
func EncodeToken(s models.Session, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.SessionID,
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	return token.SignedString(key)
}

// DecodeToken verifies signature and expiry against now.
func DecodeToken(tokenString string, key []byte, now func() time.Time) (models.Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return models.Session{}, err
	}
	if !token.Valid || claims.ID == "" {
		return models.Session{}, ErrInvalidToken
	}

	return models.Session{
		SessionID: claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
