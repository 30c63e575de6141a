// Package auth owns the single-purpose token that guards the admin event
// stream. It is deliberately distinct from the session token: short-lived,
// scoped by a purpose claim, and signed with its own secret, so a leaked
// stream URL cannot be replayed as a session.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

const streamPurpose = "events"

// StreamTokenTTL keeps the window tight; clients mint a fresh token per
// connection.
const StreamTokenTTL = 2 * time.Minute

var ErrInvalidStreamToken = errors.New("invalid or expired stream token")

type streamClaims struct {
	Purpose string      `json:"purpose"`
	Role    models.Role `json:"role"`
	jwt.RegisteredClaims
}

// MintStreamToken issues a stream token for an admin user.
func MintStreamToken(secret, userID string, role models.Role) (string, error) {
	now := time.Now()
	claims := streamClaims{
		Purpose: streamPurpose,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StreamTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyStreamToken checks signature, expiry, purpose, and the admin role,
// all before any data is streamed.
func VerifyStreamToken(secret, token string) (userID string, err error) {
	var claims streamClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidStreamToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidStreamToken
	}
	if claims.Purpose != streamPurpose || claims.Role != models.RoleAdmin {
		return "", ErrInvalidStreamToken
	}
	return claims.Subject, nil
}
