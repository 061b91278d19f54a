// Package utils provides helpers for password hashing, bearer tokens and
// session id generation.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails signature
// verification, has expired, or carries malformed claims.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. Claims are the
// standard subject (the user id hex), the user's role, expiration and
// issued-at.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAccessToken verifies the signature and expiry of a bearer token and
// returns the user id and role claims. Any failure maps to ErrInvalidToken;
// callers do not need to distinguish a bad signature from an expired token.
func ParseAccessToken(secret, raw string) (userID, role string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	userID, ok = claims["sub"].(string)
	if !ok || userID == "" {
		return "", "", ErrInvalidToken
	}
	role, _ = claims["role"].(string)
	return userID, role, nil
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. Used for session ids.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
