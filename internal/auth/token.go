package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a GossHub bearer token. The client cannot verify
// the signature; it only reads who the token was issued to.
type Claims struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// ParseClaims decodes the token payload without checking its signature.
func ParseClaims(token string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Expiry returns the zero time when the token carries no expiry.
func (c Claims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// Expired reports whether the token is past its expiry at now.
func (c Claims) Expired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}

// Check parses token and reports ErrExpiredToken once it is past its expiry.
func Check(token string, now time.Time) (Claims, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.Expired(now) {
		return claims, ErrExpiredToken
	}
	return claims, nil
}
