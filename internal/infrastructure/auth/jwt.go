// Package auth internal/infrastructure/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed validity window for issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for any parse, signature, or expiry failure.
// Callers get no detail beyond invalidity; there is no partial trust.
var ErrInvalidToken = errors.New("invalid token")

// JWTProvider issues and validates HS512-signed stateless tokens. Validity
// is fully determined by the signature and the embedded expiry; no
// server-side session record exists.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTProvider creates a provider signing with the given server secret.
// A non-positive ttl selects DefaultTokenTTL.
func NewJWTProvider(secret string, ttl time.Duration) *JWTProvider {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &JWTProvider{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a signed token with subject, issued-at and expiry claims.
func (p *JWTProvider) Issue(username string) (string, time.Time, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Validate verifies signature and expiry and returns the token subject.
func (p *JWTProvider) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
