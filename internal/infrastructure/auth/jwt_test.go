// internal/infrastructure/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTProvider(t *testing.T) {
	provider := NewJWTProvider("test-secret", 0)

	t.Run("Issue and validate round trip", func(t *testing.T) {
		token, expiresAt, err := provider.Issue("admin")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), expiresAt, 5*time.Second)

		subject, err := provider.Validate(token)
		assert.NoError(t, err)
		assert.Equal(t, "admin", subject)
	})

	t.Run("Garbage token is invalid", func(t *testing.T) {
		_, err := provider.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Token signed with another secret is invalid", func(t *testing.T) {
		other := NewJWTProvider("other-secret", 0)
		token, _, err := other.Issue("admin")
		assert.NoError(t, err)

		_, err = provider.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Tampered token is invalid", func(t *testing.T) {
		token, _, err := provider.Issue("admin")
		assert.NoError(t, err)

		_, err = provider.Validate(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

// TestTokenExpiry walks the clock past the 24h window: the token is valid
// right up to expiry and invalid after it.
func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	provider := NewJWTProvider("test-secret", 24*time.Hour)
	provider.now = func() time.Time { return issuedAt }

	token, expiresAt, err := provider.Issue("admin")
	assert.NoError(t, err)
	assert.Equal(t, issuedAt.Add(24*time.Hour), expiresAt)

	// Just before expiry
	provider.now = func() time.Time { return expiresAt.Add(-time.Minute) }
	subject, err := provider.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", subject)

	// Just after expiry
	provider.now = func() time.Time { return expiresAt.Add(time.Minute) }
	_, err = provider.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
