// Package service internal/application/service/auth_service.go
package service

import (
	"crypto/subtle"
	"time"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
)

// TokenProvider mints and verifies stateless bearer tokens.
type TokenProvider interface {
	Issue(username string) (token string, expiresAt time.Time, err error)
	Validate(token string) (subject string, err error)
}

// AuthService checks credentials against the single configured pair and
// mints tokens for callers that match. There is no user store.
type AuthService struct {
	username string
	password string
	tokens   TokenProvider
	logger   logger.Logger
}

// NewAuthService creates a new auth service bound to the configured
// credential pair.
func NewAuthService(username, password string, tokens TokenProvider, log logger.Logger) *AuthService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &AuthService{
		username: username,
		password: password,
		tokens:   tokens,
		logger:   log,
	}
}

// IssueToken returns a signed token for a matching credential pair, or
// ErrInvalidCredentials on mismatch. Comparison is constant-time.
func (s *AuthService) IssueToken(username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1

	if !userOK || !passOK {
		s.logger.Warn("Token request rejected", map[string]interface{}{
			"username": username,
		})
		return "", time.Time{}, entity.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(username)
	if err != nil {
		s.logger.Error("Failed to mint token", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return "", time.Time{}, err
	}

	s.logger.Info("Token issued", map[string]interface{}{
		"username":   username,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})

	return token, expiresAt, nil
}
