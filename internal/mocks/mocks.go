// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRates(ctx context.Context, currency string) ([]entity.RawRate, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RawRate), args.Error(1)
}

// MockTokenProvider mocks the token provider interface
type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) Issue(username string) (string, time.Time, error) {
	args := m.Called(username)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenProvider) Validate(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// StubRateSource returns fixed rows per currency without expectations;
// handy for integration tests that exercise the full refresh path.
type StubRateSource struct {
	Rows map[string][]entity.RawRate
	Err  error
}

func (s *StubRateSource) FetchRates(_ context.Context, currency string) ([]entity.RawRate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Rows[currency], nil
}
