// Package repository internal/domain/repository/rate_source.go
package repository

import (
	"context"

	"github.com/eurofx/rate-service/internal/domain/entity"
)

// RateSource defines the interface for providers of raw exchange rate rows
type RateSource interface {
	// FetchRates retrieves the full (date, rate) time series for a currency.
	// Rows are returned unparsed; validation is the caller's concern. A
	// transport or decode failure is an error, never an empty result.
	FetchRates(ctx context.Context, currency string) ([]entity.RawRate, error)
}
