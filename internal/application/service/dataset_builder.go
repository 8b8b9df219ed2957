// Package service internal/application/service/dataset_builder.go
package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/domain/repository"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
)

// DatasetBuilder turns raw source rows into validated per-currency rate
// tables. Malformed rows are skipped row-by-row; a failing source fails the
// whole build for that currency.
type DatasetBuilder struct {
	source     repository.RateSource
	currencies []string
	logger     logger.Logger
}

// NewDatasetBuilder creates a builder over the fixed supported currency list.
func NewDatasetBuilder(source repository.RateSource, currencies []string, log logger.Logger) *DatasetBuilder {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &DatasetBuilder{
		source:     source,
		currencies: currencies,
		logger:     log,
	}
}

// BuildTable fetches and parses the rate series for one currency. A row is
// included only if both fields parse and the rate is a positive finite
// number; anything else is dropped silently. Source failure propagates as
// ErrDataUnavailable and is never converted into an empty table.
func (b *DatasetBuilder) BuildTable(ctx context.Context, currency string) (entity.CurrencyTable, error) {
	rows, err := b.source.FetchRates(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDataUnavailable, err)
	}

	table := make(entity.CurrencyTable, len(rows))
	skipped := 0

	for _, row := range rows {
		date, ok := parseDate(row.Date)
		if !ok {
			skipped++
			continue
		}

		rate, ok := parseRate(row.Rate)
		if !ok {
			skipped++
			continue
		}

		table[date] = rate
	}

	b.logger.Debug("Built currency table", map[string]interface{}{
		"currency": currency,
		"entries":  len(table),
		"skipped":  skipped,
	})

	return table, nil
}

// BuildAll builds tables for every supported currency. Any single failing
// currency fails the whole operation so that a partial dataset is never
// published.
func (b *DatasetBuilder) BuildAll(ctx context.Context) (entity.Dataset, error) {
	b.logger.Info("Building dataset for all currencies", map[string]interface{}{
		"currencies": len(b.currencies),
	})

	dataset := make(entity.Dataset, len(b.currencies))

	for _, currency := range b.currencies {
		table, err := b.BuildTable(ctx, currency)
		if err != nil {
			b.logger.Error("Dataset build failed", map[string]interface{}{
				"currency": currency,
				"error":    err.Error(),
			})
			return nil, fmt.Errorf("failed to build table for %s: %w", currency, err)
		}
		dataset[currency] = table
	}

	b.logger.Info("Dataset build completed", map[string]interface{}{
		"currencies": len(dataset),
	})

	return dataset, nil
}

// parseDate normalizes a raw date field to the canonical ISO key.
func parseDate(raw string) (string, bool) {
	parsed, err := time.Parse(entity.DateLayout, raw)
	if err != nil {
		return "", false
	}
	return parsed.Format(entity.DateLayout), true
}

// parseRate accepts only positive finite rates. Bundesbank exports use "."
// for days without a value; that fails ParseFloat and drops the row.
func parseRate(raw string) (float64, bool) {
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0, false
	}
	return rate, true
}
