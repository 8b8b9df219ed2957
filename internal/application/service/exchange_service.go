// Package service internal/application/service/exchange_service.go
package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// SnapshotStore defines the cache access the exchange service needs.
type SnapshotStore interface {
	Get() entity.Dataset
	Publish(entity.Dataset)
	Evict()
}

// ExchangeService answers rate and conversion queries against the current
// snapshot and drives the rebuild path used by both the scheduler and
// on-demand refreshes.
type ExchangeService struct {
	store      SnapshotStore
	builder    *DatasetBuilder
	currencies []string
	logger     logger.Logger

	// refreshMu serializes rebuilds; it is never held while serving reads.
	refreshMu sync.Mutex
}

// NewExchangeService creates a new exchange service over the given store and
// builder. currencies is the fixed supported list, in configuration order.
func NewExchangeService(store SnapshotStore, builder *DatasetBuilder, currencies []string, log logger.Logger) *ExchangeService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExchangeService{
		store:      store,
		builder:    builder,
		currencies: currencies,
		logger:     log,
	}
}

// ListCurrencies returns the supported currency codes in configuration
// order, regardless of data availability.
func (s *ExchangeService) ListCurrencies() []string {
	out := make([]string, len(s.currencies))
	copy(out, s.currencies)
	return out
}

// AllRates returns the current snapshot verbatim.
func (s *ExchangeService) AllRates() entity.Dataset {
	return s.store.Get()
}

// RatesByDate returns the rate of every supported currency on the given
// date. Currencies without an entry map to nil rather than being omitted.
// The date must be strictly before today.
func (s *ExchangeService) RatesByDate(date time.Time) (map[string]*float64, error) {
	key, err := s.pastDateKey(date)
	if err != nil {
		return nil, err
	}

	dataset := s.store.Get()
	result := make(map[string]*float64, len(s.currencies))

	for _, currency := range s.currencies {
		if rate, ok := dataset.Rate(currency, key); ok {
			r := rate
			result[currency] = &r
		} else {
			result[currency] = nil
		}
	}

	return result, nil
}

// RateFor returns the rate for one currency on the given date, with
// ok=false if the currency is unknown or has no entry for that exact date.
// The date must be strictly before today.
func (s *ExchangeService) RateFor(currency string, date time.Time) (float64, bool, error) {
	key, err := s.pastDateKey(date)
	if err != nil {
		return 0, false, err
	}

	rate, ok := s.store.Get().Rate(currency, key)
	return rate, ok, nil
}

// ConvertToEUR converts amount from the given currency into EUR using the
// rate on the given date. Negative or non-finite amounts and missing rates
// yield an absent result, not an error. The quotient is rounded half-up to
// two decimal places, once, on the final value.
func (s *ExchangeService) ConvertToEUR(currency string, date time.Time, amount float64) (float64, bool, error) {
	// NaN and infinities would panic inside decimal.NewFromFloat
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false, nil
	}

	rate, ok, err := s.RateFor(currency, date)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	converted := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(rate)).
		Round(2)

	result, _ := converted.Float64()
	return result, true, nil
}

// RefreshNow evicts the snapshot and rebuilds it synchronously. At most one
// rebuild runs at a time; a trigger arriving during an in-flight rebuild is
// dropped with ErrRefreshInProgress. On failure the previous snapshot keeps
// serving.
func (s *ExchangeService) RefreshNow(ctx context.Context) error {
	if !s.refreshMu.TryLock() {
		s.logger.Warn("Refresh trigger dropped", map[string]interface{}{
			"reason": "rebuild already in flight",
		})
		return entity.ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	s.logger.Info("Refreshing exchange rate dataset", nil)
	start := time.Now()

	s.store.Evict()

	dataset, err := s.builder.BuildAll(ctx)
	if err != nil {
		s.logger.Error("Refresh failed, previous snapshot remains served", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	s.store.Publish(dataset)

	s.logger.Info("Refresh completed", map[string]interface{}{
		"currencies":  len(dataset),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

// pastDateKey validates the strictly-in-the-past precondition and returns
// the canonical lookup key. ISO date strings compare correctly as strings.
func (s *ExchangeService) pastDateKey(date time.Time) (string, error) {
	key := date.Format(entity.DateLayout)
	today := time.Now().UTC().Format(entity.DateLayout)

	if key >= today {
		return "", entity.ErrInvalidDate
	}
	return key, nil
}
