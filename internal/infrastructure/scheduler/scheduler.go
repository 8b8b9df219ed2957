// Package scheduler internal/infrastructure/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/eurofx/rate-service/internal/infrastructure/logger"
	"github.com/eurofx/rate-service/internal/infrastructure/metrics"
)

// Refresher triggers a synchronous dataset rebuild.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// DailyScheduler fires a refresh once per day at a fixed wall-clock time,
// shortly after the source's assumed daily publish. Rebuild serialization
// lives in the refresh path itself; an overlapping fire is dropped there.
// Rebuild failures are logged and never stop the scheduler.
type DailyScheduler struct {
	refresher Refresher
	hour      int
	minute    int
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewDailyScheduler creates a scheduler firing at "HH:MM" local time.
func NewDailyScheduler(refresher Refresher, at string, log logger.Logger, m *metrics.Metrics) (*DailyScheduler, error) {
	parsed, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh time %q: %w", at, err)
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &DailyScheduler{
		refresher: refresher,
		hour:      parsed.Hour(),
		minute:    parsed.Minute(),
		logger:    log,
		metrics:   m,
	}, nil
}

// Run blocks until ctx is cancelled, firing a refresh at each scheduled
// time. Intended to be started on its own goroutine.
func (s *DailyScheduler) Run(ctx context.Context) {
	s.logger.Info("Refresh scheduler started", map[string]interface{}{
		"fire_at": fmt.Sprintf("%02d:%02d", s.hour, s.minute),
	})

	for {
		wait := time.Until(s.nextFire(time.Now()))

		select {
		case <-time.After(wait):
			s.fire(ctx)
		case <-ctx.Done():
			s.logger.Info("Refresh scheduler stopped", nil)
			return
		}
	}
}

func (s *DailyScheduler) fire(ctx context.Context) {
	s.logger.Info("Scheduled refresh firing", nil)

	if s.metrics != nil {
		s.metrics.RefreshTotal.Inc()
	}

	if err := s.refresher.RefreshNow(ctx); err != nil {
		if s.metrics != nil {
			s.metrics.RefreshFailures.Inc()
		}
		s.logger.Error("Scheduled refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// nextFire returns the next scheduled wall-clock fire strictly after now.
func (s *DailyScheduler) nextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
