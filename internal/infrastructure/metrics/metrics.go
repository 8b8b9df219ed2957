package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RefreshTotal        prometheus.Counter
	RefreshFailures     prometheus.Counter
	AuthRejectionsTotal prometheus.Counter
}

// NewMetrics registers and returns the service collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RefreshTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dataset_refresh_total",
				Help: "Total number of dataset rebuild attempts",
			},
		),

		RefreshFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dataset_refresh_failures_total",
				Help: "Total number of failed dataset rebuilds",
			},
		),

		AuthRejectionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of requests rejected at the auth gate",
			},
		),
	}
}
