package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
)

const sampleCSV = `BBEX3.D.USD.EUR.BB.AC.000,Daily exchange rate,unit
,,
2023-01-02,1.0545,normal value
2023-01-03,.,no value available
2023-01-04,1.0601,normal value
single-field-row
`

func TestFetchRates(t *testing.T) {
	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	ctx := context.Background()

	t.Run("Returns raw rows including headers and placeholders", func(t *testing.T) {
		var requestedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte(sampleCSV))
		}))
		defer server.Close()

		client := NewBundesbankClient(server.URL+"/download/D.%s.EUR", nil, log)
		rows, err := client.FetchRates(ctx, "USD")

		assert.NoError(t, err)
		assert.Equal(t, "/download/D.USD.EUR", requestedPath)

		// The client only drops rows with fewer than two fields; header and
		// placeholder rows pass through for the builder to reject.
		assert.Equal(t, []entity.RawRate{
			{Date: "BBEX3.D.USD.EUR.BB.AC.000", Rate: "Daily exchange rate"},
			{Date: "", Rate: ""},
			{Date: "2023-01-02", Rate: "1.0545"},
			{Date: "2023-01-03", Rate: "."},
			{Date: "2023-01-04", Rate: "1.0601"},
		}, rows)
	})

	t.Run("Non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewBundesbankClient(server.URL+"/download/D.%s.EUR", nil, log)
		rows, err := client.FetchRates(ctx, "USD")

		assert.Nil(t, rows)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("Cancelled context aborts the retry backoff", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // force a transport error on every attempt

		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()

		client := NewBundesbankClient(server.URL+"/download/D.%s.EUR", nil, log)

		start := time.Now()
		rows, err := client.FetchRates(cancelledCtx, "USD")

		assert.Nil(t, rows)
		assert.ErrorIs(t, err, context.Canceled)
		// The backoff must not sit out its full delay once the context is gone
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("Empty body yields no rows and no error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewBundesbankClient(server.URL+"/download/D.%s.EUR", nil, log)
		rows, err := client.FetchRates(ctx, "USD")

		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}
