package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
)

// DefaultURLTemplate is the Bundesbank daily EUR-FX reference rate download
// endpoint. The single placeholder is the currency code.
const DefaultURLTemplate = "https://api.statistiken.bundesbank.de/rest/download/BBEX3/D.%s.EUR.BB.AC.000?format=csv&lang=en"

// BundesbankClient fetches per-currency CSV time series from the Bundesbank
// statistics API. It implements repository.RateSource.
type BundesbankClient struct {
	urlTemplate string
	httpClient  *http.Client
	logger      logger.Logger
}

// NewBundesbankClient creates a new Bundesbank CSV client. An empty
// urlTemplate selects the public Bundesbank endpoint.
func NewBundesbankClient(urlTemplate string, httpClient *http.Client, log logger.Logger) *BundesbankClient {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &BundesbankClient{
		urlTemplate: urlTemplate,
		httpClient:  httpClient,
		logger:      log,
	}
}

// FetchRates downloads and decodes the CSV series for a currency. Rows with
// fewer than two fields are dropped here; everything else is returned raw so
// the dataset builder decides what parses. Any transport or CSV-level
// failure is an error.
func (c *BundesbankClient) FetchRates(ctx context.Context, currency string) ([]entity.RawRate, error) {
	reqURL := fmt.Sprintf(c.urlTemplate, currency)

	c.logger.Debug("Fetching rate series", map[string]interface{}{
		"currency": currency,
		"url":      reqURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "text/csv")

	// Execute request with retry logic
	var resp *http.Response
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}

		if attempt < maxRetries {
			// Wait with exponential backoff before retrying
			backoffTime := time.Duration(attempt*attempt) * time.Second
			c.logger.Warn("Rate source request failed, retrying", map[string]interface{}{
				"currency": currency,
				"attempt":  attempt,
				"backoff":  backoffTime.String(),
				"error":    err.Error(),
			})

			select {
			case <-time.After(backoffTime):
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch aborted for currency %s: %w", currency, ctx.Err())
			}

			req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create request for retry: %w", err)
			}
			req.Header.Add("Accept", "text/csv")
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned status %d for currency %s", resp.StatusCode, currency)
	}

	rows, err := decodeCSV(resp.Body, currency)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched rate series", map[string]interface{}{
		"currency": currency,
		"rows":     len(rows),
	})

	return rows, nil
}

// decodeCSV reads the body as CSV and extracts the first two columns of each
// record. The Bundesbank export mixes header and metadata rows into the same
// stream; those fail date parsing later and fall out in the builder.
func decodeCSV(body io.Reader, currency string) ([]entity.RawRate, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1 // metadata rows have varying widths

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV for currency %s: %w", currency, err)
	}

	rows := make([]entity.RawRate, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		rows = append(rows, entity.RawRate{
			Date: strings.TrimSpace(record[0]),
			Rate: strings.TrimSpace(record[1]),
		})
	}

	return rows, nil
}
