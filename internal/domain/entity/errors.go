package entity

import "errors"

var (
	// ErrInvalidDate is returned when a query date is not strictly in the
	// past. The source does not reliably publish same-day rates, so today
	// and future dates are rejected alike.
	ErrInvalidDate = errors.New("date must be in the past; current or future dates are not allowed")

	// ErrDataUnavailable is returned when the external source could not be
	// fetched or parsed at the row-set level. Individual malformed rows are
	// skipped and never surface as this error.
	ErrDataUnavailable = errors.New("exchange rate data unavailable")

	// ErrInvalidCredentials is returned when a token request carries a
	// username/password pair that does not match the configured one.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshInProgress is returned when a refresh trigger arrives while
	// a rebuild is already in flight. The trigger is dropped; the next
	// scheduled fire restores freshness.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
