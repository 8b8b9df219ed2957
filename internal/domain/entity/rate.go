package entity

// DateLayout is the ISO calendar-date layout used for all rate lookups
// and in every HTTP path and payload.
const DateLayout = "2006-01-02"

// RawRate is a single unparsed row from the external rate source.
type RawRate struct {
	Date string
	Rate string
}

// CurrencyTable maps an ISO date (yyyy-MM-dd) to the exchange rate for one
// currency, expressed as foreign-currency units per 1 EUR. Lookup is by
// exact date equality; there is no interpolation between dates.
type CurrencyTable map[string]float64

// Dataset maps a currency code to its rate table. Every supported currency
// has an entry, possibly an empty table if the source published no data.
// A Dataset is immutable once published and is always replaced wholesale.
type Dataset map[string]CurrencyTable

// Rate returns the rate for the given currency and ISO date, with ok=false
// if the currency is unknown or has no entry for that exact date.
func (d Dataset) Rate(currency, date string) (float64, bool) {
	table, ok := d[currency]
	if !ok {
		return 0, false
	}
	rate, ok := table[date]
	return rate, ok
}
