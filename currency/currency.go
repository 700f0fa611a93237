// Package currency converts extracted amounts to and from the canonical
// currency (USD) using a static rate table. The extraction pipeline itself
// never converts; callers opt in when they need canonical amounts.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// rates holds units of each currency per 1 USD. Unknown codes fall back to
// a multiplier of 1.
var rates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"INR": 83.10,
	"JPY": 151.40,
	"CNY": 7.24,
	"AUD": 1.53,
	"CAD": 1.37,
	"CHF": 0.90,
	"SEK": 10.62,
	"AED": 3.67,
	"SGD": 1.35,
	"BRL": 5.11,
	"RUB": 92.50,
	"KRW": 1346.00,
	"TRY": 32.20,
	"MXN": 16.80,
	"PLN": 3.98,
}

// Rate returns the per-USD multiplier for a 3-letter code, 1 for unknown
// codes.
func Rate(code string) float64 {
	if r, ok := rates[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return r
	}
	return 1.0
}

// Supported reports whether the code has an explicit rate.
func Supported(code string) bool {
	_, ok := rates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// ToCanonical converts an amount in the given currency to the canonical
// currency, rounded to 3 decimal places.
func ToCanonical(amount float64, fromCode string) float64 {
	return Round3(amount / Rate(fromCode))
}

// FromCanonical converts a canonical amount into the given currency,
// rounded to 3 decimal places.
func FromCanonical(amount float64, toCode string) float64 {
	return Round3(amount * Rate(toCode))
}

// Round3 rounds to 3 decimal places, half away from zero.
func Round3(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(3).Float64()
	return f
}
