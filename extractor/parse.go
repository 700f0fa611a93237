package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRun matches the first digit run including grouping/decimal
// separators, covering Indian grouping (1,09,900), Western grouping
// (1,234.56) and comma-decimal (89,99) formats.
var amountRun = regexp.MustCompile(`\d(?:[\d.,\s\x{00a0}]*\d)?`)

// ParseAmount extracts a numeric amount from price text. The format is
// disambiguated by the digit-run length after the final separator: 3 digits
// means grouping, 1-2 digits means decimal.
func ParseAmount(text string) (float64, bool) {
	m := amountRun.FindString(text)
	if m == "" {
		return 0, false
	}

	m = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, m)
	m = strings.Trim(m, ".,")

	lastSep := strings.LastIndexAny(m, ".,")
	if lastSep < 0 {
		v, err := strconv.ParseFloat(m, 64)
		return v, err == nil
	}

	tail := m[lastSep+1:]
	digitsOnly := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
	}

	var normalized string
	if len(tail) == 3 {
		// grouping separator: ₹1,09,900 or 2.499
		normalized = digitsOnly(m)
	} else if len(tail) >= 1 && len(tail) <= 2 {
		// decimal separator: 1,234.56 or 89,99
		normalized = digitsOnly(m[:lastSep]) + "." + tail
	} else {
		normalized = digitsOnly(m)
	}

	v, err := strconv.ParseFloat(normalized, 64)
	return v, err == nil
}

// symbolCurrencies maps currency symbols to ISO codes. Multi-character
// symbols come first so "R$" is not read as "$".
var symbolCurrencies = []struct {
	sym  string
	code string
}{
	{"R$", "BRL"},
	{"A$", "AUD"},
	{"C$", "CAD"},
	{"₹", "INR"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₩", "KRW"},
	{"₽", "RUB"},
	{"₺", "TRY"},
	{"$", "USD"},
}

var isoCodePattern = regexp.MustCompile(`\b(USD|EUR|GBP|INR|JPY|CNY|AUD|CAD|CHF|SEK|AED|SGD|BRL|RUB|KRW|TRY|MXN|PLN)\b`)

// countryHints are phrases that indicate a currency without a symbol or
// ISO code.
var countryHints = []struct {
	hint string
	code string
}{
	{"rs.", "INR"},
	{"rs ", "INR"},
	{"rupee", "INR"},
	{"lakh", "INR"},
	{"dollar", "USD"},
	{"euro", "EUR"},
	{"pound", "GBP"},
	{"yen", "JPY"},
	{"peso", "MXN"},
	{"zloty", "PLN"},
}

// DetectCurrency finds a currency code in price text via symbol, ISO code
// or country-indicator phrase. Empty when nothing matches.
func DetectCurrency(text string) string {
	for _, sc := range symbolCurrencies {
		if strings.Contains(text, sc.sym) {
			return sc.code
		}
	}

	if m := isoCodePattern.FindString(text); m != "" {
		return m
	}

	lower := strings.ToLower(text)
	for _, ch := range countryHints {
		if strings.Contains(lower, ch.hint) {
			return ch.code
		}
	}

	return ""
}
