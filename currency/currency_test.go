package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	assert.InDelta(t, 1.0, Rate("USD"), 0.0001)
	assert.InDelta(t, 83.10, Rate("inr"), 0.0001)
	assert.InDelta(t, 1.0, Rate("XYZ"), 0.0001, "unknown codes use a neutral rate")
	assert.InDelta(t, 1.0, Rate(""), 0.0001)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("EUR"))
	assert.True(t, Supported(" usd "))
	assert.False(t, Supported("XYZ"))
	assert.False(t, Supported(""))
}

func TestRound3(t *testing.T) {
	assert.InDelta(t, 1.235, Round3(1.2345), 1e-9, "half rounds away from zero")
	assert.InDelta(t, -1.235, Round3(-1.2345), 1e-9)
	assert.InDelta(t, 1.234, Round3(1.2344), 1e-9)
	assert.InDelta(t, 20.0, Round3(19.9999), 1e-9)
}

func TestToCanonical(t *testing.T) {
	assert.InDelta(t, 1.0, ToCanonical(83.10, "INR"), 0.001)
	assert.InDelta(t, 19.99, ToCanonical(19.99, "USD"), 0.001)
	assert.InDelta(t, 108.685, ToCanonical(99.99, "EUR"), 0.001)
}

func TestRoundTrip(t *testing.T) {
	codes := []string{"USD", "EUR", "GBP", "INR", "JPY", "KRW"}
	amounts := []float64{1.0, 19.99, 1234.56, 109900}

	t.Run("local to canonical and back", func(t *testing.T) {
		for _, code := range codes {
			for _, amount := range amounts {
				back := FromCanonical(ToCanonical(amount, code), code)
				// double rounding costs at most half a thousandth times the rate
				assert.InDelta(t, amount, back, Rate(code)*0.001,
					"round trip for %s %.2f", code, amount)
			}
		}
	})

	t.Run("canonical to local and back", func(t *testing.T) {
		for _, code := range codes {
			for _, amount := range amounts {
				back := ToCanonical(FromCanonical(amount, code), code)
				// inner rounding error shrinks by the rate on the way back
				assert.InDelta(t, Round3(amount), back, 0.001/Rate(code)+0.001,
					"round trip for %s %.2f", code, amount)
			}
		}
	})
}
