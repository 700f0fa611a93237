package analyzer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnstableToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"sc1x2y3zqp", true},
		{"a1b2c3", true},
		{"x9f3kq2", true},
		{"productTitle", false}, // no digits
		{"price", false},        // too short
		{"css-1x2y3z", false},   // separator present
		{"123456", false},       // no letters
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnstableToken(tt.token))
		})
	}
}

func TestAnalyzeRanksSemanticFirstAndDemotesHashes(t *testing.T) {
	html := `<html><body>
		<h1 class="a1b2c3x4">Hash Title</h1>
		<div class="product-name">Stable Widget</div>
		<span itemprop="price">$10.00</span>
		<span class="price">$12.00</span>
	</body></html>`

	a := NewPageAnalyzer()
	analysis, err := a.Analyze(html)
	require.NoError(t, err)

	assert.True(t, analysis.HasSemanticPrice)
	assert.False(t, analysis.HasSemanticName)
	assert.True(t, analysis.SawCurrencySymbol)

	require.NotEmpty(t, analysis.PriceCandidates)
	assert.Equal(t, "[itemprop='price']", analysis.PriceCandidates[0].Locator)

	require.NotEmpty(t, analysis.NameCandidates)
	assert.Equal(t, ".product-name", analysis.NameCandidates[0].Locator)

	var hash *Candidate
	for i := range analysis.NameCandidates {
		if analysis.NameCandidates[i].Locator == ".a1b2c3x4" {
			hash = &analysis.NameCandidates[i]
		}
	}
	require.NotNil(t, hash, "hash-like locator must be demoted, not dropped")
	assert.True(t, hash.Demoted)
}

func TestAnalyzeIgnoresScriptContent(t *testing.T) {
	html := `<html><body>
		<script>var price = "$9999.00";</script>
		<h1>Clean Product</h1>
		<div><span class="price">$25.00</span></div>
	</body></html>`

	a := NewPageAnalyzer()
	analysis, err := a.Analyze(html)
	require.NoError(t, err)

	for _, c := range analysis.PriceCandidates {
		assert.NotContains(t, c.Text, "9999")
	}
}

func TestSummaryIsCapped(t *testing.T) {
	analysis := &Analysis{}
	for i := 0; i < 100; i++ {
		analysis.PriceCandidates = append(analysis.PriceCandidates, Candidate{
			Locator: "." + strings.Repeat("x", 60),
			Text:    strings.Repeat("y", 70),
		})
	}
	assert.LessOrEqual(t, len(analysis.Summary()), maxSummaryBytes)
}

func TestTruncationKeepsRunesIntact(t *testing.T) {
	t.Run("page text cut inside a symbol", func(t *testing.T) {
		html := `<html><body><p>` + strings.Repeat("₹", 10) + `</p></body></html>`
		got := PageText(html, 4) // ₹ is 3 bytes, 4 lands mid-rune
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "₹", got)
	})

	t.Run("candidate text", func(t *testing.T) {
		got := trimText(strings.Repeat("€", 40))
		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("summary", func(t *testing.T) {
		analysis := &Analysis{}
		for i := 0; i < 100; i++ {
			analysis.PriceCandidates = append(analysis.PriceCandidates, Candidate{
				Locator: ".price",
				Text:    strings.Repeat("₹", 25),
			})
		}
		assert.True(t, utf8.ValidString(analysis.Summary()))
	})
}

func TestPageText(t *testing.T) {
	html := `<html><body><script>var x = 1;</script><p>Hello World</p></body></html>`

	assert.Equal(t, "Hello World", PageText(html, 0))
	assert.Equal(t, "Hello", PageText(html, 5))
}
