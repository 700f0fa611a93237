package extractor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRatingText(t *testing.T) {
	assert.True(t, IsRatingText("4.3 ★ (1,234 ratings)"))
	assert.True(t, IsRatingText("4.6 out of 5"))
	assert.True(t, IsRatingText("2,567 Reviews"))
	assert.False(t, IsRatingText("$399.00"))
	assert.False(t, IsRatingText("₹1,999"))
}

func TestIsDiscountText(t *testing.T) {
	assert.True(t, IsDiscountText("Extra ₹500 off"))
	assert.True(t, IsDiscountText("Save $20"))
	assert.True(t, IsDiscountText("50% off"))
	assert.True(t, IsDiscountText("You save €15.00"))
	assert.False(t, IsDiscountText("$19.99"))
	assert.False(t, IsDiscountText("Official store"))
}

func TestIsFeeText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		context string
		amount  float64
		want    bool
	}{
		{"fee word in text", "+ ₹99 Delivery Fee", "", 99, true},
		{"addend pattern", "+ $4.99", "", 4.99, true},
		{"shipping word", "Shipping: $5.00", "", 5, true},
		{"small amount in fee context", "₹99", "Shipping charges apply", 99, true},
		{"large amount ignores context", "₹2,499", "Protect your purchase with a warranty", 2499, false},
		{"clean price", "$399.00", "Add to cart", 399, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFeeText(tt.text, tt.context, tt.amount))
		})
	}
}

func findByID(t *testing.T, html, id string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	sel := doc.Find("#" + id)
	require.Equal(t, 1, sel.Length())
	return sel
}

func TestIsStruckThrough(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"strikethrough tag ancestor", `<s><span id="t">$499</span></s>`, true},
		{"del tag", `<del id="t">$499</del>`, true},
		{"line-through style", `<span id="t" style="text-decoration: line-through">$499</span>`, true},
		{"old price class", `<div class="old-price"><span id="t">$499</span></div>`, true},
		{"mrp class", `<span id="t" class="mrp-amount">₹1,299</span>`, true},
		{"compare at class", `<span id="t" class="compare-at-price">$49</span>`, true},
		{"plain current price", `<div class="pricing"><span id="t" class="price-current">$399</span></div>`, false},
		{"ancestor beyond scan depth", `<div class="old-price"><i><i><i><i><span id="t">$499</span></i></i></i></i></div>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStruckThrough(findByID(t, tt.html, "t")))
		})
	}
}
