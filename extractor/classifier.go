package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate classification is a prioritized rule list. Each rule is a
// standalone predicate so it can be tested on its own; tags are informative
// and not mutually exclusive.

var ratingWords = []string{
	"rating", "ratings", "review", "reviews", "star", "stars",
	"rated", "out of 5",
}

// IsRatingText reports whether the text belongs to a rating/review widget
// rather than a price.
func IsRatingText(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range ratingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

var discountWords = []string{"% off", "discount", "you save"}

// savePattern catches "Save ₹500" style markdown amounts.
var savePattern = regexp.MustCompile(`(?i)(save|extra)\s*[₹$€£¥₩₽]?\s*\d`)

// offPattern catches "₹500 off" phrasing.
var offPattern = regexp.MustCompile(`(?i)\d\s*(off\b|% off)`)

// IsDiscountText reports whether the text describes a markdown amount, not
// the sale price itself.
func IsDiscountText(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range discountWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return savePattern.MatchString(text) || offPattern.MatchString(text)
}

var feeWords = []string{
	"shipping", "delivery charge", "delivery fee", "tax", "warranty",
	"protect", "protection", "fee", "handling", "installation",
	"insurance", "emi",
}

// addendPattern catches "+ ₹99" style extra-cost lines.
var addendPattern = regexp.MustCompile(`\+\s*[₹$€£¥₩₽]\s*\d`)

func containsFeeWord(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range feeWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// IsFeeText reports whether the candidate is a shipping/tax/add-on charge.
// A small amount surrounded by fee vocabulary counts even when the
// candidate's own text is clean.
func IsFeeText(text, context string, amount float64) bool {
	if containsFeeWord(text) || addendPattern.MatchString(text) {
		return true
	}
	if amount > 0 && amount < 1000 && containsFeeWord(context) {
		return true
	}
	return false
}

// strikeClassPattern covers the usual "old/original/MRP/list price" class
// vocabulary used for struck-through reference prices.
var strikeClassPattern = regexp.MustCompile(`(?i)(strike|struck|line-?through|old[-_]?price|original[-_]?price|list[-_]?price|mrp|was[-_]?price|compare[-_]?at|price[-_]?(old|was|original))`)

const strikethroughScanDepth = 3

// IsStruckThrough reports whether the element, or an ancestor within 3
// levels, is rendered struck-through: a strikethrough tag, a line-through
// style, or a reference-price class name.
func IsStruckThrough(s *goquery.Selection) bool {
	cur := s
	for depth := 0; depth <= strikethroughScanDepth && cur.Length() > 0; depth++ {
		switch goquery.NodeName(cur) {
		case "s", "strike", "del":
			return true
		}
		if style, ok := cur.Attr("style"); ok {
			if strings.Contains(strings.ReplaceAll(strings.ToLower(style), " ", ""), "line-through") {
				return true
			}
		}
		if class, ok := cur.Attr("class"); ok && strikeClassPattern.MatchString(class) {
			return true
		}
		cur = cur.Parent()
	}
	return false
}
