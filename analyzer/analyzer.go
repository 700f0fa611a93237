// Package analyzer scans raw page markup and proposes ranked locator
// candidates for the product name and price elements.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Stability orders locator candidates by how likely they are to survive a
// site redeploy. Lower is better.
type Stability int

const (
	StabilitySemantic Stability = iota // name/price role attribute
	StabilityStableID
	StabilityStableClass
	StabilityStructural // tag / parent-child relationship
	StabilityTextPattern
)

func (s Stability) String() string {
	switch s {
	case StabilitySemantic:
		return "semantic"
	case StabilityStableID:
		return "stable-id"
	case StabilityStableClass:
		return "stable-class"
	case StabilityStructural:
		return "structural"
	case StabilityTextPattern:
		return "text-pattern"
	default:
		return "unknown"
	}
}

// Candidate is one proposed locator with the text it matched.
type Candidate struct {
	Text      string
	Locator   string
	Stability Stability
	Currency  string // adjacent currency symbol, price candidates only
	Demoted   bool   // locator looks like a generated hash
}

// Analysis is the analyzer output handed to the selector detector.
type Analysis struct {
	NameCandidates  []Candidate
	PriceCandidates []Candidate

	HasSemanticName   bool
	HasSemanticPrice  bool
	SawCurrencySymbol bool
}

const (
	maxCandidatesPerList = 12
	maxCandidateText     = 80
	maxSummaryBytes      = 3072
)

var currencySymbols = []string{"₹", "$", "€", "£", "¥", "₩", "₽", "₺", "₫", "₪"}

// hashLikeToken flags 6+ character separator-free alphanumeric runs that mix
// digits and letters, the shape of generated class names like "css-1x2y3z".
var hashLikeToken = regexp.MustCompile(`^[a-zA-Z0-9]{6,}$`)

// PageAnalyzer produces ranked locator candidates from raw markup.
type PageAnalyzer struct{}

func NewPageAnalyzer() *PageAnalyzer {
	return &PageAnalyzer{}
}

// Analyze strips non-content elements and builds ranked name and price
// candidate lists.
func (a *PageAnalyzer) Analyze(html string) (*Analysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %v", err)
	}

	doc.Find("script, style, svg, iframe, noscript").Remove()

	analysis := &Analysis{}
	a.collectNameCandidates(doc, analysis)
	a.collectPriceCandidates(doc, analysis)

	sortCandidates(analysis.NameCandidates)
	sortCandidates(analysis.PriceCandidates)

	if len(analysis.NameCandidates) > maxCandidatesPerList {
		analysis.NameCandidates = analysis.NameCandidates[:maxCandidatesPerList]
	}
	if len(analysis.PriceCandidates) > maxCandidatesPerList {
		analysis.PriceCandidates = analysis.PriceCandidates[:maxCandidatesPerList]
	}

	return analysis, nil
}

type locatorTier struct {
	selector  string
	stability Stability
}

var nameTiers = []locatorTier{
	{"[itemprop='name']", StabilitySemantic},
	{"[data-testid*='name'], [data-testid*='title'], [data-product-title]", StabilitySemantic},
	{"h1", StabilityStructural},
	{"h2", StabilityStructural},
}

var priceTiers = []locatorTier{
	{"[itemprop='price']", StabilitySemantic},
	{"[data-price], [data-current-price], [data-product-price]", StabilitySemantic},
	{"[data-testid*='price']", StabilitySemantic},
}

func (a *PageAnalyzer) collectNameCandidates(doc *goquery.Document, analysis *Analysis) {
	seen := make(map[string]bool)

	for _, tier := range nameTiers {
		doc.Find(tier.selector).Each(func(_ int, s *goquery.Selection) {
			text := collapseSpace(s.Text())
			if len(text) < 3 {
				return
			}
			c := buildCandidate(s, tier.selector, tier.stability, text)
			if seen[c.Locator] {
				return
			}
			seen[c.Locator] = true
			if c.Stability == StabilitySemantic && !c.Demoted {
				analysis.HasSemanticName = true
			}
			analysis.NameCandidates = append(analysis.NameCandidates, c)
		})
	}

	// Class/id based tiers: anything whose attribute vocabulary suggests a
	// product title.
	doc.Find("[id*='name'], [id*='title'], [class*='name'], [class*='title'], [class*='product']").Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if len(text) < 3 || len(text) > 200 {
			return
		}
		c := buildCandidate(s, "", StabilityStableClass, text)
		if c.Locator == "" || seen[c.Locator] {
			return
		}
		seen[c.Locator] = true
		analysis.NameCandidates = append(analysis.NameCandidates, c)
	})
}

func (a *PageAnalyzer) collectPriceCandidates(doc *goquery.Document, analysis *Analysis) {
	seen := make(map[string]bool)

	add := func(c Candidate) {
		if c.Locator == "" || seen[c.Locator] {
			return
		}
		seen[c.Locator] = true
		if c.Currency != "" {
			analysis.SawCurrencySymbol = true
		}
		if c.Stability == StabilitySemantic && !c.Demoted {
			analysis.HasSemanticPrice = true
		}
		analysis.PriceCandidates = append(analysis.PriceCandidates, c)
	}

	for _, tier := range priceTiers {
		doc.Find(tier.selector).Each(func(_ int, s *goquery.Selection) {
			text := collapseSpace(s.Text())
			if text == "" {
				// meta-style price elements carry the value in content=
				if content, ok := s.Attr("content"); ok {
					text = collapseSpace(content)
				}
			}
			if text == "" {
				return
			}
			c := buildCandidate(s, tier.selector, tier.stability, text)
			c.Currency = adjacentCurrencySymbol(text)
			add(c)
		})
	}

	doc.Find("[id*='price'], [class*='price'], [class*='Price'], [class*='amount'], [class*='cost']").Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if text == "" || len(text) > 120 {
			return
		}
		c := buildCandidate(s, "", StabilityStableClass, text)
		c.Currency = adjacentCurrencySymbol(text)
		add(c)
	})

	// Last tier: raw text containment on a currency symbol. Frequently the
	// only option, but matches carousels and fee lines too.
	for _, sym := range currencySymbols {
		found := false
		doc.Find("span, div, p, strong, b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapseSpace(ownText(s))
			if !strings.Contains(text, sym) || len(text) > 120 {
				return true
			}
			found = true
			add(Candidate{
				Text:      trimText(text),
				Locator:   "contains:" + sym,
				Stability: StabilityTextPattern,
				Currency:  sym,
			})
			return false
		})
		if found {
			analysis.SawCurrencySymbol = true
		}
	}
}

// buildCandidate picks the strongest locator available for the element:
// the tier selector itself, then id, then a class token, then the tag.
// Hash-like ids and classes are demoted but kept.
func buildCandidate(s *goquery.Selection, tierSelector string, tierStability Stability, text string) Candidate {
	c := Candidate{Text: trimText(text), Stability: tierStability, Locator: tierSelector}

	if tierSelector != "" && tierStability == StabilitySemantic {
		return c
	}

	if id, ok := s.Attr("id"); ok && id != "" {
		c.Locator = "#" + id
		c.Stability = StabilityStableID
		c.Demoted = IsUnstableToken(id)
		return c
	}

	if class, ok := s.Attr("class"); ok && class != "" {
		token := firstUsableClass(class)
		if token != "" {
			c.Locator = "." + token
			c.Stability = StabilityStableClass
			c.Demoted = IsUnstableToken(token)
			return c
		}
	}

	if tierSelector != "" {
		return c
	}

	c.Locator = goquery.NodeName(s)
	c.Stability = StabilityStructural
	return c
}

// IsUnstableToken reports whether a class/id token looks like a generated
// hash: a 6+ character separator-free alphanumeric run mixing digits and
// letters. Demoted rather than eliminated, since it may be the only option.
func IsUnstableToken(token string) bool {
	if !hashLikeToken.MatchString(token) {
		return false
	}
	hasDigit := strings.ContainsAny(token, "0123456789")
	hasLetter := strings.IndexFunc(token, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
	return hasDigit && hasLetter
}

func firstUsableClass(class string) string {
	tokens := strings.Fields(class)
	// prefer a stable-looking token, fall back to the first one
	for _, t := range tokens {
		if !IsUnstableToken(t) {
			return t
		}
	}
	if len(tokens) > 0 {
		return tokens[0]
	}
	return ""
}

func adjacentCurrencySymbol(text string) string {
	for _, sym := range currencySymbols {
		if strings.Contains(text, sym) {
			return sym
		}
	}
	return ""
}

func sortCandidates(cs []Candidate) {
	// stable insertion order within a rank; rank = stability with demotion
	// pushing a candidate behind its peers
	rank := func(c Candidate) int {
		r := int(c.Stability) * 2
		if c.Demoted {
			r++
		}
		return r
	}
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && rank(cs[j]) < rank(cs[j-1]); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// Summary renders the analysis as compact text for the language-model call.
// Output is capped so the downstream request stays affordable.
func (a *Analysis) Summary() string {
	var b strings.Builder

	b.WriteString("NAME CANDIDATES:\n")
	for i, c := range a.NameCandidates {
		fmt.Fprintf(&b, "%d. locator=%s stability=%s text=%q\n", i+1, c.Locator, c.Stability, c.Text)
	}

	b.WriteString("PRICE CANDIDATES:\n")
	for i, c := range a.PriceCandidates {
		if c.Currency != "" {
			fmt.Fprintf(&b, "%d. locator=%s stability=%s currency=%s text=%q\n", i+1, c.Locator, c.Stability, c.Currency, c.Text)
		} else {
			fmt.Fprintf(&b, "%d. locator=%s stability=%s text=%q\n", i+1, c.Locator, c.Stability, c.Text)
		}
	}

	return truncate(b.String(), maxSummaryBytes)
}

// PageText returns the visible text of the page with scripts and styles
// removed, whitespace collapsed, capped at maxChars. Used by the AI
// full-page extraction tier.
func PageText(html string, maxChars int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, svg, iframe, noscript").Remove()

	text := collapseSpace(doc.Find("body").Text())
	if text == "" {
		text = collapseSpace(doc.Text())
	}
	if maxChars > 0 {
		text = truncate(text, maxChars)
	}
	return text
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimText(s string) string {
	if len(s) > maxCandidateText {
		return truncate(s, maxCandidateText) + "..."
	}
	return s
}

// truncate caps a string at max bytes, backing off to a rune boundary so a
// currency symbol is never split mid-sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// ownText returns only the element's direct text nodes, excluding children.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}
