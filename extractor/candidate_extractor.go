// Package extractor turns fetched markup into product records. The
// candidate extractor handles the locator-driven tiers; the full-page
// extractor is the AI fallback.
package extractor

import (
	"log"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricelens/models"
)

// containsPrefix marks a locator as a text-containment pattern rather than
// a CSS selector.
const containsPrefix = "contains:"

// outlierFactor drops candidates more than 10x the median, usually bundle
// or carousel prices swept in by a loose locator.
const outlierFactor = 10.0

// suspiciousPriceCeiling is the largest amount that can be mistaken for a
// star rating when no currency hint backs it up.
const suspiciousPriceCeiling = 5.0

// Result is what locator-driven extraction recovered from one page.
type Result struct {
	Name     string
	Brand    string
	Price    float64
	Currency string

	// Suspicious marks a rating-shaped price: at most 5 units with no
	// currency evidence anywhere near the element.
	Suspicious bool
}

// priceElement keeps the matched selection alongside its classification so
// currency detection can walk up to the parent and grandparent later.
type priceElement struct {
	sel       *goquery.Selection
	candidate models.PriceCandidate
}

// CandidateExtractor applies a locator pair to markup and selects the most
// plausible price among everything the locator matched.
type CandidateExtractor struct{}

func NewCandidateExtractor() *CandidateExtractor {
	return &CandidateExtractor{}
}

var genericNameLocators = []string{
	"[itemprop='name']",
	"h1",
	"[data-testid*='title']",
	".product-title",
	".product-name",
	"h2",
}

// Extract runs locator-driven extraction with the given pair. A missing
// price yields ErrNoValidPrice so the caller can move to the next tier.
func (e *CandidateExtractor) Extract(html string, pair models.LocatorPair, pageURL string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, svg, iframe, noscript").Remove()

	result := &Result{
		Name:  e.extractName(doc, pair.NameLocator),
		Brand: "",
	}

	elements := resolvePriceElements(doc, pair.PriceLocator)
	log.Printf("Price locator %q matched %d elements", pair.PriceLocator, len(elements))

	survivors := classifyAll(elements)
	winner, ok := selectPrice(survivors)
	if ok {
		result.Price = winner.candidate.Amount
		result.Currency = resolveCurrency(winner)
		if result.Price <= suspiciousPriceCeiling && result.Currency == "" {
			result.Suspicious = true
		}
	}

	result.Brand = extractBrand(doc, result.Name, pageURL)

	if !ok {
		return result, models.ErrNoValidPrice
	}
	return result, nil
}

func (e *CandidateExtractor) extractName(doc *goquery.Document, locator string) string {
	if locator != "" {
		if text := firstMatchText(doc, locator); text != "" {
			return text
		}
	}
	for _, fallback := range genericNameLocators {
		if fallback == locator {
			continue
		}
		if text := firstMatchText(doc, fallback); text != "" {
			return text
		}
	}
	return ""
}

func firstMatchText(doc *goquery.Document, locator string) string {
	if strings.HasPrefix(locator, containsPrefix) {
		pattern := locator[len(containsPrefix):]
		var found string
		doc.Find("h1, h2, span, div, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapseSpace(ownText(s))
			if strings.Contains(text, pattern) {
				found = text
				return false
			}
			return true
		})
		return found
	}

	sel := doc.Find(locator).First()
	if sel.Length() == 0 {
		return ""
	}
	text := collapseSpace(sel.Text())
	if text == "" {
		if content, ok := sel.Attr("content"); ok {
			text = collapseSpace(content)
		}
	}
	return text
}

// resolvePriceElements collects every element the locator matches. A
// containment pattern enumerates all elements whose own text carries the
// pattern; carousels and fee lines are expected and handled downstream.
func resolvePriceElements(doc *goquery.Document, locator string) []priceElement {
	var elements []priceElement

	add := func(s *goquery.Selection, text string) {
		if text == "" {
			if content, ok := s.Attr("content"); ok {
				text = collapseSpace(content)
			}
		}
		if text == "" || len(text) > 200 {
			return
		}
		elements = append(elements, priceElement{
			sel:       s,
			candidate: models.PriceCandidate{SourceText: text},
		})
	}

	if strings.HasPrefix(locator, containsPrefix) {
		pattern := locator[len(containsPrefix):]
		doc.Find("span, div, p, strong, b, td, ins").Each(func(_ int, s *goquery.Selection) {
			text := collapseSpace(ownText(s))
			if strings.Contains(text, pattern) {
				add(s, text)
			}
		})
		return elements
	}

	if locator == "" {
		return nil
	}

	doc.Find(locator).Each(func(_ int, s *goquery.Selection) {
		add(s, collapseSpace(s.Text()))
	})
	return elements
}

// classifyAll tags every matched element and keeps the ones that parse to a
// plausible price and trip no rejection rule.
func classifyAll(elements []priceElement) []priceElement {
	var survivors []priceElement

	for _, el := range elements {
		text := el.candidate.SourceText
		amount, ok := ParseAmount(text)
		if !ok {
			continue
		}

		context := contextText(el.sel)

		el.candidate.Amount = amount
		el.candidate.Currency = DetectCurrency(text)
		el.candidate.IsRating = IsRatingText(text) || looksLikeRating(amount, text, context)
		el.candidate.IsDiscount = IsDiscountText(text)
		el.candidate.IsFee = IsFeeText(text, context, amount)
		el.candidate.IsStrikethrough = IsStruckThrough(el.sel)

		if el.candidate.Rejected() {
			log.Printf("Rejected price candidate %q (rating=%v discount=%v fee=%v struck=%v)",
				trimForLog(text), el.candidate.IsRating, el.candidate.IsDiscount,
				el.candidate.IsFee, el.candidate.IsStrikethrough)
			continue
		}
		if !models.IsValidPrice(amount) {
			continue
		}

		survivors = append(survivors, el)
	}

	return survivors
}

// looksLikeRating catches bare "4.3" style values sitting in review context
// even when the element text itself says nothing about ratings.
func looksLikeRating(amount float64, text, context string) bool {
	if amount > suspiciousPriceCeiling {
		return false
	}
	if DetectCurrency(text) != "" {
		return false
	}
	return IsRatingText(context)
}

// selectPrice picks the candidate closest to the median after dropping 10x
// outliers. Ties break toward the smaller amount; an empty post-filter set
// falls back to the smallest pre-filter survivor.
func selectPrice(survivors []priceElement) (priceElement, bool) {
	if len(survivors) == 0 {
		return priceElement{}, false
	}
	if len(survivors) == 1 {
		return survivors[0], true
	}

	sorted := make([]priceElement, len(survivors))
	copy(sorted, survivors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].candidate.Amount < sorted[j].candidate.Amount
	})

	median := sorted[len(sorted)/2].candidate.Amount

	var filtered []priceElement
	for _, el := range sorted {
		if el.candidate.Amount <= median*outlierFactor {
			filtered = append(filtered, el)
		}
	}
	if len(filtered) == 0 {
		return sorted[0], true
	}

	best := filtered[0]
	bestDist := math.Abs(best.candidate.Amount - median)
	for _, el := range filtered[1:] {
		dist := math.Abs(el.candidate.Amount - median)
		if dist < bestDist {
			best = el
			bestDist = dist
		}
		// equal distance keeps the earlier (smaller) amount
	}

	return best, true
}

// resolveCurrency looks for currency evidence on the element itself, then
// its parent, then its grandparent. Sites often put the symbol in a sibling
// span, so the widening scan is needed before giving up.
func resolveCurrency(el priceElement) string {
	if el.candidate.Currency != "" {
		return el.candidate.Currency
	}

	cur := el.sel
	for depth := 0; depth < 2; depth++ {
		cur = cur.Parent()
		if cur.Length() == 0 {
			break
		}
		if code := DetectCurrency(collapseSpace(cur.Text())); code != "" {
			return code
		}
	}
	return ""
}

var brandLocators = []string{
	"[itemprop='brand']",
	"[data-brand]",
	".brand",
	".product-brand",
}

var brandMetaLocators = []string{
	"meta[property='og:brand']",
	"meta[property='product:brand']",
}

var capitalizedWord = regexp.MustCompile(`^[A-Z][A-Za-z0-9&'\-]+`)

// marketplaceDomains are host tokens that name a storefront or protocol
// artifact, never a product brand.
var marketplaceDomains = map[string]bool{
	"amazon": true, "flipkart": true, "ebay": true, "walmart": true,
	"etsy": true, "aliexpress": true, "myntra": true, "target": true,
	"bestbuy": true, "shop": true, "store": true, "www": true,
	"buy": true, "online": true, "market": true, "shopping": true,
}

// extractBrand tries semantic brand markup, then the capitalized lead word
// of the product name, then the domain token of the source URL.
func extractBrand(doc *goquery.Document, name, pageURL string) string {
	for _, locator := range brandLocators {
		sel := doc.Find(locator).First()
		if sel.Length() == 0 {
			continue
		}
		text := collapseSpace(sel.Text())
		if text == "" {
			if content, ok := sel.Attr("content"); ok {
				text = collapseSpace(content)
			}
		}
		if text != "" && len(text) <= 60 {
			return text
		}
	}

	for _, locator := range brandMetaLocators {
		if content, ok := doc.Find(locator).First().Attr("content"); ok {
			if text := collapseSpace(content); text != "" {
				return text
			}
		}
	}

	if m := capitalizedWord.FindString(name); m != "" && len(m) >= 2 {
		return m
	}

	return brandFromDomain(pageURL)
}

func brandFromDomain(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := models.NormalizeDomain(u.Hostname())
	token := host
	if i := strings.IndexByte(host, '.'); i > 0 {
		token = host[:i]
	}
	if token == "" || marketplaceDomains[token] {
		return ""
	}
	return token
}

func contextText(s *goquery.Selection) string {
	var b strings.Builder
	cur := s.Parent()
	for depth := 0; depth < 2 && cur.Length() > 0; depth++ {
		b.WriteString(collapseSpace(cur.Text()))
		b.WriteString(" ")
		cur = cur.Parent()
	}
	text := b.String()
	if len(text) > 400 {
		text = text[:400]
	}
	return text
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ownText returns the element's direct text nodes only, so a containment
// match on "$" does not also match every ancestor wrapper.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}

func trimForLog(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
