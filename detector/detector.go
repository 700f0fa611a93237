// Package detector chooses the best name/price locator pair for a page,
// asking the language-model service first and falling back to deterministic
// heuristics when the service fails.
package detector

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pricelens/analyzer"
	"pricelens/llm"
	"pricelens/models"
)

// SelectorDetector picks one locator pair from an analyzer result.
type SelectorDetector struct {
	llm llm.CompletionService
}

func NewSelectorDetector(service llm.CompletionService) *SelectorDetector {
	return &SelectorDetector{llm: service}
}

// Detect returns the best locator pair for the analyzed page. Service
// failures and malformed responses are non-fatal: the deterministic
// heuristic pair is returned instead.
func (d *SelectorDetector) Detect(ctx context.Context, analysis *analyzer.Analysis) models.LocatorPair {
	if analysis == nil {
		return HeuristicPair(nil)
	}

	pair, err := d.detectViaLLM(ctx, analysis)
	if err != nil {
		log.Printf("Selector detection fell back to heuristics: %v", err)
		return HeuristicPair(analysis)
	}
	return pair
}

func (d *SelectorDetector) detectViaLLM(ctx context.Context, analysis *analyzer.Analysis) (models.LocatorPair, error) {
	if d.llm == nil {
		return models.LocatorPair{}, fmt.Errorf("%w: no LLM service configured", models.ErrSelectorDetection)
	}

	content, err := d.llm.Complete(ctx, buildPrompt(analysis))
	if err != nil {
		return models.LocatorPair{}, fmt.Errorf("%w: %v", models.ErrSelectorDetection, err)
	}

	pair, err := ParseResponse(content)
	if err != nil {
		return models.LocatorPair{}, fmt.Errorf("%w: %v", models.ErrSelectorDetection, err)
	}

	return pair, nil
}

func buildPrompt(analysis *analyzer.Analysis) string {
	var b strings.Builder
	b.WriteString("You are selecting CSS locators for scraping a product page.\n")
	b.WriteString("From the candidates below, pick the single best locator for the product NAME ")
	b.WriteString("and the single best locator for the current PRICE.\n")
	b.WriteString("Avoid class names that look like generated hashes (random letter/digit runs); ")
	b.WriteString("prefer semantic attributes or structural locators over them.\n")
	b.WriteString("Answer with exactly two lines:\n")
	b.WriteString("NAME: <locator>\n")
	b.WriteString("PRICE: <locator>\n\n")
	b.WriteString(analysis.Summary())
	return b.String()
}

// ParseResponse extracts the two locator strings from raw model output,
// stripping markdown fences, quotes and backticks.
func ParseResponse(content string) (models.LocatorPair, error) {
	var pair models.LocatorPair

	for _, line := range strings.Split(content, "\n") {
		line = stripWrapping(line)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "NAME:"):
			pair.NameLocator = stripWrapping(line[len("NAME:"):])
		case strings.HasPrefix(upper, "PRICE:"):
			pair.PriceLocator = stripWrapping(line[len("PRICE:"):])
		}
	}

	if !pair.IsComplete() {
		return models.LocatorPair{}, fmt.Errorf("malformed response: %q", firstLine(content))
	}
	return pair, nil
}

func stripWrapping(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```css")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, "`\"' ")
	return strings.TrimSpace(s)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// HeuristicPair is the deterministic fallback: a fixed priority list
// conditioned on what the analyzer actually observed on the page.
func HeuristicPair(analysis *analyzer.Analysis) models.LocatorPair {
	pair := models.LocatorPair{
		NameLocator:  "h1",
		PriceLocator: "[class*='price']",
	}

	if analysis == nil {
		return pair
	}

	if analysis.HasSemanticName {
		pair.NameLocator = "[itemprop='name']"
	} else if len(analysis.NameCandidates) > 0 {
		pair.NameLocator = analysis.NameCandidates[0].Locator
	}

	switch {
	case analysis.HasSemanticPrice:
		pair.PriceLocator = "[itemprop='price']"
	case len(analysis.PriceCandidates) > 0:
		pair.PriceLocator = analysis.PriceCandidates[0].Locator
	case analysis.SawCurrencySymbol:
		pair.PriceLocator = "contains:$"
	}

	return pair
}
