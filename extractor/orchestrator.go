package extractor

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"pricelens/analyzer"
	"pricelens/detector"
	"pricelens/fetcher"
	"pricelens/llm"
	"pricelens/models"
	"pricelens/repository"
)

// pipelineState names the stage an extraction call is in, for logs.
type pipelineState string

const (
	stateCacheLookup   pipelineState = "CACHE_LOOKUP"
	stateCachedExtract pipelineState = "CACHED_EXTRACT"
	stateLearning      pipelineState = "LEARNING"
	stateAIFallback    pipelineState = "AI_FALLBACK"
)

// Orchestrator runs the tiered extraction pipeline: cached locators first,
// then selector learning, then full-page AI extraction. Tier failures are
// swallowed until the last tier; only fetch errors and a failed final tier
// surface to the caller.
type Orchestrator struct {
	fetcher         fetcher.Fetcher
	store           repository.SelectorStore
	analyzer        *analyzer.PageAnalyzer
	detector        *detector.SelectorDetector
	candidates      *CandidateExtractor
	fullPage        *FullPageExtractor
	defaultCurrency string
}

func NewOrchestrator(f fetcher.Fetcher, store repository.SelectorStore, service llm.CompletionService, defaultCurrency string) *Orchestrator {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &Orchestrator{
		fetcher:         f,
		store:           store,
		analyzer:        analyzer.NewPageAnalyzer(),
		detector:        detector.NewSelectorDetector(service),
		candidates:      NewCandidateExtractor(),
		fullPage:        NewFullPageExtractor(service),
		defaultCurrency: defaultCurrency,
	}
}

// ExtractProduct fetches the page and runs it through the tiers until one
// produces a valid record.
func (o *Orchestrator) ExtractProduct(ctx context.Context, pageURL string) (*models.ProductRecord, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("invalid URL")}
	}
	domain := models.NormalizeDomain(u.Hostname())

	html, err := o.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var partial *Result

	// CACHE_LOOKUP: a complete cached pair skips detection entirely.
	log.Printf("[%s] %s: checking learned locators for %s", stateCacheLookup, pageURL, domain)
	cached, found, err := o.store.Get(domain)
	if err != nil {
		log.Printf("Locator store lookup failed for %s: %v", domain, err)
		found = false
	}

	if found && cached.IsComplete() {
		log.Printf("[%s] %s: using cached pair name=%q price=%q", stateCachedExtract, domain, cached.NameLocator, cached.PriceLocator)
		res, extractErr := o.candidates.Extract(html, cached, pageURL)
		if tierSucceeded(res, extractErr) {
			return o.finalize(res, pageURL)
		}
		partial = demoteSuspicious(res)
		log.Printf("[%s] %s: cached locators did not yield a valid price, relearning", stateCachedExtract, domain)
	}

	// LEARNING: analyze the page, detect a fresh pair, persist it before
	// the retry so the next call benefits even if this one fails.
	log.Printf("[%s] %s: analyzing page structure", stateLearning, domain)
	pair := o.learnPair(ctx, html)
	if err := o.store.Upsert(domain, pair); err != nil {
		log.Printf("Failed to persist locators for %s: %v", domain, err)
	} else {
		log.Printf("[%s] %s: stored pair name=%q price=%q", stateLearning, domain, pair.NameLocator, pair.PriceLocator)
	}

	res, extractErr := o.candidates.Extract(html, pair, pageURL)
	if tierSucceeded(res, extractErr) {
		return o.finalize(res, pageURL)
	}
	partial = mergePartial(partial, demoteSuspicious(res))

	// AI_FALLBACK: the model reads the page text directly. A failure here
	// is the failure of the whole call.
	log.Printf("[%s] %s: locator tiers exhausted, asking model for full record", stateAIFallback, domain)
	record, aiErr := o.fullPage.Extract(ctx, html, pageURL)
	if aiErr != nil {
		return nil, aiErr
	}

	return o.finalizeAI(record, partial)
}

func (o *Orchestrator) learnPair(ctx context.Context, html string) models.LocatorPair {
	analysis, err := o.analyzer.Analyze(html)
	if err != nil {
		log.Printf("Page analysis failed: %v", err)
		return detector.HeuristicPair(nil)
	}
	return o.detector.Detect(ctx, analysis)
}

// tierSucceeded requires a valid price, a non-empty name and no rating
// suspicion before a locator tier is allowed to finish the call.
func tierSucceeded(res *Result, err error) bool {
	return err == nil && res != nil && !res.Suspicious && res.Name != "" && models.IsValidPrice(res.Price)
}

// demoteSuspicious zeroes a rating-shaped price so it can never leak into
// the final record through a partial merge.
func demoteSuspicious(res *Result) *Result {
	if res == nil {
		return nil
	}
	if res.Suspicious {
		log.Printf("Discarding rating-shaped price %.2f extracted without currency evidence", res.Price)
		res.Price = 0
		res.Suspicious = false
	}
	return res
}

// mergePartial keeps the most complete fields across failed tiers.
func mergePartial(old, next *Result) *Result {
	if next == nil {
		return old
	}
	if old == nil {
		return next
	}
	if next.Name == "" {
		next.Name = old.Name
	}
	if next.Brand == "" {
		next.Brand = old.Brand
	}
	if next.Price == 0 && old.Price != 0 {
		next.Price = old.Price
		next.Currency = old.Currency
	}
	return next
}

func (o *Orchestrator) finalize(res *Result, pageURL string) (*models.ProductRecord, error) {
	record := &models.ProductRecord{
		Name:      res.Name,
		Brand:     res.Brand,
		Price:     res.Price,
		Currency:  res.Currency,
		SourceURL: pageURL,
	}
	return o.validate(record)
}

// finalizeAI merges the model's record with whatever the locator tiers
// recovered, field by field, preferring the model only where the locator
// tiers came up empty.
func (o *Orchestrator) finalizeAI(record *models.ProductRecord, partial *Result) (*models.ProductRecord, error) {
	if partial != nil {
		if record.Name == "" {
			record.Name = partial.Name
		}
		if record.Brand == "" {
			record.Brand = partial.Brand
		}
		if !models.IsValidPrice(record.Price) && models.IsValidPrice(partial.Price) {
			record.Price = partial.Price
			record.Currency = partial.Currency
		}
	}
	return o.validate(record)
}

func (o *Orchestrator) validate(record *models.ProductRecord) (*models.ProductRecord, error) {
	if record.Name == "" || !models.IsValidPrice(record.Price) {
		return nil, fmt.Errorf("%w: name=%q price=%.2f", models.ErrInvalidExtraction, record.Name, record.Price)
	}
	if record.Currency == "" {
		record.Currency = o.defaultCurrency
	}
	return record, nil
}
