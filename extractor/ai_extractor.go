package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pricelens/analyzer"
	"pricelens/llm"
	"pricelens/models"
)

// maxPageTextChars caps how much visible page text goes into the full-page
// extraction prompt.
const maxPageTextChars = 6000

// FullPageExtractor is the last-resort tier: hand the whole visible page
// text to the language model and ask for a structured record.
type FullPageExtractor struct {
	llm llm.CompletionService
}

func NewFullPageExtractor(service llm.CompletionService) *FullPageExtractor {
	return &FullPageExtractor{llm: service}
}

// aiProduct mirrors the JSON the model is asked to emit. Price is loosely
// typed because models routinely return it as a quoted string.
type aiProduct struct {
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Price       interface{} `json:"price"`
	Currency    string      `json:"currency"`
	Category    string      `json:"category"`
	Features    []string    `json:"features"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
}

// Extract asks the model for a complete product record from raw page text.
// All failures wrap ErrAIExtraction.
func (e *FullPageExtractor) Extract(ctx context.Context, html, sourceURL string) (*models.ProductRecord, error) {
	if e.llm == nil {
		return nil, fmt.Errorf("%w: no LLM service configured", models.ErrAIExtraction)
	}

	text := analyzer.PageText(html, maxPageTextChars)
	if text == "" {
		return nil, fmt.Errorf("%w: page has no visible text", models.ErrAIExtraction)
	}

	content, err := e.llm.Complete(ctx, buildExtractionPrompt(text, sourceURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAIExtraction, err)
	}

	record, err := parseProductJSON(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAIExtraction, err)
	}

	record.SourceURL = sourceURL
	record.AIVerified = true
	return record, nil
}

func buildExtractionPrompt(pageText, sourceURL string) string {
	var b strings.Builder
	b.WriteString("Extract the product being sold on this page as JSON.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- price is the CURRENT selling price as displayed, not the struck-through ")
	b.WriteString("original, not a discount amount, not shipping or fees\n")
	b.WriteString("- do NOT convert the price to another currency\n")
	b.WriteString("- currency is a 3-letter ISO code, or empty if unclear\n")
	b.WriteString("- features is a short list of product attributes\n")
	b.WriteString("- unknown fields are empty strings, price 0 if no price is shown\n")
	b.WriteString("Respond with ONLY this JSON object, no prose:\n")
	b.WriteString(`{"name":"","brand":"","price":0,"currency":"","category":"","features":[],"description":"","image_url":""}`)
	b.WriteString("\n\nPage URL: ")
	b.WriteString(sourceURL)
	b.WriteString("\nPage text:\n")
	b.WriteString(pageText)
	return b.String()
}

// parseProductJSON tolerates markdown fences and prose around the object.
func parseProductJSON(content string) (*models.ProductRecord, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response: %q", trimForLog(content))
	}

	var p aiProduct
	if err := json.Unmarshal([]byte(content[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("failed to parse product JSON: %v", err)
	}

	record := &models.ProductRecord{
		Name:        strings.TrimSpace(p.Name),
		Brand:       strings.TrimSpace(p.Brand),
		Price:       coerceFloat(p.Price),
		Currency:    normalizeCurrencyCode(p.Currency),
		Category:    strings.TrimSpace(p.Category),
		Features:    p.Features,
		Description: strings.TrimSpace(p.Description),
		ImageURL:    strings.TrimSpace(p.ImageURL),
	}

	if record.Price != 0 && !models.IsValidPrice(record.Price) {
		record.Price = 0
	}
	return record, nil
}

// coerceFloat handles the number-or-string price values models emit.
func coerceFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if amount, ok := ParseAmount(t); ok {
			return amount
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

func normalizeCurrencyCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return ""
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return code
}
