package models

import (
	"strings"
	"time"
)

// MinValidPrice and MaxValidPrice bound what the pipeline accepts as a
// plausible product price. Anything outside is treated as extraction noise.
const (
	MinValidPrice = 1.0
	MaxValidPrice = 10_000_000.0
)

// ProductRecord is the final output of an extraction call. It is immutable
// once returned: Price is either 0 (extraction failed for that field) or a
// validated amount, and Currency is always a 3-letter code.
type ProductRecord struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Features    []string `json:"features"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	SourceURL   string   `json:"source_url"`
	AIVerified  bool     `json:"ai_verified"`
}

// LocatorPair is the learned (name, price) locator set for a domain.
type LocatorPair struct {
	NameLocator  string `json:"name_locator"`
	PriceLocator string `json:"price_locator"`
}

// IsComplete reports whether both locators are usable.
func (p LocatorPair) IsComplete() bool {
	return strings.TrimSpace(p.NameLocator) != "" && strings.TrimSpace(p.PriceLocator) != ""
}

// DomainLocatorRecord is the persisted form of a learned locator pair.
// Upserted whenever detection runs for the domain, never deleted here.
type DomainLocatorRecord struct {
	Domain       string    `json:"domain" db:"domain"`
	NameLocator  string    `json:"name_locator" db:"name_locator"`
	PriceLocator string    `json:"price_locator" db:"price_locator"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PriceCandidate is a text fragment matched by a price locator, classified
// but not yet confirmed as the actual current price. Lives for a single
// extraction call only.
type PriceCandidate struct {
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	SourceText      string  `json:"source_text"`
	IsRating        bool    `json:"is_rating"`
	IsDiscount      bool    `json:"is_discount"`
	IsFee           bool    `json:"is_fee"`
	IsStrikethrough bool    `json:"is_strikethrough"`
}

// Rejected reports whether any classification rule disqualified the
// candidate. The tags are not mutually exclusive.
func (c PriceCandidate) Rejected() bool {
	return c.IsRating || c.IsDiscount || c.IsFee || c.IsStrikethrough
}

// IsValidPrice reports whether p falls inside the accepted price range.
func IsValidPrice(p float64) bool {
	return p >= MinValidPrice && p <= MaxValidPrice
}

// NormalizeDomain reduces a hostname to the store key: lowercase, leading
// "www." stripped.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
