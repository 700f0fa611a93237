package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSelectorDetection is returned when the AI selector detection call
	// fails or produces unusable output. Non-fatal: callers fall back to
	// heuristic locators.
	ErrSelectorDetection = errors.New("selector detection failed")

	// ErrNoValidPrice signals that no candidate survived classification.
	// Internal only: it advances the orchestrator to the next tier and is
	// never surfaced to the caller directly.
	ErrNoValidPrice = errors.New("no valid price found")

	// ErrAIExtraction is returned when the last-tier AI extraction call
	// fails. Fatal: surfaced as the overall failure of the call.
	ErrAIExtraction = errors.New("ai extraction failed")

	// ErrInvalidExtraction is returned when name is empty or price is not
	// positive after all tiers. Fatal.
	ErrInvalidExtraction = errors.New("extraction produced no valid result")
)

// FetchError wraps a page fetch failure (network error, timeout, blocked or
// empty response). Fatal: there is nothing to extract from.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
