// Package handlers exposes the extraction pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"pricelens/currency"
	"pricelens/extractor"
	"pricelens/models"
)

// Handlers holds the wired pipeline plus the currency table used for the
// optional canonical conversion.
type Handlers struct {
	orchestrator    *extractor.Orchestrator
	defaultCurrency string
}

func NewHandlers(o *extractor.Orchestrator, defaultCurrency string) *Handlers {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &Handlers{orchestrator: o, defaultCurrency: defaultCurrency}
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Success bool                  `json:"success"`
	Product *models.ProductRecord `json:"product,omitempty"`
	// CanonicalPrice is the price converted to the service default
	// currency, present only when ?canonical=1 is set.
	CanonicalPrice    *float64 `json:"canonical_price,omitempty"`
	CanonicalCurrency string   `json:"canonical_currency,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// ExtractProduct handles POST /api/v1/extract. The request body carries the
// product page URL; the response is the extracted record.
func (h *Handlers) ExtractProduct(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	log.Printf("Extraction requested for %s", req.URL)

	record, err := h.orchestrator.ExtractProduct(r.Context(), req.URL)
	if err != nil {
		status := statusForError(err)
		log.Printf("Extraction failed for %s: %v", req.URL, err)
		writeError(w, status, err.Error())
		return
	}

	resp := extractResponse{Success: true, Product: record}

	if r.URL.Query().Get("canonical") == "1" && record.Price > 0 {
		canonical := currency.FromCanonical(currency.ToCanonical(record.Price, record.Currency), h.defaultCurrency)
		resp.CanonicalPrice = &canonical
		resp.CanonicalCurrency = h.defaultCurrency
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "pricelens",
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// statusForError maps pipeline failures to HTTP statuses: upstream fetch
// and model failures are 502, an empty result is 422.
func statusForError(err error) int {
	var fetchErr *models.FetchError
	switch {
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrAIExtraction):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrInvalidExtraction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, extractResponse{Success: false, Error: message})
}
