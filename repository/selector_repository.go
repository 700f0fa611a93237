package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricelens/models"
)

// SelectorStore is the persistent mapping domain -> locator pair. Writes
// are whole-record replacements, so concurrent writers for the same domain
// are safe under last-write-wins.
type SelectorStore interface {
	Get(domain string) (models.LocatorPair, bool, error)
	Upsert(domain string, pair models.LocatorPair) error
}

// SelectorRepository is the postgres-backed SelectorStore.
type SelectorRepository struct {
	db *sql.DB
}

func NewSelectorRepository(db *sql.DB) *SelectorRepository {
	return &SelectorRepository{db: db}
}

// Get returns the cached locator pair for a domain.
func (r *SelectorRepository) Get(domain string) (models.LocatorPair, bool, error) {
	query := `
		SELECT name_locator, price_locator
		FROM domain_selectors
		WHERE domain = $1
	`

	var pair models.LocatorPair
	err := r.db.QueryRow(query, models.NormalizeDomain(domain)).Scan(&pair.NameLocator, &pair.PriceLocator)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.LocatorPair{}, false, nil
		}
		return models.LocatorPair{}, false, fmt.Errorf("failed to get domain selectors: %v", err)
	}

	return pair, true, nil
}

// Upsert stores the locator pair for a domain, replacing any previous pair
// and always bumping updated_at.
func (r *SelectorRepository) Upsert(domain string, pair models.LocatorPair) error {
	query := `
		INSERT INTO domain_selectors (domain, name_locator, price_locator, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (domain) DO UPDATE
		SET name_locator = EXCLUDED.name_locator,
		    price_locator = EXCLUDED.price_locator,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(query, models.NormalizeDomain(domain), pair.NameLocator, pair.PriceLocator, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert domain selectors: %v", err)
	}

	return nil
}

// Record returns the full persisted record, including updated_at.
func (r *SelectorRepository) Record(domain string) (*models.DomainLocatorRecord, error) {
	query := `
		SELECT domain, name_locator, price_locator, updated_at
		FROM domain_selectors
		WHERE domain = $1
	`

	var rec models.DomainLocatorRecord
	err := r.db.QueryRow(query, models.NormalizeDomain(domain)).Scan(
		&rec.Domain, &rec.NameLocator, &rec.PriceLocator, &rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("domain not found")
		}
		return nil, fmt.Errorf("failed to get domain record: %v", err)
	}

	return &rec, nil
}
