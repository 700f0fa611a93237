package repository

import (
	"sync"
	"time"

	"pricelens/models"
)

// MemorySelectorStore keeps locator pairs in process memory. Used when no
// database is configured, and by tests.
type MemorySelectorStore struct {
	mu      sync.RWMutex
	records map[string]models.DomainLocatorRecord
}

func NewMemorySelectorStore() *MemorySelectorStore {
	return &MemorySelectorStore{
		records: make(map[string]models.DomainLocatorRecord),
	}
}

func (s *MemorySelectorStore) Get(domain string) (models.LocatorPair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[models.NormalizeDomain(domain)]
	if !ok {
		return models.LocatorPair{}, false, nil
	}
	return models.LocatorPair{NameLocator: rec.NameLocator, PriceLocator: rec.PriceLocator}, true, nil
}

func (s *MemorySelectorStore) Upsert(domain string, pair models.LocatorPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.NormalizeDomain(domain)
	s.records[key] = models.DomainLocatorRecord{
		Domain:       key,
		NameLocator:  pair.NameLocator,
		PriceLocator: pair.PriceLocator,
		UpdatedAt:    time.Now(),
	}
	return nil
}

// Len reports how many domains have learned locators.
func (s *MemorySelectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
