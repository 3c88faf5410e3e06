package memory

import (
	"context"
	"sync"

	"tickermap/scraper"
	"tickermap/storage"
)

// CompanyStore is an in-memory implementation of storage.CompanyStore.
type CompanyStore struct {
	mu        sync.RWMutex
	companies []scraper.Company
	seen      map[string]struct{}
}

// NewCompanyStore creates an empty store.
func NewCompanyStore() *CompanyStore {
	return &CompanyStore{seen: make(map[string]struct{})}
}

var _ storage.CompanyStore = (*CompanyStore)(nil)

// References returns the stored reference tickers.
func (s *CompanyStore) References(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make(map[string]struct{}, len(s.seen))
	for ref := range s.seen {
		refs[ref] = struct{}{}
	}
	return refs, nil
}

// Append adds companies not stored yet.
func (s *CompanyStore) Append(_ context.Context, companies []scraper.Company) error {
	for _, c := range companies {
		if c.Reference == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range companies {
		if _, ok := s.seen[c.Reference]; ok {
			continue
		}
		s.seen[c.Reference] = struct{}{}
		s.companies = append(s.companies, c)
	}
	return nil
}

// All returns every stored company in insertion order.
func (s *CompanyStore) All(_ context.Context) ([]scraper.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scraper.Company, len(s.companies))
	copy(out, s.companies)
	return out, nil
}
