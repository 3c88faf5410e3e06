// Package memory provides in-memory storage backends for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"tickermap/mapping"
	"tickermap/storage"
)

// MappingStore is an in-memory implementation of storage.MappingStore.
type MappingStore struct {
	mu    sync.RWMutex
	saved *mapping.Mapping
	saves int
}

// NewMappingStore creates an empty store.
func NewMappingStore() *MappingStore {
	return &MappingStore{}
}

var _ storage.MappingStore = (*MappingStore)(nil)

// Load returns a copy of the saved mapping.
func (s *MappingStore) Load(_ context.Context) (*mapping.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.saved == nil {
		return nil, storage.ErrNotFound
	}
	return s.saved.Clone(), nil
}

// Save stores a copy of m.
func (s *MappingStore) Save(_ context.Context, m *mapping.Mapping) error {
	if m == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = m.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MappingStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
