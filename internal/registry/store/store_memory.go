package store

import (
	"context"
	"sort"
	"sync"

	credmodels "pipvc/internal/credential/models"
	"pipvc/internal/registry/models"
	id "pipvc/pkg/domain"
)

// InMemoryStore is an in-memory implementation of Store for tests or local use.
// It is safe for concurrent access but does not persist across process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[credmodels.CredentialID]models.Entry
}

// NewInMemoryStore constructs an empty in-memory registry store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[credmodels.CredentialID]models.Entry)}
}

// Save stores a registry entry by credential ID.
func (s *InMemoryStore) Save(_ context.Context, entry models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

// FindByID retrieves an entry by credential ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id credmodels.CredentialID) (models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[id]; ok {
		return entry, nil
	}
	return models.Entry{}, ErrNotFound
}

// ListBySubject returns the subject's entries, most recently issued first.
func (s *InMemoryStore) ListBySubject(_ context.Context, subject id.SubjectID) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []models.Entry
	for _, entry := range s.entries {
		if entry.Subject == subject {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].IssuedAt.Equal(entries[j].IssuedAt) {
			return entries[i].IssuedAt.After(entries[j].IssuedAt)
		}
		// Stable tiebreak so repeated listings agree.
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// Update overwrites an existing entry or returns ErrNotFound.
func (s *InMemoryStore) Update(_ context.Context, entry models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return ErrNotFound
	}
	s.entries[entry.ID] = entry
	return nil
}

var _ Store = (*InMemoryStore)(nil)
