package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/rxcart/rxcart/internal/domain/catalog"
)

// InMemoryCatalogStore implements catalog.Repository for tests. It records
// every dispatched search so debounce behavior can be asserted, and supports
// error injection for the advisory failure paths.
type InMemoryCatalogStore struct {
	store *InMemoryStore[*catalog.Entry]

	mu                sync.Mutex
	searchQueries     []string
	searchErr         error
	availabilityErr   error
	availabilityCalls int
}

// NewInMemoryCatalogStore creates a new in-memory catalog store
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		store: NewInMemoryStore[*catalog.Entry](),
	}
}

// AddEntry seeds a catalog entry
func (s *InMemoryCatalogStore) AddEntry(entry *catalog.Entry) {
	_ = s.store.Create(context.Background(), entry.ID, entry)
}

// SetSearchError makes every subsequent search fail with err
func (s *InMemoryCatalogStore) SetSearchError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchErr = err
}

// SetAvailabilityError makes every subsequent availability check fail with err
func (s *InMemoryCatalogStore) SetAvailabilityError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availabilityErr = err
}

// SearchQueries returns the queries that reached the store, in dispatch order
func (s *InMemoryCatalogStore) SearchQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.searchQueries))
	copy(out, s.searchQueries)
	return out
}

// AvailabilityCalls returns how many availability checks were dispatched
func (s *InMemoryCatalogStore) AvailabilityCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availabilityCalls
}

// Clear resets entries and recorded calls
func (s *InMemoryCatalogStore) Clear() {
	s.store.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQueries = nil
	s.searchErr = nil
	s.availabilityErr = nil
	s.availabilityCalls = 0
}

func (s *InMemoryCatalogStore) Search(ctx context.Context, query string) ([]*catalog.Entry, error) {
	s.mu.Lock()
	s.searchQueries = append(s.searchQueries, query)
	err := s.searchErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	matched, listErr := s.store.List(ctx, query, func(_ context.Context, e *catalog.Entry, filter interface{}) bool {
		q, _ := filter.(string)
		return strings.Contains(strings.ToLower(e.Name), strings.ToLower(q))
	}, func(i, j *catalog.Entry) bool {
		return i.ID < j.ID
	})
	if listErr != nil {
		return nil, listErr
	}

	out := make([]*catalog.Entry, 0, len(matched))
	for _, e := range matched {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryCatalogStore) CheckAvailability(ctx context.Context, entryID int64, quantity int) (bool, error) {
	s.mu.Lock()
	s.availabilityCalls++
	err := s.availabilityErr
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	entry, getErr := s.store.Get(ctx, entryID)
	if getErr != nil {
		return false, nil
	}
	return entry.AvailableQuantity >= quantity, nil
}
