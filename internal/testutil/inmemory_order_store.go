package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/shopspring/decimal"
)

// InMemoryOrderStore implements order.Repository for tests. It behaves like
// the backend ledger: upserts assign ids and recompute totals server side,
// and individual deletions can be made to fail for the partial failure paths.
type InMemoryOrderStore struct {
	mu sync.Mutex

	items      map[int64]*order.LineItem
	nextID     int64
	deleteErrs map[int64]error
	upsertErr  error

	deleteCalls []int64
	upsertCalls int
}

// NewInMemoryOrderStore creates a new in-memory order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		items:      make(map[int64]*order.LineItem),
		nextID:     1,
		deleteErrs: make(map[int64]error),
	}
}

// SeedItem stores a persisted line item, assigning an id when absent
func (s *InMemoryOrderStore) SeedItem(item *order.LineItem) *order.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := item.Copy()
	if copied.ID == 0 {
		copied.ID = s.nextID
		s.nextID++
	} else if copied.ID >= s.nextID {
		s.nextID = copied.ID + 1
	}
	s.items[copied.ID] = copied
	return copied.Copy()
}

// FailDeleteFor makes deleting the given id fail with err
func (s *InMemoryOrderStore) FailDeleteFor(id int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErrs[id] = err
}

// SetUpsertError makes the next upsert fail entirely
func (s *InMemoryOrderStore) SetUpsertError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertErr = err
}

// DeleteCalls returns the item ids the deletion phase attempted, in order
func (s *InMemoryOrderStore) DeleteCalls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.deleteCalls))
	copy(out, s.deleteCalls)
	return out
}

// UpsertCalls returns how many bulk upserts were issued
func (s *InMemoryOrderStore) UpsertCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCalls
}

// Has reports whether an item id is currently persisted
func (s *InMemoryOrderStore) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	return ok
}

// Clear resets the store
func (s *InMemoryOrderStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]*order.LineItem)
	s.nextID = 1
	s.deleteErrs = make(map[int64]error)
	s.upsertErr = nil
	s.deleteCalls = nil
	s.upsertCalls = 0
}

func (s *InMemoryOrderStore) ListItems(ctx context.Context, orderID string) ([]*order.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*order.LineItem
	for _, item := range s.items {
		if item.OrderID == orderID {
			out = append(out, item.Copy())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryOrderStore) DeleteItem(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteCalls = append(s.deleteCalls, itemID)
	if err, ok := s.deleteErrs[itemID]; ok {
		return err
	}
	delete(s.items, itemID)
	return nil
}

func (s *InMemoryOrderStore) UpsertItems(ctx context.Context, orderID string, inputs []order.LineItemInput) ([]*order.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertCalls++
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}

	canonical := make([]*order.LineItem, 0, len(inputs))
	for _, in := range inputs {
		item := &order.LineItem{
			ID:             in.ID,
			OrderID:        orderID,
			CatalogEntryID: in.CatalogEntryID,
			Name:           in.Name,
			Strength:       in.Strength,
			Form:           in.Form,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			LineDiscount:   in.LineDiscount,
			Dosage:         in.Dosage,
			Frequency:      in.Frequency,
			Instructions:   in.Instructions,
		}
		if item.ID == 0 {
			item.ID = s.nextID
			s.nextID++
		}
		// server side recomputation of the line total
		item.TotalPrice = decimal.NewFromInt(int64(item.Quantity)).
			Mul(item.UnitPrice).
			Sub(item.LineDiscount).
			Round(2)
		s.items[item.ID] = item
		canonical = append(canonical, item.Copy())
	}
	return canonical, nil
}
