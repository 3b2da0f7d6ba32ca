package order

import (
	"context"
)

// Repository defines the interface to the backend ledger that persists order
// line items. Transport and serialization live behind it.
type Repository interface {
	// ListItems returns the persisted line items of an order in display order
	ListItems(ctx context.Context, orderID string) ([]*LineItem, error)

	// DeleteItem removes a single persisted line item
	DeleteItem(ctx context.Context, itemID int64) error

	// UpsertItems creates or updates the given items in one call and returns
	// the canonical persisted rows with assigned ids and server computed
	// totals.
	UpsertItems(ctx context.Context, orderID string, items []LineItemInput) ([]*LineItem, error)
}
