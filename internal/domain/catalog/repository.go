package catalog

import (
	"context"
)

// Repository defines the read-side interface to the external catalog service
type Repository interface {
	// Search returns entries matching a free text query
	Search(ctx context.Context, query string) ([]*Entry, error)

	// CheckAvailability reports whether the requested quantity of an entry is
	// currently satisfiable. Advisory only; stock fluctuates and the backend
	// remains the enforcement authority at commit time.
	CheckAvailability(ctx context.Context, entryID int64, quantity int) (bool, error)
}
