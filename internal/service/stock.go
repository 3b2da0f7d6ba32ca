package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/pubsub"
)

// StockWarning is the advisory published when a requested quantity is not
// currently satisfiable. The quantity change it refers to is retained either
// way; enforcement belongs to the backend at commit time.
type StockWarning struct {
	DraftID           string `json:"draft_id"`
	CatalogEntryID    int64  `json:"catalog_entry_id"`
	ItemName          string `json:"item_name"`
	RequestedQuantity int    `json:"requested_quantity"`
}

// StockService runs advisory availability checks. Checks never block or
// revert the mutation that triggered them.
type StockService interface {
	// CheckAvailability reports whether the quantity is satisfiable right now
	CheckAvailability(ctx context.Context, catalogEntryID int64, quantity int) (bool, error)

	// NotifyChange runs the advisory check for a mutated row in the
	// background and publishes a StockWarning on shortfall. Validator errors
	// are logged and suppressed, treated as unknown rather than unavailable.
	NotifyChange(ctx context.Context, draftID string, item *order.LineItem)

	// Wait blocks until all background checks have finished
	Wait()
}

type stockService struct {
	catalogRepo catalog.Repository
	publisher   pubsub.Publisher
	logger      *logger.Logger
	wg          sync.WaitGroup
}

func NewStockService(catalogRepo catalog.Repository, publisher pubsub.Publisher, logger *logger.Logger) StockService {
	return &stockService{
		catalogRepo: catalogRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *stockService) CheckAvailability(ctx context.Context, catalogEntryID int64, quantity int) (bool, error) {
	return s.catalogRepo.CheckAvailability(ctx, catalogEntryID, quantity)
}

func (s *stockService) NotifyChange(ctx context.Context, draftID string, item *order.LineItem) {
	if item == nil || !item.IsSelected() {
		return
	}

	// The check must outlive the request that triggered it; the caller's ctx
	// is cancelled as soon as the handler returns.
	ctx = context.WithoutCancel(ctx)

	entryID := item.CatalogEntryID
	name := item.Name
	quantity := item.Quantity

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ok, err := s.catalogRepo.CheckAvailability(ctx, entryID, quantity)
		if err != nil {
			s.logger.Warnw("stock check failed, treating availability as unknown",
				"catalog_entry_id", entryID,
				"quantity", quantity,
				"error", err)
			return
		}
		if ok {
			return
		}

		warning := StockWarning{
			DraftID:           draftID,
			CatalogEntryID:    entryID,
			ItemName:          name,
			RequestedQuantity: quantity,
		}
		s.logger.Warnw("requested quantity exceeds available stock",
			"draft_id", draftID,
			"catalog_entry_id", entryID,
			"item", name,
			"quantity", quantity)

		payload, err := json.Marshal(warning)
		if err != nil {
			return
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := s.publisher.Publish(ctx, pubsub.TopicStockWarning, msg); err != nil {
			s.logger.Warnw("failed to publish stock warning", "error", err)
		}
	}()
}

func (s *stockService) Wait() {
	s.wg.Wait()
}
