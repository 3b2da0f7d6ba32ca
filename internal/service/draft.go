package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rxcart/rxcart/internal/api/dto"
	"github.com/rxcart/rxcart/internal/domain/draft"
	"github.com/rxcart/rxcart/internal/domain/order"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/pubsub"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/shopspring/decimal"
)

// DraftService owns the in-progress drafts, one per open order or bill view.
// Mutations apply synchronously in caller order; the recomputed pricing
// breakdown is returned to the caller and published for any subscriber
// watching totals. Catalog search and stock checks only annotate, they never
// mutate through this service.
type DraftService interface {
	Open(ctx context.Context, req dto.OpenDraftRequest) (*dto.DraftResponse, error)
	Get(ctx context.Context, draftID string) (*dto.DraftResponse, error)
	Close(ctx context.Context, draftID string) error

	AddBlankItem(ctx context.Context, draftID string) (*dto.DraftResponse, error)
	SelectCatalogEntry(ctx context.Context, draftID string, index int, req dto.SelectEntryRequest) (*dto.DraftResponse, error)
	ClearSelection(ctx context.Context, draftID string, index int) (*dto.DraftResponse, error)
	SetQuantity(ctx context.Context, draftID string, index int, req dto.SetQuantityRequest) (*dto.DraftResponse, error)
	SetUnitPrice(ctx context.Context, draftID string, index int, req dto.SetUnitPriceRequest) (*dto.DraftResponse, error)
	SetFreeText(ctx context.Context, draftID string, index int, req dto.SetFreeTextRequest) (*dto.DraftResponse, error)
	RemoveItem(ctx context.Context, draftID string, index int) (*dto.DraftResponse, error)

	// Quote recomputes the breakdown with a bill level discount and, for
	// point of sale settlement, the cash received
	Quote(ctx context.Context, draftID string, req dto.QuoteRequest) (*types.PricingBreakdown, error)

	Commit(ctx context.Context, draftID string) (*dto.CommitResponse, error)
}

type draftService struct {
	logger         *logger.Logger
	orderRepo      order.Repository
	pricingService PricingService
	stockService   StockService
	commitService  CommitService
	publisher      pubsub.Publisher
	taxRate        decimal.Decimal

	mu     sync.RWMutex
	drafts map[string]*draft.State
}

func NewDraftService(
	params ServiceParams,
	pricingService PricingService,
	stockService StockService,
	commitService CommitService,
) (DraftService, error) {
	taxRate, err := params.Config.Pricing.GetTaxRate()
	if err != nil {
		return nil, err
	}

	return &draftService{
		logger:         params.Logger,
		orderRepo:      params.OrderRepo,
		pricingService: pricingService,
		stockService:   stockService,
		commitService:  commitService,
		publisher:      params.Publisher,
		taxRate:        taxRate,
		drafts:         make(map[string]*draft.State),
	}, nil
}

func (s *draftService) Open(ctx context.Context, req dto.OpenDraftRequest) (*dto.DraftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var seed []*order.LineItem
	if req.Seed {
		items, err := s.orderRepo.ListItems(ctx, req.OrderID)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Could not load the order's saved items").
				Mark(ierr.ErrHTTPClient)
		}
		seed = items
	}

	state := draft.NewState(req.OrderID, req.BillingContext, req.IsEditable(), seed)

	s.mu.Lock()
	s.drafts[state.ID] = state
	s.mu.Unlock()

	s.logger.Infow("draft opened",
		"draft_id", state.ID,
		"order_id", state.OrderID,
		"billing_context", state.Context,
		"seeded_items", len(seed),
		"request_id", types.GetRequestID(ctx))

	return s.respond(ctx, state), nil
}

func (s *draftService) Get(ctx context.Context, draftID string) (*dto.DraftResponse, error) {
	state, err := s.state(draftID)
	if err != nil {
		return nil, err
	}
	return dto.NewDraftResponse(state, s.breakdown(state, dto.QuoteRequest{})), nil
}

func (s *draftService) Close(ctx context.Context, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[draftID]; !ok {
		return s.notFound(draftID)
	}
	delete(s.drafts, draftID)
	return nil
}

func (s *draftService) AddBlankItem(ctx context.Context, draftID string) (*dto.DraftResponse, error) {
	return s.mutate(ctx, draftID, func(state *draft.State) error {
		state.AddBlankItem()
		return nil
	})
}

func (s *draftService) SelectCatalogEntry(ctx context.Context, draftID string, index int, req dto.SelectEntryRequest) (*dto.DraftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.mutate(ctx, draftID, func(state *draft.State) error {
		if err := state.SelectCatalogEntry(index, req.Entry.ToEntry()); err != nil {
			return err
		}
		s.stockService.NotifyChange(ctx, draftID, state.Items[index])
		return nil
	})
	return resp, err
}

func (s *draftService) ClearSelection(ctx context.Context, draftID string, index int) (*dto.DraftResponse, error) {
	return s.mutate(ctx, draftID, func(state *draft.State) error {
		return state.ClearSelection(index)
	})
}

func (s *draftService) SetQuantity(ctx context.Context, draftID string, index int, req dto.SetQuantityRequest) (*dto.DraftResponse, error) {
	return s.mutate(ctx, draftID, func(state *draft.State) error {
		if err := state.SetQuantity(index, req.Quantity); err != nil {
			return err
		}
		s.stockService.NotifyChange(ctx, draftID, state.Items[index])
		return nil
	})
}

func (s *draftService) SetUnitPrice(ctx context.Context, draftID string, index int, req dto.SetUnitPriceRequest) (*dto.DraftResponse, error) {
	return s.mutate(ctx, draftID, func(state *draft.State) error {
		return state.SetUnitPrice(index, req.UnitPrice)
	})
}

func (s *draftService) SetFreeText(ctx context.Context, draftID string, index int, req dto.SetFreeTextRequest) (*dto.DraftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, draftID, func(state *draft.State) error {
		return state.SetFreeText(index, req.Field, req.Value)
	})
}

func (s *draftService) RemoveItem(ctx context.Context, draftID string, index int) (*dto.DraftResponse, error) {
	return s.mutate(ctx, draftID, func(state *draft.State) error {
		return state.RemoveItem(index)
	})
}

func (s *draftService) Quote(ctx context.Context, draftID string, req dto.QuoteRequest) (*types.PricingBreakdown, error) {
	state, err := s.state(draftID)
	if err != nil {
		return nil, err
	}
	breakdown := s.breakdown(state, req)
	return breakdown, nil
}

func (s *draftService) Commit(ctx context.Context, draftID string) (*dto.CommitResponse, error) {
	state, err := s.state(draftID)
	if err != nil {
		return nil, err
	}

	resp, err := s.commitService.Commit(ctx, state, s.pricingParams(state, dto.QuoteRequest{}))
	if err != nil {
		return nil, err
	}

	// The reconciled totals are the canonical ones; let subscribers know
	s.publish(ctx, &resp.Breakdown)
	return resp, nil
}

// mutate applies one operator action and, on success, recomputes and
// publishes the breakdown as an observable side effect.
func (s *draftService) mutate(ctx context.Context, draftID string, fn func(state *draft.State) error) (*dto.DraftResponse, error) {
	state, err := s.state(draftID)
	if err != nil {
		return nil, err
	}

	if err := fn(state); err != nil {
		return nil, err
	}

	return s.respond(ctx, state), nil
}

func (s *draftService) respond(ctx context.Context, state *draft.State) *dto.DraftResponse {
	breakdown := s.breakdown(state, dto.QuoteRequest{})
	s.publish(ctx, breakdown)
	return dto.NewDraftResponse(state, breakdown)
}

func (s *draftService) breakdown(state *draft.State, req dto.QuoteRequest) *types.PricingBreakdown {
	breakdown := s.pricingService.Compute(state.Items, s.pricingParams(state, req))
	breakdown.DraftID = state.ID
	return &breakdown
}

func (s *draftService) pricingParams(state *draft.State, req dto.QuoteRequest) types.PricingParams {
	return types.PricingParams{
		Context:  state.Context,
		TaxRate:  s.taxRate,
		Discount: req.Discount,
		Received: req.Received,
	}
}

func (s *draftService) publish(ctx context.Context, breakdown *types.PricingBreakdown) {
	payload, err := json.Marshal(breakdown)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("draft_id", breakdown.DraftID)
	if err := s.publisher.Publish(ctx, pubsub.TopicPricingUpdated, msg); err != nil {
		s.logger.Warnw("failed to publish pricing breakdown",
			"draft_id", breakdown.DraftID,
			"error", err)
	}
}

func (s *draftService) state(draftID string) (*draft.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.drafts[draftID]
	if !ok {
		return nil, s.notFound(draftID)
	}
	return state, nil
}

func (s *draftService) notFound(draftID string) error {
	return ierr.NewError("draft not found").
		WithHintf("No open draft with id %s", draftID).
		Mark(ierr.ErrNotFound)
}
