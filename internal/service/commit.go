package service

import (
	"context"

	"github.com/rxcart/rxcart/internal/api/dto"
	"github.com/rxcart/rxcart/internal/domain/draft"
	"github.com/rxcart/rxcart/internal/domain/order"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/logger"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/samber/lo"
)

// CommitService drains a draft into the backend ledger: tombstoned deletions
// first, then one bulk upsert of the valid rows, then reconciliation of local
// state to the server canonical response. Phases are strictly sequential;
// deletions must land before potentially overlapping rows are recreated.
type CommitService interface {
	Commit(ctx context.Context, state *draft.State, params types.PricingParams) (*dto.CommitResponse, error)
}

type commitService struct {
	orderRepo      order.Repository
	pricingService PricingService
	logger         *logger.Logger
}

func NewCommitService(orderRepo order.Repository, pricingService PricingService, logger *logger.Logger) CommitService {
	return &commitService{
		orderRepo:      orderRepo,
		pricingService: pricingService,
		logger:         logger,
	}
}

func (s *commitService) Commit(ctx context.Context, state *draft.State, params types.PricingParams) (*dto.CommitResponse, error) {
	validItems := state.ValidItems()

	// Trivially empty commits are rejected before any externally visible
	// effect, including the status transition. If only deletions exist, the
	// deletion phase still proceeds.
	if len(validItems) == 0 && state.Tombstones.IsEmpty() {
		return nil, ierr.NewError("nothing to save").
			WithHint("Add at least one medicine to the order before saving").
			Mark(ierr.ErrInvalidOperation)
	}

	// Fail fast while editing is disallowed or another save is in flight
	if err := state.BeginSave(); err != nil {
		return nil, err
	}
	defer state.EndSave()

	// Phase 1: deletions. Each id is attempted independently; one failure is
	// recorded but does not abort the rest.
	deleted, failedDeletes := s.deleteTombstones(ctx, state)

	// Phase 3: field validation for every valid item, before any upsert is
	// issued. Deletions that already landed are not rolled back; that
	// inconsistency window is accepted and documented.
	for _, item := range validItems {
		if err := item.Validate(state.Context); err != nil {
			return nil, err
		}
	}

	// Phase 4: one bulk upsert carrying the full valid set. A failure here
	// means the upsert was not applied at all; local edits are retained so
	// the operator can retry without re-entering data.
	canonical := []*order.LineItem{}
	if len(validItems) > 0 {
		inputs := lo.Map(validItems, func(item *order.LineItem, _ int) order.LineItemInput {
			return item.ToInput()
		})
		var err error
		canonical, err = s.orderRepo.UpsertItems(ctx, state.OrderID, inputs)
		if err != nil {
			s.logger.Errorw("bulk upsert failed, draft retained for retry",
				"draft_id", state.ID,
				"order_id", state.OrderID,
				"items", len(inputs),
				"error", err)
			return nil, ierr.WithError(err).
				WithHint("Saving the order failed; your edits are kept, please retry").
				Mark(ierr.ErrHTTPClient)
		}
	}

	// Phase 5: reconcile to the server canonical rows and recompute totals
	// from them, not from the pre commit local state.
	state.Replace(canonical)
	breakdown := s.pricingService.Compute(state.Items, params)
	breakdown.DraftID = state.ID

	resp := &dto.CommitResponse{
		Receipt:        types.GenerateShortIDWithPrefix(types.UUIDPrefixReceipt),
		Items:          dto.NewLineItemResponses(state.Items),
		Breakdown:      breakdown,
		FailedDeletes:  failedDeletes,
		DeletedItemIDs: deleted,
	}

	s.logger.Infow("draft committed",
		"draft_id", state.ID,
		"order_id", state.OrderID,
		"user_id", types.GetUserID(ctx),
		"items", len(resp.Items),
		"deleted", len(deleted),
		"failed_deletes", len(failedDeletes))

	return resp, nil
}

// deleteTombstones folds over the tombstone set collecting a per id outcome.
// Succeeded ids leave the set; failed ids stay marked so a retry re-attempts
// them, and are reported back to the operator.
func (s *commitService) deleteTombstones(ctx context.Context, state *draft.State) ([]int64, []dto.FailedDelete) {
	ids := state.Tombstones.IDs()
	if len(ids) == 0 {
		return nil, nil
	}

	deleted := make([]int64, 0, len(ids))
	failed := make([]dto.FailedDelete, 0)

	for _, id := range ids {
		if err := s.orderRepo.DeleteItem(ctx, id); err != nil {
			s.logger.Warnw("failed to delete line item",
				"draft_id", state.ID,
				"item_id", id,
				"error", err)
			failed = append(failed, dto.FailedDelete{ItemID: id, Error: err.Error()})
			continue
		}
		deleted = append(deleted, id)
	}

	state.Tombstones.Clear()
	for _, f := range failed {
		state.Tombstones.Add(f.ItemID)
	}

	return deleted, failed
}
