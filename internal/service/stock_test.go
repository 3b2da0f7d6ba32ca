package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/pubsub"
	"github.com/rxcart/rxcart/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ctxAwareCatalogRepo refuses calls once the passed context is done, the way
// a real HTTP-backed repository does.
type ctxAwareCatalogRepo struct {
	*testutil.InMemoryCatalogStore
}

func (r *ctxAwareCatalogRepo) CheckAvailability(ctx context.Context, entryID int64, quantity int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.InMemoryCatalogStore.CheckAvailability(ctx, entryID, quantity)
}

type StockServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     StockService
	catalogRepo *ctxAwareCatalogRepo
}

func TestStockService(t *testing.T) {
	suite.Run(t, new(StockServiceSuite))
}

func (s *StockServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.catalogRepo = &ctxAwareCatalogRepo{
		InMemoryCatalogStore: s.GetStores().CatalogRepo.(*testutil.InMemoryCatalogStore),
	}
	s.service = NewStockService(s.catalogRepo, s.GetPubSub(), s.GetLogger())
}

func (s *StockServiceSuite) selectedItem(entryID int64, qty int) *order.LineItem {
	return &order.LineItem{
		CatalogEntryID: entryID,
		Name:           "Aspirin",
		Quantity:       qty,
		UnitPrice:      decimal.NewFromFloat(10.00),
	}
}

func (s *StockServiceSuite) TestShortfallPublishesWarning() {
	s.catalogRepo.AddEntry(&catalog.Entry{ID: 5, Name: "Aspirin", AvailableQuantity: 5})

	s.service.NotifyChange(s.GetContext(), "draft_1", s.selectedItem(5, 100))
	s.service.Wait()

	warnings := s.GetPubSub().Messages(pubsub.TopicStockWarning)
	s.Require().Len(warnings, 1)
	var warning StockWarning
	s.Require().NoError(json.Unmarshal(warnings[0].Payload, &warning))
	s.Equal("draft_1", warning.DraftID)
	s.Equal(int64(5), warning.CatalogEntryID)
	s.Equal(100, warning.RequestedQuantity)
}

func (s *StockServiceSuite) TestCheckSurvivesRequestCancellation() {
	s.catalogRepo.AddEntry(&catalog.Entry{ID: 5, Name: "Aspirin", AvailableQuantity: 5})

	// the request-scoped ctx is already done by the time the background
	// check runs, as happens when the handler has returned
	ctx, cancel := context.WithCancel(s.GetContext())
	cancel()

	s.service.NotifyChange(ctx, "draft_1", s.selectedItem(5, 100))
	s.service.Wait()

	warnings := s.GetPubSub().Messages(pubsub.TopicStockWarning)
	s.Require().Len(warnings, 1)
	s.Equal(1, s.catalogRepo.AvailabilityCalls())
}

func (s *StockServiceSuite) TestSatisfiableQuantityStaysQuiet() {
	s.catalogRepo.AddEntry(&catalog.Entry{ID: 5, Name: "Aspirin", AvailableQuantity: 50})

	s.service.NotifyChange(s.GetContext(), "draft_1", s.selectedItem(5, 10))
	s.service.Wait()

	s.Empty(s.GetPubSub().Messages(pubsub.TopicStockWarning))
}

func (s *StockServiceSuite) TestUnselectedRowIsIgnored() {
	s.service.NotifyChange(s.GetContext(), "draft_1", s.selectedItem(order.UnselectedCatalogEntryID, 10))
	s.service.Wait()

	s.Zero(s.catalogRepo.AvailabilityCalls())
	s.Empty(s.GetPubSub().Messages(pubsub.TopicStockWarning))
}
