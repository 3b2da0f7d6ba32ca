package service

import (
	"encoding/json"
	"testing"

	"github.com/rxcart/rxcart/internal/api/dto"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/draft"
	"github.com/rxcart/rxcart/internal/domain/order"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/pubsub"
	"github.com/rxcart/rxcart/internal/testutil"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DraftServiceSuite struct {
	testutil.BaseServiceTestSuite
	service      DraftService
	stockService StockService
	catalogRepo  *testutil.InMemoryCatalogStore
	orderRepo    *testutil.InMemoryOrderStore
}

func TestDraftService(t *testing.T) {
	suite.Run(t, new(DraftServiceSuite))
}

func (s *DraftServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.catalogRepo = s.GetStores().CatalogRepo.(*testutil.InMemoryCatalogStore)
	s.orderRepo = s.GetStores().OrderRepo.(*testutil.InMemoryOrderStore)

	params := ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		CatalogRepo: s.catalogRepo,
		OrderRepo:   s.orderRepo,
		Publisher:   s.GetPubSub(),
	}
	pricing := NewPricingService()
	s.stockService = NewStockService(s.catalogRepo, s.GetPubSub(), s.GetLogger())
	commit := NewCommitService(s.orderRepo, pricing, s.GetLogger())

	svc, err := NewDraftService(params, pricing, s.stockService, commit)
	s.Require().NoError(err)
	s.service = svc
}

func (s *DraftServiceSuite) openDraft(billingContext types.BillingContext) *dto.DraftResponse {
	resp, err := s.service.Open(s.GetContext(), dto.OpenDraftRequest{
		OrderID:        "ord_1",
		BillingContext: billingContext,
	})
	s.Require().NoError(err)
	return resp
}

func (s *DraftServiceSuite) entry(id int64, name string, price float64, available int) dto.CatalogEntryRequest {
	return dto.CatalogEntryRequest{
		ID:                id,
		Name:              name,
		Strength:          "500mg",
		Form:              "tablet",
		UnitPrice:         decimal.NewFromFloat(price),
		AvailableQuantity: available,
	}
}

func (s *DraftServiceSuite) TestOpenStartsEmpty() {
	resp := s.openDraft(types.BillingContextPrescription)

	s.NotEmpty(resp.ID)
	s.Equal(types.DraftStatusEmpty, resp.Status)
	s.True(resp.Editable)
	s.Empty(resp.Items)
	s.Empty(resp.PendingDeletes)
	s.True(resp.Breakdown.Total.IsZero())
}

func (s *DraftServiceSuite) TestOpenSeedsPersistedItems() {
	s.orderRepo.SeedItem(&order.LineItem{
		OrderID:        "ord_1",
		CatalogEntryID: 5,
		Name:           "Aspirin",
		Quantity:       2,
		UnitPrice:      decimal.NewFromFloat(10.00),
	})

	resp, err := s.service.Open(s.GetContext(), dto.OpenDraftRequest{
		OrderID:        "ord_1",
		BillingContext: types.BillingContextPrescription,
		Seed:           true,
	})

	s.Require().NoError(err)
	s.Equal(types.DraftStatusEditing, resp.Status)
	s.Require().Len(resp.Items, 1)
	// totals are recomputed on load, not trusted from storage
	s.True(resp.Items[0].TotalPrice.Equal(decimal.NewFromFloat(20.00)))
	s.True(resp.Breakdown.Subtotal.Equal(decimal.NewFromFloat(20.00)))
}

func (s *DraftServiceSuite) TestOpenRejectsUnknownBillingContext() {
	_, err := s.service.Open(s.GetContext(), dto.OpenDraftRequest{
		OrderID:        "ord_1",
		BillingContext: "mail_order",
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DraftServiceSuite) TestSelectEntryCopiesCatalogDefaults() {
	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)

	resp, err := s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 12.50, 100),
	})

	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal(int64(5), resp.Items[0].CatalogEntryID)
	s.Equal("Aspirin", resp.Items[0].Name)
	s.Equal(1, resp.Items[0].Quantity)
	s.True(resp.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)))
	s.True(resp.Items[0].TotalPrice.Equal(decimal.NewFromFloat(12.50)))
	s.Equal(types.DraftStatusEditing, resp.Status)
}

func (s *DraftServiceSuite) TestManualPriceSurvivesQuantityChange() {
	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 12.50, 100),
	})
	s.Require().NoError(err)

	_, err = s.service.SetUnitPrice(s.GetContext(), opened.ID, 0, dto.SetUnitPriceRequest{
		UnitPrice: decimal.NewFromFloat(9.00),
	})
	s.Require().NoError(err)

	resp, err := s.service.SetQuantity(s.GetContext(), opened.ID, 0, dto.SetQuantityRequest{Quantity: 3})
	s.Require().NoError(err)
	s.True(resp.Items[0].UnitPrice.Equal(decimal.NewFromFloat(9.00)))
	s.True(resp.Items[0].TotalPrice.Equal(decimal.NewFromFloat(27.00)))
}

func (s *DraftServiceSuite) TestRejectedQuantityKeepsPreviousValue() {
	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 10.00, 100),
	})
	s.Require().NoError(err)
	_, err = s.service.SetQuantity(s.GetContext(), opened.ID, 0, dto.SetQuantityRequest{Quantity: 4})
	s.Require().NoError(err)

	_, err = s.service.SetQuantity(s.GetContext(), opened.ID, 0, dto.SetQuantityRequest{Quantity: -2})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	resp, err := s.service.Get(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	s.Equal(4, resp.Items[0].Quantity)
}

func (s *DraftServiceSuite) TestStockShortfallWarnsWithoutRevertingQuantity() {
	s.catalogRepo.AddEntry(&catalog.Entry{ID: 5, Name: "Aspirin", UnitPrice: decimal.NewFromFloat(10.00), AvailableQuantity: 5})

	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 10.00, 5),
	})
	s.Require().NoError(err)

	resp, err := s.service.SetQuantity(s.GetContext(), opened.ID, 0, dto.SetQuantityRequest{Quantity: 100})
	s.Require().NoError(err)
	s.stockService.Wait()

	// the mutation stands; the check is advisory only
	s.Equal(100, resp.Items[0].Quantity)

	warnings := s.GetPubSub().Messages(pubsub.TopicStockWarning)
	s.Require().Len(warnings, 1)
	var warning StockWarning
	s.Require().NoError(json.Unmarshal(warnings[0].Payload, &warning))
	s.Equal(int64(5), warning.CatalogEntryID)
	s.Equal(100, warning.RequestedQuantity)
}

func (s *DraftServiceSuite) TestStockCheckFailureIsSuppressed() {
	s.catalogRepo.SetAvailabilityError(assertableError("inventory service down"))

	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	resp, err := s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 10.00, 5),
	})
	s.Require().NoError(err)
	s.stockService.Wait()

	// availability unknown is not a shortfall
	s.Require().Len(resp.Items, 1)
	s.Empty(s.GetPubSub().Messages(pubsub.TopicStockWarning))
}

func (s *DraftServiceSuite) TestMutationsPublishPricing() {
	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 10.00, 100),
	})
	s.Require().NoError(err)

	msgs := s.GetPubSub().Messages(pubsub.TopicPricingUpdated)
	// open, add, select each publish a recomputed breakdown
	s.Require().Len(msgs, 3)
	s.Equal(opened.ID, msgs[2].Metadata.Get("draft_id"))

	var breakdown types.PricingBreakdown
	s.Require().NoError(json.Unmarshal(msgs[2].Payload, &breakdown))
	s.True(breakdown.Subtotal.Equal(decimal.NewFromFloat(10.00)))
}

func (s *DraftServiceSuite) TestRemovePersistedItemTombstonesIt() {
	s.orderRepo.SeedItem(&order.LineItem{ID: 7, OrderID: "ord_1", CatalogEntryID: 5, Name: "Aspirin", Quantity: 1, UnitPrice: decimal.NewFromFloat(3.00)})

	resp, err := s.service.Open(s.GetContext(), dto.OpenDraftRequest{
		OrderID:        "ord_1",
		BillingContext: types.BillingContextPrescription,
		Seed:           true,
	})
	s.Require().NoError(err)

	resp, err = s.service.RemoveItem(s.GetContext(), resp.ID, 0)
	s.Require().NoError(err)
	s.Empty(resp.Items)
	s.Equal([]int64{7}, resp.PendingDeletes)
	// removal is local until commit
	s.True(s.orderRepo.Has(7))
	s.True(resp.Breakdown.Subtotal.IsZero())
}

func (s *DraftServiceSuite) TestQuoteAppliesDiscountAndReceived() {
	opened := s.openDraft(types.BillingContextPointOfSale)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Paracetamol", 50.00, 100),
	})
	s.Require().NoError(err)
	_, err = s.service.SetQuantity(s.GetContext(), opened.ID, 0, dto.SetQuantityRequest{Quantity: 2})
	s.Require().NoError(err)

	received := decimal.NewFromFloat(110.00)
	breakdown, err := s.service.Quote(s.GetContext(), opened.ID, dto.QuoteRequest{
		Discount: decimal.NewFromFloat(5.00),
		Received: &received,
	})

	s.Require().NoError(err)
	s.True(breakdown.Subtotal.Equal(decimal.NewFromFloat(100.00)))
	s.True(breakdown.Discount.Equal(decimal.NewFromFloat(5.00)))
	s.True(breakdown.Tax.Equal(decimal.NewFromFloat(10.00)))
	s.True(breakdown.Total.Equal(decimal.NewFromFloat(105.00)))
	s.Require().NotNil(breakdown.Change)
	s.True(breakdown.Change.Equal(decimal.NewFromFloat(5.00)))
}

func (s *DraftServiceSuite) TestCommitThroughServicePublishesReconciledTotals() {
	opened := s.openDraft(types.BillingContextPrescription)
	_, err := s.service.AddBlankItem(s.GetContext(), opened.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectCatalogEntry(s.GetContext(), opened.ID, 0, dto.SelectEntryRequest{
		Entry: s.entry(5, "Aspirin", 10.00, 100),
	})
	s.Require().NoError(err)
	_, err = s.service.SetFreeText(s.GetContext(), opened.ID, 0, dto.SetFreeTextRequest{Field: draft.FieldDosage, Value: "1 tablet"})
	s.Require().NoError(err)
	_, err = s.service.SetFreeText(s.GetContext(), opened.ID, 0, dto.SetFreeTextRequest{Field: draft.FieldFrequency, Value: "twice daily"})
	s.Require().NoError(err)
	s.GetPubSub().Clear()

	resp, err := s.service.Commit(s.GetContext(), opened.ID)

	s.Require().NoError(err)
	s.NotEmpty(resp.Receipt)
	s.Require().Len(resp.Items, 1)
	s.NotZero(resp.Items[0].ID)

	msgs := s.GetPubSub().Messages(pubsub.TopicPricingUpdated)
	s.Require().Len(msgs, 1)
	var breakdown types.PricingBreakdown
	s.Require().NoError(json.Unmarshal(msgs[0].Payload, &breakdown))
	s.True(breakdown.Subtotal.Equal(decimal.NewFromFloat(10.00)))
}

func (s *DraftServiceSuite) TestCloseForgetsDraft() {
	opened := s.openDraft(types.BillingContextPrescription)

	s.NoError(s.service.Close(s.GetContext(), opened.ID))

	_, err := s.service.Get(s.GetContext(), opened.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *DraftServiceSuite) TestUnknownDraftID() {
	_, err := s.service.AddBlankItem(s.GetContext(), "draft_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

// assertableError is a trivial error value for injection
type assertableError string

func (e assertableError) Error() string { return string(e) }
