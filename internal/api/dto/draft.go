package dto

import (
	"github.com/rxcart/rxcart/internal/domain/draft"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/rxcart/rxcart/internal/validator"
	"github.com/shopspring/decimal"
)

// OpenDraftRequest opens an editing session for an order or walk-in bill
type OpenDraftRequest struct {
	OrderID        string               `json:"order_id" validate:"required"`
	BillingContext types.BillingContext `json:"billing_context" validate:"required"`
	// Seed loads the order's persisted items into the draft
	Seed bool `json:"seed"`
	// Editable mirrors the owning order's status; commits are refused when false
	Editable *bool `json:"editable"`
}

func (r *OpenDraftRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingContext.Validate()
}

func (r *OpenDraftRequest) IsEditable() bool {
	if r.Editable == nil {
		return true
	}
	return *r.Editable
}

// SelectEntryRequest binds a row to a catalog entry chosen from search results
type SelectEntryRequest struct {
	Entry CatalogEntryRequest `json:"entry" validate:"required"`
}

func (r *SelectEntryRequest) Validate() error {
	return r.Entry.Validate()
}

// SetQuantityRequest updates a row's quantity
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

func (r *SetQuantityRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SetUnitPriceRequest overrides a row's unit price
type SetUnitPriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

func (r *SetUnitPriceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SetFreeTextRequest updates dosage, frequency or instructions
type SetFreeTextRequest struct {
	Field draft.FreeTextField `json:"field" validate:"required"`
	Value string              `json:"value"`
}

func (r *SetFreeTextRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Field.Validate()
}

// QuoteRequest asks for a settlement quote on the current draft totals
type QuoteRequest struct {
	Discount decimal.Decimal  `json:"discount"`
	Received *decimal.Decimal `json:"received,omitempty"`
}

// LineItemResponse mirrors one draft row
type LineItemResponse struct {
	ID             int64           `json:"id,omitempty"`
	CatalogEntryID int64           `json:"catalog_entry_id"`
	Name           string          `json:"name"`
	Strength       string          `json:"strength"`
	Form           string          `json:"form"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	LineDiscount   decimal.Decimal `json:"line_discount"`
	Dosage         string          `json:"dosage"`
	Frequency      string          `json:"frequency"`
	Instructions   string          `json:"instructions"`
	Dispensed      bool            `json:"dispensed"`
}

func NewLineItemResponse(item *order.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:             item.ID,
		CatalogEntryID: item.CatalogEntryID,
		Name:           item.Name,
		Strength:       item.Strength,
		Form:           item.Form,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		TotalPrice:     item.TotalPrice,
		LineDiscount:   item.LineDiscount,
		Dosage:         item.Dosage,
		Frequency:      item.Frequency,
		Instructions:   item.Instructions,
		Dispensed:      item.Dispensed,
	}
}

func NewLineItemResponses(items []*order.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewLineItemResponse(item))
	}
	return out
}

// DraftResponse is the full view of an editing session
type DraftResponse struct {
	ID             string                  `json:"id"`
	OrderID        string                  `json:"order_id"`
	BillingContext types.BillingContext    `json:"billing_context"`
	Status         types.DraftStatus       `json:"status"`
	Editable       bool                    `json:"editable"`
	Items          []LineItemResponse      `json:"items"`
	PendingDeletes []int64                 `json:"pending_deletes"`
	Breakdown      *types.PricingBreakdown `json:"breakdown,omitempty"`
}

func NewDraftResponse(s *draft.State, breakdown *types.PricingBreakdown) *DraftResponse {
	return &DraftResponse{
		ID:             s.ID,
		OrderID:        s.OrderID,
		BillingContext: s.Context,
		Status:         s.Status,
		Editable:       s.Editable,
		Items:          NewLineItemResponses(s.Items),
		PendingDeletes: s.Tombstones.IDs(),
		Breakdown:      breakdown,
	}
}

// FailedDelete reports one tombstoned item the deletion phase could not remove
type FailedDelete struct {
	ItemID int64  `json:"item_id"`
	Error  string `json:"error"`
}

// CommitResponse is the reconciled outcome of a commit: the server canonical
// items, totals recomputed from them, and any per item delete failures the
// operator may retry.
type CommitResponse struct {
	Receipt        string                 `json:"receipt"`
	Items          []LineItemResponse     `json:"items"`
	Breakdown      types.PricingBreakdown `json:"breakdown"`
	FailedDeletes  []FailedDelete         `json:"failed_deletes,omitempty"`
	DeletedItemIDs []int64                `json:"deleted_item_ids,omitempty"`
}
