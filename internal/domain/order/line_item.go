package order

import (
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/shopspring/decimal"
)

// UnselectedCatalogEntryID is the sentinel meaning a draft row has not been
// bound to a catalog entry yet. Such rows are valid drafts but are never
// eligible for commit.
const UnselectedCatalogEntryID int64 = 0

// LineItem is one row of an order or bill. ID is zero until the backend has
// persisted the row; Dispensed is server owned and read only here.
type LineItem struct {
	ID             int64           `json:"id,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
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

// LineItemInput is the upsert payload shape: the server owned fields (id,
// dispensed, recomputed total) are omitted.
type LineItemInput struct {
	ID             int64           `json:"id,omitempty"`
	CatalogEntryID int64           `json:"catalog_entry_id"`
	Name           string          `json:"name"`
	Strength       string          `json:"strength"`
	Form           string          `json:"form"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineDiscount   decimal.Decimal `json:"line_discount"`
	Dosage         string          `json:"dosage"`
	Frequency      string          `json:"frequency"`
	Instructions   string          `json:"instructions"`
}

// IsPersisted reports whether the backend has assigned this row an id
func (li *LineItem) IsPersisted() bool {
	return li.ID != 0
}

// IsSelected reports whether the row is bound to a catalog entry
func (li *LineItem) IsSelected() bool {
	return li.CatalogEntryID != UnselectedCatalogEntryID
}

// RecomputeTotal re-derives the line total from quantity, unit price and the
// per line discount. It must be called after every mutation that touches any
// of the three so the invariant
// total == round(quantity*unitPrice - lineDiscount, 2) holds.
func (li *LineItem) RecomputeTotal() {
	qty := decimal.NewFromInt(int64(li.Quantity))
	li.TotalPrice = qty.Mul(li.UnitPrice).Sub(li.LineDiscount).Round(2)
}

// Validate checks commit eligibility for a selected row. The prescription
// context additionally requires dosage and frequency; the point of sale path
// does not.
func (li *LineItem) Validate(billingContext types.BillingContext) error {
	if !li.IsSelected() {
		return ierr.NewError("line item is not bound to a catalog entry").
			WithHint("Select a medicine for every row before saving").
			Mark(ierr.ErrValidation)
	}
	if li.Quantity < 1 {
		return ierr.NewError("line item quantity must be at least 1").
			WithHintf("Item %q has quantity %d", li.Name, li.Quantity).
			Mark(ierr.ErrValidation)
	}
	if billingContext.RequiresDosage() {
		if li.Dosage == "" {
			return ierr.NewError("line item dosage is required").
				WithHintf("Item %q is missing a dosage", li.Name).
				Mark(ierr.ErrValidation)
		}
		if li.Frequency == "" {
			return ierr.NewError("line item frequency is required").
				WithHintf("Item %q is missing a frequency", li.Name).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ToInput strips the server owned fields for the upsert payload
func (li *LineItem) ToInput() LineItemInput {
	return LineItemInput{
		ID:             li.ID,
		CatalogEntryID: li.CatalogEntryID,
		Name:           li.Name,
		Strength:       li.Strength,
		Form:           li.Form,
		Quantity:       li.Quantity,
		UnitPrice:      li.UnitPrice,
		LineDiscount:   li.LineDiscount,
		Dosage:         li.Dosage,
		Frequency:      li.Frequency,
		Instructions:   li.Instructions,
	}
}

// Copy returns a deep copy of the line item
func (li *LineItem) Copy() *LineItem {
	if li == nil {
		return nil
	}
	out := *li
	return &out
}
