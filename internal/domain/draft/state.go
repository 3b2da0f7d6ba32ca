package draft

import (
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/order"
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FreeTextField names the annotation fields a row carries besides pricing
type FreeTextField string

const (
	FieldDosage       FreeTextField = "dosage"
	FieldFrequency    FreeTextField = "frequency"
	FieldInstructions FreeTextField = "instructions"
)

func (f FreeTextField) Validate() error {
	allowed := []FreeTextField{FieldDosage, FieldFrequency, FieldInstructions}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid free text field").
			WithHint("Please provide a valid line item field").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// State is the mutable draft of one order or bill being edited: the ordered
// active sequence of line items (insertion order is display order) plus the
// tombstone set of persisted ids marked for removal. It is exclusively owned
// by a single editing session; mutations apply in the order the operator
// issues them.
//
// Invariants preserved by every mutation:
//   - each item's total equals round(quantity*unitPrice - lineDiscount, 2)
//   - a tombstoned id never appears in the active sequence
type State struct {
	ID         string
	OrderID    string
	Context    types.BillingContext
	Status     types.DraftStatus
	Editable   bool
	Items      []*order.LineItem
	Tombstones *TombstoneSet
}

// NewState opens a draft, optionally pre seeded from the persisted item list
func NewState(orderID string, billingContext types.BillingContext, editable bool, seed []*order.LineItem) *State {
	s := &State{
		ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixDraft),
		OrderID:    orderID,
		Context:    billingContext,
		Status:     types.DraftStatusEmpty,
		Editable:   editable,
		Items:      make([]*order.LineItem, 0, len(seed)),
		Tombstones: NewTombstoneSet(),
	}
	for _, item := range seed {
		copied := item.Copy()
		copied.RecomputeTotal()
		s.Items = append(s.Items, copied)
	}
	if len(s.Items) > 0 {
		s.Status = types.DraftStatusEditing
	}
	return s
}

// AddBlankItem appends an unselected placeholder row. Always permitted.
func (s *State) AddBlankItem() *order.LineItem {
	item := &order.LineItem{
		CatalogEntryID: order.UnselectedCatalogEntryID,
		OrderID:        s.OrderID,
		Quantity:       1,
		UnitPrice:      decimal.Zero,
		TotalPrice:     decimal.Zero,
	}
	s.Items = append(s.Items, item)
	s.markEditing()
	return item
}

// SelectCatalogEntry binds a row to a catalog entry, copying its price and
// display fields as defaults and resetting the derived total.
func (s *State) SelectCatalogEntry(index int, entry *catalog.Entry) error {
	item, err := s.itemAt(index)
	if err != nil {
		return err
	}
	if entry == nil || entry.ID == order.UnselectedCatalogEntryID {
		return ierr.NewError("invalid catalog entry").
			WithHint("The selected medicine could not be applied").
			Mark(ierr.ErrValidation)
	}

	item.CatalogEntryID = entry.ID
	item.Name = entry.Name
	item.Strength = entry.Strength
	item.Form = entry.Form
	item.UnitPrice = entry.UnitPrice
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.RecomputeTotal()
	s.markEditing()
	return nil
}

// ClearSelection reverts a row to the unselected sentinel state
func (s *State) ClearSelection(index int) error {
	item, err := s.itemAt(index)
	if err != nil {
		return err
	}

	item.CatalogEntryID = order.UnselectedCatalogEntryID
	item.Name = ""
	item.Strength = ""
	item.Form = ""
	item.UnitPrice = decimal.Zero
	item.LineDiscount = decimal.Zero
	item.RecomputeTotal()
	s.markEditing()
	return nil
}

// SetQuantity updates a row's quantity. Non positive quantities are rejected
// and the original value retained.
func (s *State) SetQuantity(index int, quantity int) error {
	item, err := s.itemAt(index)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return ierr.NewError("quantity must be positive").
			WithHintf("Quantity %d was rejected; the previous value is kept", quantity).
			Mark(ierr.ErrValidation)
	}

	item.Quantity = quantity
	item.RecomputeTotal()
	s.markEditing()
	return nil
}

// SetUnitPrice overrides a row's unit price away from the catalog default.
// Non positive prices are rejected and the original value retained.
func (s *State) SetUnitPrice(index int, price decimal.Decimal) error {
	item, err := s.itemAt(index)
	if err != nil {
		return err
	}
	if !price.IsPositive() {
		return ierr.NewError("unit price must be positive").
			WithHintf("Price %s was rejected; the previous value is kept", price).
			Mark(ierr.ErrValidation)
	}

	item.UnitPrice = price
	item.RecomputeTotal()
	s.markEditing()
	return nil
}

// SetFreeText updates dosage, frequency or instructions without touching
// pricing.
func (s *State) SetFreeText(index int, field FreeTextField, value string) error {
	item, err := s.itemAt(index)
	if err != nil {
		return err
	}
	if err := field.Validate(); err != nil {
		return err
	}

	switch field {
	case FieldDosage:
		item.Dosage = value
	case FieldFrequency:
		item.Frequency = value
	case FieldInstructions:
		item.Instructions = value
	}
	s.markEditing()
	return nil
}

// RemoveItem drops a row from the active sequence. A persisted row is
// additionally tombstoned so the next commit deletes it; both effects happen
// atomically from the caller's perspective. This is the only way tombstones
// are produced.
func (s *State) RemoveItem(index int) error {
	item, err := s.itemAt(index)
	if err != nil {
		return err
	}

	if item.IsPersisted() {
		s.Tombstones.Add(item.ID)
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	s.markEditing()
	return nil
}

// ValidItems returns the rows eligible for commit: those bound to a catalog
// entry. Unselected placeholder rows are silently excluded.
func (s *State) ValidItems() []*order.LineItem {
	return lo.Filter(s.Items, func(item *order.LineItem, _ int) bool {
		return item.IsSelected()
	})
}

// Replace swaps the active sequence for the server canonical items after a
// successful commit.
func (s *State) Replace(items []*order.LineItem) {
	s.Items = make([]*order.LineItem, 0, len(items))
	for _, item := range items {
		s.Items = append(s.Items, item.Copy())
	}
}

// BeginSave transitions Editing → Saving, refusing to run when editing is
// disallowed or another commit is already in flight.
func (s *State) BeginSave() error {
	if !s.Editable {
		return ierr.NewError("order is not editable").
			WithHint("This order has been finalized and can no longer be changed").
			Mark(ierr.ErrInvalidOperation)
	}
	if s.Status == types.DraftStatusSaving {
		return ierr.NewError("a save is already in progress").
			WithHint("Wait for the current save to finish before retrying").
			Mark(ierr.ErrInvalidOperation)
	}
	s.Status = types.DraftStatusSaving
	return nil
}

// EndSave returns to Editing whatever the commit outcome was; there is no
// terminal saved state owned by this engine.
func (s *State) EndSave() {
	s.Status = types.DraftStatusEditing
}

func (s *State) markEditing() {
	if s.Status == types.DraftStatusEmpty {
		s.Status = types.DraftStatusEditing
	}
}

func (s *State) itemAt(index int) (*order.LineItem, error) {
	if index < 0 || index >= len(s.Items) {
		return nil, ierr.NewError("line item index out of range").
			WithHintf("No line item at position %d", index).
			Mark(ierr.ErrNotFound)
	}
	return s.Items[index], nil
}
