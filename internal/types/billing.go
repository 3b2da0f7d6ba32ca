package types

import (
	ierr "github.com/rxcart/rxcart/internal/errors"
	"github.com/samber/lo"
)

// BillingContext determines which pricing and validation policy applies to a
// draft: prescription drafts are priced without tax (the billing system
// downstream applies it) and require dosage/frequency per item, while
// point-of-sale drafts are taxed at the configured rate and skip the
// prescription-only fields.
type BillingContext string

const (
	BillingContextPrescription BillingContext = "prescription"
	BillingContextPointOfSale  BillingContext = "point_of_sale"
)

func (b BillingContext) String() string {
	return string(b)
}

func (b BillingContext) Validate() error {
	allowed := []BillingContext{
		BillingContextPrescription,
		BillingContextPointOfSale,
	}
	if !lo.Contains(allowed, b) {
		return ierr.NewError("invalid billing context").
			WithHint("Please provide a valid billing context").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RequiresDosage reports whether per-item dosage and frequency are mandatory
// at commit time.
func (b BillingContext) RequiresDosage() bool {
	return b == BillingContextPrescription
}

// DraftStatus is the lifecycle state of an in-progress draft.
// Empty → Editing on the first mutation, Editing → Saving while a commit is
// in flight, and back to Editing regardless of the commit outcome. There is
// no terminal saved state here; finality is an external status transition.
type DraftStatus string

const (
	DraftStatusEmpty   DraftStatus = "empty"
	DraftStatusEditing DraftStatus = "editing"
	DraftStatusSaving  DraftStatus = "saving"
)

func (s DraftStatus) String() string {
	return string(s)
}
