package types

import (
	"github.com/shopspring/decimal"
)

// PricingParams selects the total policy applied on top of the subtotal.
// Prescription drafts take total == subtotal (tax is a downstream concern);
// point of sale drafts apply the configured tax rate, an optional bill level
// discount, and optionally the cash received for change calculation.
type PricingParams struct {
	Context  BillingContext
	TaxRate  decimal.Decimal
	Discount decimal.Decimal
	Received *decimal.Decimal
}

// PricingBreakdown is the running totals view recomputed after every draft
// mutation. Change may be negative, signaling insufficient payment; that is a
// validation concern for the caller, not a data error, so it is never clamped.
type PricingBreakdown struct {
	DraftID  string           `json:"draft_id"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Discount decimal.Decimal  `json:"discount"`
	Tax      decimal.Decimal  `json:"tax"`
	Total    decimal.Decimal  `json:"total"`
	Received *decimal.Decimal `json:"received,omitempty"`
	Change   *decimal.Decimal `json:"change,omitempty"`
}
