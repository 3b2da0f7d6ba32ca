package service

import (
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/shopspring/decimal"
)

// PricingService computes running totals for a draft. It is a pure
// calculation with no I/O; calling it twice on identical input yields an
// identical breakdown to two decimal rounding.
type PricingService interface {
	Compute(items []*order.LineItem, params types.PricingParams) types.PricingBreakdown
}

type pricingService struct{}

func NewPricingService() PricingService {
	return &pricingService{}
}

// Compute sums active line totals into a subtotal and applies the context
// policy. Unselected placeholder rows contribute zero by construction, so
// they are summed like any other row.
func (s *pricingService) Compute(items []*order.LineItem, params types.PricingParams) types.PricingBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	subtotal = subtotal.Round(2)

	breakdown := types.PricingBreakdown{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    subtotal,
	}

	if params.Context != types.BillingContextPointOfSale {
		// Prescription drafts carry no tax at this layer; the billing system
		// downstream applies it
		return breakdown
	}

	breakdown.Discount = params.Discount.Round(2)
	breakdown.Tax = subtotal.Mul(params.TaxRate).Round(2)
	breakdown.Total = subtotal.Sub(breakdown.Discount).Add(breakdown.Tax).Round(2)

	if params.Received != nil {
		received := params.Received.Round(2)
		change := received.Sub(breakdown.Total).Round(2)
		breakdown.Received = &received
		// Negative change means insufficient payment; surfaced, never clamped
		breakdown.Change = &change
	}

	return breakdown
}
