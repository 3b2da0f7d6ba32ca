package service

import (
	"testing"

	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedItem(qty int, price float64) *order.LineItem {
	item := &order.LineItem{
		CatalogEntryID: 1,
		Quantity:       qty,
		UnitPrice:      decimal.NewFromFloat(price),
	}
	item.RecomputeTotal()
	return item
}

func TestPricingPrescriptionTotalEqualsSubtotal(t *testing.T) {
	svc := NewPricingService()
	items := []*order.LineItem{
		pricedItem(2, 10.00),
		pricedItem(1, 5.50),
	}

	breakdown := svc.Compute(items, types.PricingParams{
		Context: types.BillingContextPrescription,
		TaxRate: decimal.NewFromFloat(0.10),
	})

	assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromFloat(25.50)))
	assert.True(t, breakdown.Tax.IsZero())
	assert.True(t, breakdown.Total.Equal(decimal.NewFromFloat(25.50)))
	assert.Nil(t, breakdown.Change)
}

func TestPricingPointOfSaleChangeCalculation(t *testing.T) {
	svc := NewPricingService()
	items := []*order.LineItem{pricedItem(10, 10.00)} // subtotal 100.00
	received := decimal.NewFromFloat(110.00)

	breakdown := svc.Compute(items, types.PricingParams{
		Context:  types.BillingContextPointOfSale,
		TaxRate:  decimal.NewFromFloat(0.10),
		Discount: decimal.NewFromFloat(5.00),
		Received: &received,
	})

	assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, breakdown.Tax.Equal(decimal.NewFromFloat(10.00)))
	assert.True(t, breakdown.Total.Equal(decimal.NewFromFloat(105.00)))
	require.NotNil(t, breakdown.Change)
	assert.True(t, breakdown.Change.Equal(decimal.NewFromFloat(5.00)))
}

func TestPricingNegativeChangeIsNotClamped(t *testing.T) {
	svc := NewPricingService()
	items := []*order.LineItem{pricedItem(10, 10.00)}
	received := decimal.NewFromFloat(50.00)

	breakdown := svc.Compute(items, types.PricingParams{
		Context:  types.BillingContextPointOfSale,
		TaxRate:  decimal.NewFromFloat(0.10),
		Discount: decimal.NewFromFloat(5.00),
		Received: &received,
	})

	require.NotNil(t, breakdown.Change)
	assert.True(t, breakdown.Change.Equal(decimal.NewFromFloat(-55.00)))
}

func TestPricingUnselectedRowsContributeZero(t *testing.T) {
	svc := NewPricingService()
	blank := &order.LineItem{CatalogEntryID: order.UnselectedCatalogEntryID, Quantity: 1}
	blank.RecomputeTotal()
	items := []*order.LineItem{blank, pricedItem(2, 10.00)}

	breakdown := svc.Compute(items, types.PricingParams{Context: types.BillingContextPrescription})

	assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromFloat(20.00)))
}

func TestPricingIsIdempotent(t *testing.T) {
	svc := NewPricingService()
	items := []*order.LineItem{
		pricedItem(3, 3.33),
		pricedItem(7, 0.99),
	}
	received := decimal.NewFromFloat(40.00)
	params := types.PricingParams{
		Context:  types.BillingContextPointOfSale,
		TaxRate:  decimal.NewFromFloat(0.10),
		Discount: decimal.NewFromFloat(1.25),
		Received: &received,
	}

	first := svc.Compute(items, params)
	second := svc.Compute(items, params)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
	require.NotNil(t, first.Change)
	require.NotNil(t, second.Change)
	assert.True(t, first.Change.Equal(*second.Change))
}
