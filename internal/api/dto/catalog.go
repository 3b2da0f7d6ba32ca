package dto

import (
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/validator"
	"github.com/shopspring/decimal"
)

// CatalogEntryRequest is the snapshot of a catalog entry the caller selected
// from search results. The engine copies it onto the draft row as defaults.
type CatalogEntryRequest struct {
	ID                int64           `json:"id" validate:"required,gt=0"`
	Name              string          `json:"name" validate:"required"`
	Strength          string          `json:"strength"`
	Form              string          `json:"form"`
	Manufacturer      string          `json:"manufacturer"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	AvailableQuantity int             `json:"available_quantity"`
}

func (r *CatalogEntryRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CatalogEntryRequest) ToEntry() *catalog.Entry {
	return &catalog.Entry{
		ID:                r.ID,
		Name:              r.Name,
		Strength:          r.Strength,
		Form:              r.Form,
		Manufacturer:      r.Manufacturer,
		UnitPrice:         r.UnitPrice,
		AvailableQuantity: r.AvailableQuantity,
	}
}

// CatalogEntryResponse mirrors a catalog entry for search results
type CatalogEntryResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Strength          string          `json:"strength"`
	Form              string          `json:"form"`
	Manufacturer      string          `json:"manufacturer"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	AvailableQuantity int             `json:"available_quantity"`
}

func NewCatalogEntryResponse(e *catalog.Entry) CatalogEntryResponse {
	return CatalogEntryResponse{
		ID:                e.ID,
		Name:              e.Name,
		Strength:          e.Strength,
		Form:              e.Form,
		Manufacturer:      e.Manufacturer,
		UnitPrice:         e.UnitPrice,
		AvailableQuantity: e.AvailableQuantity,
	}
}

// SearchResponse carries the outcome of one dispatched catalog search. The
// generation identifies which keystroke produced it so callers can discard
// superseded results.
type SearchResponse struct {
	Query      string                 `json:"query"`
	Generation uint64                 `json:"generation"`
	Entries    []CatalogEntryResponse `json:"entries"`
	Warning    string                 `json:"warning,omitempty"`
}
