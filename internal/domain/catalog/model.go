package catalog

import (
	"github.com/shopspring/decimal"
)

// Entry is an immutable snapshot of an inventory record owned by the backend
// catalog service. It is fetched through search and never mutated locally;
// selecting one onto a draft row copies its display fields and unit price as
// defaults.
type Entry struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Strength          string          `json:"strength"`
	Form              string          `json:"form"`
	Manufacturer      string          `json:"manufacturer"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	AvailableQuantity int             `json:"available_quantity"`
}
