package medicine

import (
	"time"

	"github.com/google/uuid"
)

// Medicine maps to the medicine table. StockQty is only ever changed
// through stock adjustments so it cannot silently drift.
type Medicine struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Code         string     `db:"code" json:"code"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Unit         string     `db:"unit" json:"unit"`
	UnitPrice    float64    `db:"unit_price" json:"unit_price"`
	StockQty     int        `db:"stock_qty" json:"stock_qty"`
	Manufacturer *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Update carries a partial update: only non-nil fields are applied.
// Stock is adjusted separately.
type Update struct {
	Name         *string    `json:"name"`
	Code         *string    `json:"code"`
	Description  *string    `json:"description"`
	Unit         *string    `json:"unit"`
	UnitPrice    *float64   `json:"unit_price"`
	Manufacturer *string    `json:"manufacturer"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Active       *bool      `json:"active"`
}

// Filter narrows medicine listings.
type Filter struct {
	Search string // substring match on name or code
	Active *bool
}
