// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Line is one product's entry in a session cart. UnitPrice is the effective
// price captured when the line was last added.
type Line struct {
	ProductID uint            `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// VoucherApplication is the voucher state kept next to the cart. The
// discount is computed once, when the code is applied.
type VoucherApplication struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	WaivesShipping bool            `json:"waives_shipping"`
	AppliedAt      time.Time       `json:"applied_at"`
}

// State is what gets persisted in the session store
type State struct {
	Lines     map[uint]Line       `json:"lines"`
	Voucher   *VoucherApplication `json:"voucher,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Item is a cart line joined with the current catalog product
type Item struct {
	Product       product.Product `json:"product"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	SnapshotPrice decimal.Decimal `json:"snapshot_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount      int             `json:"item_count"`     // Number of unique items
	TotalQuantity  int             `json:"total_quantity"` // Sum of all quantities
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

func newState(now time.Time) State {
	return State{
		Lines:     make(map[uint]Line),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s State) clone() State {
	next := State{
		Lines:     make(map[uint]Line, len(s.Lines)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for id, line := range s.Lines {
		next.Lines[id] = line
	}
	if s.Voucher != nil {
		v := *s.Voucher
		next.Voucher = &v
	}
	return next
}
