// internal/domain/cart/cart.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// Catalog resolves product ids against the live catalog
type Catalog interface {
	FindByID(ctx context.Context, id uint) (*product.Product, error)
	FindMany(ctx context.Context, ids []uint) ([]product.Product, error)
}

// SessionStore is the per-session key/value store the cart lives in.
// Get reports ok=false when the key is absent.
type SessionStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cart is one session's shopping cart. Every mutation is written through to
// the session store; when the write fails the cart keeps its previous state.
type Cart struct {
	sessionID string
	store     SessionStore
	catalog   Catalog
	state     State
	now       func() time.Time
}

// SessionKey is the session store key holding a session's cart
func SessionKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// Load reads the cart for sessionID. A missing or undecodable value yields
// an empty cart.
func Load(ctx context.Context, store SessionStore, catalog Catalog, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, apperror.Validation("session_id", "session ID required for cart")
	}

	c := &Cart{
		sessionID: sessionID,
		store:     store,
		catalog:   catalog,
		now:       func() time.Time { return time.Now().UTC() },
	}

	raw, ok, err := store.Get(ctx, SessionKey(sessionID))
	if err != nil {
		return nil, apperror.Persistence("load cart", err)
	}

	c.state = newState(c.now())
	if ok {
		var state State
		if err := json.Unmarshal(raw, &state); err == nil {
			if state.Lines == nil {
				state.Lines = make(map[uint]Line)
			}
			c.state = state
		}
	}

	return c, nil
}

// SessionID returns the owning session
func (c *Cart) SessionID() string {
	return c.sessionID
}

// Add puts quantity units of p in the cart at its current effective price.
// With override the existing quantity is replaced instead of increased.
func (c *Cart) Add(ctx context.Context, p *product.Product, quantity int, override bool) error {
	if quantity <= 0 {
		return apperror.Validation("quantity", "must be a positive integer")
	}

	return c.mutate(ctx, func(s *State) {
		line, exists := s.Lines[p.ID]
		if !exists {
			line = Line{ProductID: p.ID, AddedAt: c.now()}
		}
		if override || !exists {
			line.Quantity = quantity
		} else {
			line.Quantity += quantity
		}
		line.UnitPrice = p.EffectivePrice()
		s.Lines[p.ID] = line
	})
}

// Update sets the quantity of a line; zero removes it. It reports whether
// the product was in the cart.
func (c *Cart) Update(ctx context.Context, productID uint, quantity int) (bool, error) {
	if quantity < 0 {
		return false, apperror.Validation("quantity", "cannot be negative")
	}
	if _, exists := c.state.Lines[productID]; !exists {
		return false, nil
	}

	err := c.mutate(ctx, func(s *State) {
		if quantity == 0 {
			delete(s.Lines, productID)
			return
		}
		line := s.Lines[productID]
		line.Quantity = quantity
		s.Lines[productID] = line
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a line and reports whether anything was removed. Removing
// the last line also drops the applied voucher.
func (c *Cart) Remove(ctx context.Context, productID uint) (bool, error) {
	return c.Update(ctx, productID, 0)
}

// Clear empties the cart and drops any applied voucher
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, func(s *State) {
		s.Lines = make(map[uint]Line)
		s.Voucher = nil
	})
}

// ApplyVoucher records an evaluated voucher against the cart. An empty
// cart holds no voucher, so applying one to it is a no-op.
func (c *Cart) ApplyVoucher(ctx context.Context, v VoucherApplication) error {
	if v.AppliedAt.IsZero() {
		v.AppliedAt = c.now()
	}
	return c.mutate(ctx, func(s *State) {
		s.Voucher = &v
	})
}

// RemoveVoucher clears both the code and the stored discount
func (c *Cart) RemoveVoucher(ctx context.Context) error {
	if c.state.Voucher == nil {
		return nil
	}
	return c.mutate(ctx, func(s *State) {
		s.Voucher = nil
	})
}

// Voucher returns a copy of the applied voucher, or nil
func (c *Cart) Voucher() *VoucherApplication {
	if c.state.Voucher == nil {
		return nil
	}
	v := *c.state.Voucher
	return &v
}

// Lines returns the raw lines ordered by product id
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.state.Lines))
	for _, id := range c.productIDs() {
		lines = append(lines, c.state.Lines[id])
	}
	return lines
}

// Quantity returns the quantity held for productID, zero when absent
func (c *Cart) Quantity(productID uint) int {
	return c.state.Lines[productID].Quantity
}

// TotalQuantity is the sum of all line quantities
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.state.Lines {
		total += line.Quantity
	}
	return total
}

// Len is the number of distinct products
func (c *Cart) Len() int {
	return len(c.state.Lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.state.Lines) == 0
}

// Products re-resolves every line against the catalog. Lines whose product
// no longer exists are left out of the result; this is not an error.
func (c *Cart) Products(ctx context.Context) ([]Item, error) {
	ids := c.productIDs()
	if len(ids) == 0 {
		return []Item{}, nil
	}

	products, err := c.catalog.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}

	return Resolve(c.Lines(), products), nil
}

// Subtotal prices every resolved line at the current catalog price
func (c *Cart) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	items, err := c.Products(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Subtotal(items), nil
}

// Total is the subtotal plus shippingCost
func (c *Cart) Total(ctx context.Context, shippingCost decimal.Decimal) (decimal.Decimal, error) {
	subtotal, err := c.Subtotal(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Add(shippingCost), nil
}

// Summary prices the cart with a shipping quote and the applied voucher
func (c *Cart) Summary(ctx context.Context, shippingCost decimal.Decimal) (Totals, error) {
	items, err := c.Products(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Summarize(items, shippingCost, c.state.Voucher), nil
}

func (c *Cart) productIDs() []uint {
	ids := make([]uint, 0, len(c.state.Lines))
	for id := range c.state.Lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Cart) mutate(ctx context.Context, fn func(s *State)) error {
	next := c.state.clone()
	fn(&next)
	if len(next.Lines) == 0 {
		next.Voucher = nil
	}
	next.UpdatedAt = c.now()

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := c.store.Set(ctx, SessionKey(c.sessionID), data); err != nil {
		return apperror.Persistence("save cart", err)
	}

	c.state = next
	return nil
}
