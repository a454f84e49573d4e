package cart

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

type fakeCatalog struct {
	products map[uint]product.Product
	err      error
}

func (f *fakeCatalog) FindByID(_ context.Context, id uint) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	return &p, nil
}

func (f *fakeCatalog) FindMany(_ context.Context, ids []uint) ([]product.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type failingStore struct {
	*MemorySessionStore
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("redis: connection refused")
	}
	return f.MemorySessionStore.Set(ctx, key, value)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[uint]product.Product{
		1: {ID: 1, Name: "Desk Lamp", Price: price("100.00"), Stock: 5, IsAvailable: true},
		2: {ID: 2, Name: "Notebook", Price: price("60.00"), SalePrice: price("50.00"), IsOnSale: true, Stock: 10, IsAvailable: true},
		3: {ID: 3, Name: "Pen", Price: price("5.00"), Stock: 100, IsAvailable: true},
	}}
}

func loadCart(t *testing.T, store SessionStore, catalog Catalog) *Cart {
	t.Helper()
	c, err := Load(context.Background(), store, catalog, "sess-1")
	require.NoError(t, err)
	return c
}

func TestLoad_EmptySession(t *testing.T) {
	c := loadCart(t, NewMemorySessionStore(), newCatalog())

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.TotalQuantity())
	assert.Nil(t, c.Voucher())
}

func TestLoad_RequiresSessionID(t *testing.T) {
	_, err := Load(context.Background(), NewMemorySessionStore(), newCatalog(), "")

	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestLoad_CorruptValueYieldsEmptyCart(t *testing.T) {
	store := NewMemorySessionStore()
	require.NoError(t, store.Set(context.Background(), SessionKey("sess-1"), []byte("{not json")))

	c := loadCart(t, store, newCatalog())
	assert.True(t, c.IsEmpty())
}

func TestAdd_AccumulatesAndOverrides(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp := catalog.products[1]

	require.NoError(t, c.Add(ctx, &lamp, 2, false))
	require.NoError(t, c.Add(ctx, &lamp, 3, false))
	assert.Equal(t, 5, c.Quantity(1))

	require.NoError(t, c.Add(ctx, &lamp, 1, true))
	assert.Equal(t, 1, c.Quantity(1))
	assert.Equal(t, 1, c.Len())
}

func TestAdd_SnapshotsEffectivePrice(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	notebook := catalog.products[2]

	require.NoError(t, c.Add(ctx, &notebook, 1, false))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(price("50.00")))
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp := catalog.products[1]

	err := c.Add(context.Background(), &lamp, 0, false)

	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))
	assert.True(t, c.IsEmpty())
}

func TestMutations_PersistAcrossLoads(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	catalog := newCatalog()
	lamp, pen := catalog.products[1], catalog.products[3]

	c := loadCart(t, store, catalog)
	require.NoError(t, c.Add(ctx, &lamp, 2, false))
	require.NoError(t, c.Add(ctx, &pen, 4, false))
	require.NoError(t, c.ApplyVoucher(ctx, VoucherApplication{Code: "SAVE10", DiscountAmount: price("21.00")}))

	reloaded := loadCart(t, store, catalog)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, 6, reloaded.TotalQuantity())
	require.NotNil(t, reloaded.Voucher())
	assert.Equal(t, "SAVE10", reloaded.Voucher().Code)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp := catalog.products[1]
	require.NoError(t, c.Add(ctx, &lamp, 2, false))

	t.Run("absent product is a no-op", func(t *testing.T) {
		found, err := c.Update(ctx, 42, 3)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("sets quantity", func(t *testing.T) {
		found, err := c.Update(ctx, 1, 4)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 4, c.Quantity(1))
	})

	t.Run("zero removes line", func(t *testing.T) {
		found, err := c.Update(ctx, 1, 0)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, c.IsEmpty())
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp := catalog.products[1]
	require.NoError(t, c.Add(ctx, &lamp, 1, false))

	removed, err := c.Remove(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Remove(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClear_DropsVoucher(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp := catalog.products[1]
	require.NoError(t, c.Add(ctx, &lamp, 1, false))
	require.NoError(t, c.ApplyVoucher(ctx, VoucherApplication{Code: "SAVE10", DiscountAmount: price("10")}))

	require.NoError(t, c.Clear(ctx))

	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Voucher())
}

func TestRemovingLastLine_DropsVoucher(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	catalog := newCatalog()
	lamp, notebook, pen := catalog.products[1], catalog.products[2], catalog.products[3]

	c := loadCart(t, store, catalog)
	require.NoError(t, c.Add(ctx, &lamp, 2, false))
	require.NoError(t, c.Add(ctx, &notebook, 1, false))
	require.NoError(t, c.ApplyVoucher(ctx, VoucherApplication{Code: "SAVE10", DiscountAmount: price("25.00")}))

	_, err := c.Remove(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, c.Voucher(), "voucher stays while lines remain")

	_, err = c.Update(ctx, 2, 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Voucher())
	assert.Nil(t, loadCart(t, store, catalog).Voucher())

	require.NoError(t, c.Add(ctx, &pen, 4, false))
	totals, err := c.Summary(ctx, price("30.00"))
	require.NoError(t, err)
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.Total.Equal(price("50.00")), "total %s", totals.Total)
}

func TestMutationSequence_TotalQuantityMatchesLines(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 500; step++ {
		id := uint(rng.Intn(4) + 1)
		switch rng.Intn(4) {
		case 0, 1:
			if p, ok := catalog.products[id]; ok {
				require.NoError(t, c.Add(ctx, &p, rng.Intn(5)+1, rng.Intn(3) == 0))
			}
		case 2:
			_, err := c.Update(ctx, id, rng.Intn(6))
			require.NoError(t, err)
		case 3:
			_, err := c.Remove(ctx, id)
			require.NoError(t, err)
		}

		sum := 0
		for _, line := range c.Lines() {
			require.Positive(t, line.Quantity, "step %d", step)
			sum += line.Quantity
		}
		require.Equal(t, sum, c.TotalQuantity(), "step %d", step)
		require.Equal(t, len(c.Lines()), c.Len(), "step %d", step)
		require.Equal(t, c.Len() == 0, c.IsEmpty(), "step %d", step)
	}
}

func TestFailedWrite_KeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	store := &failingStore{MemorySessionStore: NewMemorySessionStore()}
	c := loadCart(t, store, catalog)
	lamp := catalog.products[1]
	require.NoError(t, c.Add(ctx, &lamp, 1, false))

	store.failSet = true
	err := c.Add(ctx, &lamp, 5, false)

	var persistErr *apperror.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, 1, c.Quantity(1))
}

func TestProducts_DropsStaleLines(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp, pen := catalog.products[1], catalog.products[3]
	require.NoError(t, c.Add(ctx, &lamp, 1, false))
	require.NoError(t, c.Add(ctx, &pen, 2, false))

	delete(catalog.products, 1)

	items, err := c.Products(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(3), items[0].Product.ID)
	assert.Equal(t, 2, c.Len(), "stale line stays in the stored cart")
}

func TestProducts_CatalogError(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp := catalog.products[1]
	require.NoError(t, c.Add(ctx, &lamp, 1, false))

	catalog.err = errors.New("db down")
	_, err := c.Products(ctx)
	assert.Error(t, err)
}

func TestSubtotal_UsesCurrentPrice(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	c := loadCart(t, NewMemorySessionStore(), catalog)
	lamp, notebook := catalog.products[1], catalog.products[2]
	require.NoError(t, c.Add(ctx, &lamp, 2, false))
	require.NoError(t, c.Add(ctx, &notebook, 1, false))

	subtotal, err := c.Subtotal(ctx)
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(price("250.00")), "got %s", subtotal)

	lamp.Price = price("120.00")
	catalog.products[1] = lamp

	subtotal, err = c.Subtotal(ctx)
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(price("290.00")), "got %s", subtotal)

	total, err := c.Total(ctx, price("30.00"))
	require.NoError(t, err)
	assert.True(t, total.Equal(price("320.00")))
}
