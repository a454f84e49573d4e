// internal/domain/checkout/memory_store.go
package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// MemoryStore is an in-process catalog and checkout store. Transactions
// are serialized and staged on a copy that is published only on success.
type MemoryStore struct {
	mu          sync.Mutex
	products    map[uint]product.Product
	orders      []order.Order
	nextOrderID uint
	nextItemID  uint
}

// NewMemoryStore creates a store holding the given products
func NewMemoryStore(products ...product.Product) *MemoryStore {
	m := &MemoryStore{products: make(map[uint]product.Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// FindByID satisfies cart.Catalog
func (m *MemoryStore) FindByID(_ context.Context, id uint) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	return &p, nil
}

// FindMany satisfies cart.Catalog
func (m *MemoryStore) FindMany(_ context.Context, ids []uint) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pick(m.products, ids), nil
}

// Product returns the current state of a product
func (m *MemoryStore) Product(id uint) (product.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}

// PutProduct adds or replaces a product
func (m *MemoryStore) PutProduct(p product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// DeleteProduct removes a product from the catalog
func (m *MemoryStore) DeleteProduct(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

// Orders returns every committed order
func (m *MemoryStore) Orders() []order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]order.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

// OrderByNumber finds a committed order
func (m *MemoryStore) OrderByNumber(number string) (order.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return o, true
		}
	}
	return order.Order{}, false
}

// GetOrderByNumber is OrderByNumber with the order service's error contract
func (m *MemoryStore) GetOrderByNumber(_ context.Context, number string) (*order.Order, error) {
	o, ok := m.OrderByNumber(number)
	if !ok {
		return nil, apperror.NotFound("order", number)
	}
	return &o, nil
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		parent:   m,
		products: make(map[uint]product.Product, len(m.products)),
	}
	for id, p := range m.products {
		tx.products[id] = p
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.products = tx.products
	m.orders = append(m.orders, tx.orders...)
	return nil
}

type memoryTx struct {
	parent   *MemoryStore
	products map[uint]product.Product
	orders   []order.Order
}

func (t *memoryTx) FindProducts(_ context.Context, ids []uint) ([]product.Product, error) {
	return pick(t.products, ids), nil
}

func (t *memoryTx) OrderNumberExists(_ context.Context, number string) (bool, error) {
	for _, o := range t.parent.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	for _, o := range t.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) DecrementStock(_ context.Context, productID uint, quantity int) (bool, error) {
	p, ok := t.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	p.Version++
	if p.Stock <= 0 {
		p.IsAvailable = false
	}
	t.products[productID] = p
	return true, nil
}

func (t *memoryTx) CreateOrder(_ context.Context, o *order.Order) error {
	now := time.Now().UTC()
	t.parent.nextOrderID++
	o.ID = t.parent.nextOrderID
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.Items {
		t.parent.nextItemID++
		o.Items[i].ID = t.parent.nextItemID
		o.Items[i].OrderID = o.ID
		o.Items[i].RecalculateTotal()
	}
	t.orders = append(t.orders, *o)
	return nil
}

func pick(products map[uint]product.Product, ids []uint) []product.Product {
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
