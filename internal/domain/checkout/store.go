// internal/domain/checkout/store.go
package checkout

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store runs checkout work inside one all-or-nothing transaction. When fn
// returns an error every write it made is discarded.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the set of writes a checkout makes inside its transaction
type TxStore interface {
	FindProducts(ctx context.Context, ids []uint) ([]product.Product, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	// FindProducts locks the returned rows until the transaction ends.
	// DecrementStock takes quantity off a product only while at least that
	// much is in stock; ok is false otherwise.
	DecrementStock(ctx context.Context, productID uint, quantity int) (ok bool, err error)
	CreateOrder(ctx context.Context, o *order.Order) error
}

// GormStore is the PostgreSQL checkout store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a gorm backed checkout store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) FindProducts(ctx context.Context, ids []uint) ([]product.Product, error) {
	var products []product.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (t *gormTx) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&order.Order{}).Where("order_number = ?", number).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return count > 0, nil
}

func (t *gormTx) DecrementStock(ctx context.Context, productID uint, quantity int) (bool, error) {
	result := t.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"stock":        gorm.Expr("stock - ?", quantity),
			"version":      gorm.Expr("version + 1"),
			"is_available": gorm.Expr("CASE WHEN stock - ? > 0 THEN is_available ELSE false END", quantity),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for product %d: %w", productID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (t *gormTx) CreateOrder(ctx context.Context, o *order.Order) error {
	if err := t.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}
