// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/voucher"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		// Catalog
		&product.Category{},
		&product.Product{},

		// Vouchers
		&voucher.Voucher{},

		// Orders
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the catalog and order queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_available ON products(category_id, is_available)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_on_sale ON products(is_on_sale) WHERE is_on_sale",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Money and stock guards
		"DO $$ BEGIN ALTER TABLE products ADD CONSTRAINT chk_products_stock_non_negative CHECK (stock >= 0); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
		"DO $$ BEGIN ALTER TABLE orders ADD CONSTRAINT chk_orders_total_non_negative CHECK (total >= 0); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes ensured")
	return nil
}

// SeedInitialData inserts demo categories and products
func (m *Migration) SeedInitialData() error {
	m.logger.Info("Seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	m.logger.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Electronics", Slug: "electronics", Description: "Electronic devices, gadgets, and accessories"},
		{Name: "Home & Office", Slug: "home-office", Description: "Desk lamps, stationery, and furniture"},
		{Name: "Books", Slug: "books", Description: "Books and educational materials"},
	}

	for _, category := range categories {
		if err := m.firstOrCreate(&product.Category{}, "slug = ?", category.Slug, &category); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.Debug("Products already exist, skipping product seed")
		return nil
	}

	var office, electronics product.Category
	if err := m.db.Where("slug = ?", "home-office").First(&office).Error; err != nil {
		return err
	}
	if err := m.db.Where("slug = ?", "electronics").First(&electronics).Error; err != nil {
		return err
	}

	products := []product.Product{
		{
			Name:        "Desk Lamp",
			Slug:        "desk-lamp",
			Description: "Adjustable LED desk lamp with three brightness levels",
			CategoryID:  office.ID,
			Price:       decimal.RequireFromString("100.00"),
			Stock:       25,
			IsAvailable: true,
		},
		{
			Name:        "Hardcover Notebook",
			Slug:        "hardcover-notebook",
			Description: "A5 dotted notebook, 192 pages",
			CategoryID:  office.ID,
			Price:       decimal.RequireFromString("60.00"),
			SalePrice:   decimal.RequireFromString("50.00"),
			IsOnSale:    true,
			Stock:       100,
			IsAvailable: true,
		},
		{
			Name:        "Noise-Cancelling Headphones",
			Slug:        "noise-cancelling-headphones",
			Description: "Wireless over-ear headphones with active noise cancellation",
			CategoryID:  electronics.ID,
			Price:       decimal.RequireFromString("249.99"),
			Stock:       10,
			IsAvailable: true,
		},
		{
			Name:        "Limited Edition Keyboard",
			Slug:        "limited-edition-keyboard",
			Description: "Mechanical keyboard, one unit left",
			CategoryID:  electronics.ID,
			Price:       decimal.RequireFromString("189.00"),
			Stock:       1,
			IsAvailable: true,
		},
	}

	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", products[i].Slug, err)
		}
		m.logger.WithField("slug", products[i].Slug).Debug("Created product")
	}
	return nil
}

// SeedVouchers ensures the standard voucher codes exist. Codes already in
// the table are left untouched so edits made by staff survive restarts.
func (m *Migration) SeedVouchers() error {
	for _, v := range voucher.DefaultVouchers() {
		v := v
		if err := m.firstOrCreate(&voucher.Voucher{}, "code = ?", v.Code, &v); err != nil {
			return fmt.Errorf("failed to seed voucher %s: %w", v.Code, err)
		}
	}
	return nil
}

func (m *Migration) firstOrCreate(existing interface{}, query string, key interface{}, record interface{}) error {
	err := m.db.Where(query, key).First(existing).Error
	if err == nil {
		m.logger.WithField("key", key).Debug("Seed record already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := m.db.Create(record).Error; err != nil {
		return err
	}
	m.logger.WithField("key", key).Info("Created seed record")
	return nil
}
