// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:100" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	Description string          `gorm:"size:1500" json:"description"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"sale_price"`
	IsOnSale    bool            `gorm:"not null;default:false" json:"is_on_sale"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	Image       string          `gorm:"size:500" json:"image"`
	// Version is bumped on every stock change and guards concurrent decrements
	Version   int            `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:100" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	Description string         `gorm:"size:1000" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// EffectivePrice is the sale price when the product is on sale with a
// positive sale price, the regular price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsOnSale && p.SalePrice.IsPositive() {
		return p.SalePrice
	}
	return p.Price
}

// IsInStock reports whether at least one unit can be sold
func (p *Product) IsInStock() bool {
	return p.SellableStock() > 0
}

// SellableStock is the stock on hand, or zero for an unlisted product
func (p *Product) SellableStock() int {
	if !p.IsAvailable || p.Stock < 0 {
		return 0
	}
	return p.Stock
}

// CanFulfil reports whether quantity units can be sold
func (p *Product) CanFulfil(quantity int) bool {
	return p.SellableStock() >= quantity
}

// GetDiscountPercentage returns the whole-percent markdown of an active sale
func (p *Product) GetDiscountPercentage() int {
	if !p.IsOnSale || !p.SalePrice.IsPositive() || !p.Price.IsPositive() || p.SalePrice.GreaterThanOrEqual(p.Price) {
		return 0
	}
	return int(p.Price.Sub(p.SalePrice).Mul(decimal.NewFromInt(100)).Div(p.Price).IntPart())
}
