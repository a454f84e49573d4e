package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{"regular", Product{Price: decimal.RequireFromString("100.00")}, "100"},
		{"on sale", Product{Price: decimal.RequireFromString("100.00"), SalePrice: decimal.RequireFromString("79.99"), IsOnSale: true}, "79.99"},
		{"sale flag with zero sale price", Product{Price: decimal.RequireFromString("100.00"), IsOnSale: true}, "100"},
		{"sale price without flag", Product{Price: decimal.RequireFromString("100.00"), SalePrice: decimal.RequireFromString("50.00")}, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.product.EffectivePrice().String())
		})
	}
}

func TestStockHelpers(t *testing.T) {
	p := Product{Stock: 2, IsAvailable: true}
	assert.True(t, p.IsInStock())
	assert.True(t, p.CanFulfil(2))
	assert.False(t, p.CanFulfil(3))

	p.IsAvailable = false
	assert.False(t, p.IsInStock())
	assert.False(t, p.CanFulfil(1))
	assert.Equal(t, 0, p.SellableStock())
}

func TestGetDiscountPercentage(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(200), SalePrice: decimal.NewFromInt(150), IsOnSale: true}
	assert.Equal(t, 25, p.GetDiscountPercentage())

	p.IsOnSale = false
	assert.Equal(t, 0, p.GetDiscountPercentage())
}
