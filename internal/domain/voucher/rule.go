// internal/domain/voucher/rule.go
package voucher

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Rule turns a cart subtotal into a discount
type Rule interface {
	Discount(subtotal decimal.Decimal) decimal.Decimal
	WaivesShipping() bool
}

// PercentageRule takes Percent of the subtotal, optionally capped
type PercentageRule struct {
	Percent     decimal.Decimal
	MaxDiscount decimal.Decimal
}

func (r PercentageRule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	d := subtotal.Mul(r.Percent).Div(hundred).Round(2)
	if r.MaxDiscount.IsPositive() && d.GreaterThan(r.MaxDiscount) {
		d = r.MaxDiscount
	}
	return clamp(d, subtotal)
}

func (PercentageRule) WaivesShipping() bool { return false }

// FixedAmountRule takes a flat amount off, never more than the subtotal
type FixedAmountRule struct {
	Amount decimal.Decimal
}

func (r FixedAmountRule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	return clamp(r.Amount, subtotal)
}

func (FixedAmountRule) WaivesShipping() bool { return false }

// FreeShippingRule discounts nothing from the goods but waives shipping
type FreeShippingRule struct{}

func (FreeShippingRule) Discount(decimal.Decimal) decimal.Decimal { return decimal.Zero }

func (FreeShippingRule) WaivesShipping() bool { return true }

func clamp(d, subtotal decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d, subtotal)
}
