// internal/domain/cart/pricing.go
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Resolve joins lines with the given products. Lines without a matching
// product are stale references and are dropped.
func Resolve(lines []Line, products []product.Product) []Item {
	byID := make(map[uint]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		price := p.EffectivePrice()
		items = append(items, Item{
			Product:       p,
			Quantity:      line.Quantity,
			UnitPrice:     price,
			SnapshotPrice: line.UnitPrice,
			LineTotal:     price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return items
}

// Subtotal sums the line totals of resolved items
func Subtotal(items []Item) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	return subtotal
}

// GrandTotal is the one place the order total formula lives
func GrandTotal(subtotal, shippingCost, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shippingCost).Sub(discount)
}

// Summarize prices resolved items with a shipping quote and the applied
// voucher. The stored discount is capped at the subtotal, and a
// free-shipping voucher zeroes the shipping cost.
func Summarize(items []Item, shippingCost decimal.Decimal, voucher *VoucherApplication) Totals {
	totals := Totals{
		ItemCount:      len(items),
		Subtotal:       Subtotal(items),
		ShippingCost:   shippingCost,
		DiscountAmount: decimal.Zero,
	}
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
	}

	if voucher != nil {
		totals.DiscountAmount = decimal.Min(voucher.DiscountAmount, totals.Subtotal)
		if totals.DiscountAmount.IsNegative() {
			totals.DiscountAmount = decimal.Zero
		}
		if voucher.WaivesShipping {
			totals.ShippingCost = decimal.Zero
		}
	}

	totals.Total = GrandTotal(totals.Subtotal, totals.ShippingCost, totals.DiscountAmount)
	return totals
}
