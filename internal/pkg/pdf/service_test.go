package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

func sampleOrder() *order.Order {
	return &order.Order{
		OrderNumber:     "ORD-20261017-AB12CD",
		Status:          order.OrderStatusPending,
		Contact:         order.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		ShippingAddress: order.Address{AddressLine1: "12 St James's Square", City: "London", PostalCode: "SW1Y 4JH", Country: "GB"},
		Subtotal:        decimal.RequireFromString("250.00"),
		ShippingCost:    decimal.RequireFromString("30.00"),
		DiscountAmount:  decimal.RequireFromString("25.00"),
		Total:           decimal.RequireFromString("255.00"),
		Currency:        "USD",
		VoucherCode:     "SAVE10",
		ShippingMethod:  "standard",
		PaymentMethod:   order.PaymentMethodCOD,
		CreatedAt:       time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{ProductName: "Desk Lamp", Price: decimal.RequireFromString("100.00"), Quantity: 2, TotalPrice: decimal.RequireFromString("200.00")},
			{ProductName: "Notebook <Limited>", Price: decimal.RequireFromString("50.00"), Quantity: 1, TotalPrice: decimal.RequireFromString("50.00")},
		},
	}
}

func TestRenderHTML(t *testing.T) {
	svc := NewService(config.CompanyConfig{Name: "Storefront Ltd", Email: "billing@storefront.test"})
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	html, err := svc.RenderHTML(sampleOrder())
	require.NoError(t, err)

	assert.Contains(t, html, "INV-ORD-20261017-AB12CD")
	assert.Contains(t, html, "October 18, 2026")
	assert.Contains(t, html, "October 17, 2026")
	assert.Contains(t, html, "Storefront Ltd")
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "200.00")
	assert.Contains(t, html, "-25.00")
	assert.Contains(t, html, "(SAVE10)")
	assert.Contains(t, html, "255.00")
	assert.Contains(t, html, "status-pending")
	assert.Contains(t, html, "Notebook &lt;Limited&gt;")
	assert.NotContains(t, html, "Notebook <Limited>")
}

func TestRenderHTML_NoDiscountRow(t *testing.T) {
	o := sampleOrder()
	o.DiscountAmount = decimal.Zero
	o.VoucherCode = ""
	o.Total = decimal.RequireFromString("280.00")

	html, err := NewService(config.CompanyConfig{Name: "Storefront Ltd"}).RenderHTML(o)
	require.NoError(t, err)

	assert.NotContains(t, html, "Discount")
	assert.Contains(t, html, "280.00")
}
