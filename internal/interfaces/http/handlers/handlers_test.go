package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/domain/voucher"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	t      *testing.T
	router *gin.Engine
	store  *checkout.MemoryStore
	cookie *http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	shop := config.ShopConfig{
		Currency:              "USD",
		FreeShippingThreshold: dec("500.00"),
		StandardShippingRate:  dec("30.00"),
		ExpressShippingRate:   dec("60.00"),
		CartTTL:               time.Hour,
		CheckoutAttempts:      3,
	}
	store := checkout.NewMemoryStore(
		product.Product{ID: 1, Name: "Product A", Price: dec("100.00"), Stock: 5, IsAvailable: true},
		product.Product{ID: 2, Name: "Product B", Price: dec("60.00"), SalePrice: dec("50.00"), IsOnSale: true, Stock: 10, IsAvailable: true},
	)
	log := logger.Discard()
	estimator := shipping.NewEstimator(shop)
	carts := NewCarts(cart.NewMemorySessionStore(), store)

	cartHandler := NewCartHandler(carts, store, estimator, log)
	voucherHandler := NewVoucherHandler(carts, voucher.NewService(voucher.NewMemoryStore(voucher.DefaultVouchers()...), log), estimator, log)
	checkoutHandler := NewCheckoutHandler(carts, checkout.NewService(store, estimator, shop, log), estimator, log)
	orderHandler := NewOrderHandler(store, log)
	invoiceHandler := NewInvoiceHandler(store, pdf.NewService(config.CompanyConfig{Name: "Storefront"}), log)

	r := gin.New()
	r.Use(middleware.Session(&config.Config{Shop: shop}))
	r.GET("/cart", cartHandler.GetCart)
	r.POST("/cart/items", cartHandler.AddToCart)
	r.PUT("/cart/items/:id", cartHandler.UpdateCartItem)
	r.DELETE("/cart/items/:id", cartHandler.RemoveFromCart)
	r.DELETE("/cart", cartHandler.ClearCart)
	r.POST("/cart/voucher", voucherHandler.ApplyVoucher)
	r.DELETE("/cart/voucher", voucherHandler.RemoveVoucher)
	r.GET("/checkout/shipping-methods", checkoutHandler.GetShippingMethods)
	r.POST("/checkout", checkoutHandler.Checkout)
	r.GET("/orders/:number", orderHandler.GetOrderByNumber)
	r.GET("/orders/:number/invoice/data", invoiceHandler.GetInvoiceData)

	return &fixture{t: t, router: r, store: store}
}

// do sends a request within the fixture's session
func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			f.cookie = ck
		}
	}
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var env struct {
		Data CartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func checkoutBody() gin.H {
	return gin.H{
		"contact": gin.H{
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"email":      "ada@example.com",
		},
		"shipping_address": gin.H{
			"address_line1": "12 Analytical Row",
			"city":          "London",
			"postal_code":   "N1 9GU",
			"country":       "GB",
		},
		"shipping_method": "standard",
		"payment_method":  "cod",
	}
}

func TestCart_WorkedExample(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 2}).Code)
	w := f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 2, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	view := decodeCart(t, w)
	require.Len(t, view.Items, 2)
	assert.True(t, view.Totals.Subtotal.Equal(dec("250.00")))
	assert.True(t, view.Totals.ShippingCost.Equal(dec("30.00")))
	assert.True(t, view.Totals.Total.Equal(dec("280.00")))
	assert.True(t, view.AmountToFreeShipping.Equal(dec("250.00")))
	assert.Equal(t, shipping.MethodStandard, view.ShippingMethod)

	w = f.do(http.MethodPost, "/cart/voucher", gin.H{"code": "save10"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeCart(t, w)
	require.NotNil(t, view.Voucher)
	assert.Equal(t, "SAVE10", view.Voucher.Code)
	assert.True(t, view.Totals.DiscountAmount.Equal(dec("25.00")))
	assert.True(t, view.Totals.Total.Equal(dec("255.00")))

	w = f.do(http.MethodDelete, "/cart/voucher", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeCart(t, w)
	assert.Nil(t, view.Voucher)
	assert.True(t, view.Totals.Total.Equal(dec("280.00")))
}

func TestCart_ExpressQuote(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 5}).Code)

	view := decodeCart(t, f.do(http.MethodGet, "/cart", nil))
	assert.True(t, view.Totals.ShippingCost.IsZero())
	assert.True(t, view.Totals.Total.Equal(dec("500.00")))

	view = decodeCart(t, f.do(http.MethodGet, "/cart?shipping_method=express", nil))
	assert.True(t, view.Totals.ShippingCost.Equal(dec("60.00")))
	assert.True(t, view.Totals.Total.Equal(dec("560.00")))

	w := f.do(http.MethodGet, "/cart?shipping_method=drone", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "shipping_method", decodeBody(t, w)["field"])
}

func TestCart_NewSessionIsEmpty(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 1}).Code)

	other := newFixture(t)
	other.router = f.router
	view := decodeCart(t, other.do(http.MethodGet, "/cart", nil))
	assert.Empty(t, view.Items)
	assert.True(t, view.Totals.Total.IsZero())
}

func TestCart_AddErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"unknown product", gin.H{"product_id": 99, "quantity": 1}, http.StatusNotFound},
		{"zero quantity", gin.H{"product_id": 1, "quantity": 0}, http.StatusBadRequest},
		{"negative quantity", gin.H{"product_id": 1, "quantity": -2}, http.StatusBadRequest},
		{"missing product", gin.H{"quantity": 1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, f.do(http.MethodPost, "/cart/items", tt.body).Code)
		})
	}

	view := decodeCart(t, f.do(http.MethodGet, "/cart", nil))
	assert.Empty(t, view.Items)
}

func TestCart_AddDefaultsToOneUnit(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1}).Code)
	view := decodeCart(t, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1}))

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2, view.Totals.TotalQuantity)
}

func TestCart_UpdateAndRemove(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 2}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 2, "quantity": 1}).Code)

	view := decodeCart(t, f.do(http.MethodPut, "/cart/items/1", gin.H{"quantity": 4}))
	assert.Equal(t, 5, view.Totals.TotalQuantity)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPut, "/cart/items/42", gin.H{"quantity": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/cart/items/abc", gin.H{"quantity": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/cart/items/1", gin.H{}).Code)

	view = decodeCart(t, f.do(http.MethodPut, "/cart/items/2", gin.H{"quantity": 0}))
	assert.Len(t, view.Items, 1)

	view = decodeCart(t, f.do(http.MethodDelete, "/cart/items/1", nil))
	assert.Empty(t, view.Items)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/cart/items/1", nil).Code)
}

func TestCart_ClearDropsVoucher(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 1}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/voucher", gin.H{"code": "SAVE10"}).Code)

	view := decodeCart(t, f.do(http.MethodDelete, "/cart", nil))
	assert.Empty(t, view.Items)
	assert.Nil(t, view.Voucher)
}

func TestVoucher_Rejections(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/cart/voucher", gin.H{"code": "SAVE10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 1}).Code)

	w = f.do(http.MethodPost, "/cart/voucher", gin.H{"code": "BOGUS"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "BOGUS", body["code"])
	assert.Equal(t, "invalid voucher code", body["reason"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/cart/voucher", gin.H{}).Code)

	view := decodeCart(t, f.do(http.MethodGet, "/cart", nil))
	assert.Nil(t, view.Voucher)
}

func TestCheckout_PlacesOrder(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 2}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 2, "quantity": 1}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/voucher", gin.H{"code": "SAVE10"}).Code)

	w := f.do(http.MethodPost, "/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	placed := env.Data
	assert.True(t, order.IsValidNumber(placed.OrderNumber))
	assert.Equal(t, order.OrderStatusPending, placed.Status)
	assert.True(t, placed.Total.Equal(dec("255.00")))
	assert.Equal(t, "SAVE10", placed.VoucherCode)
	assert.Len(t, placed.Items, 2)

	a, _ := f.store.Product(1)
	assert.Equal(t, 3, a.Stock)

	view := decodeCart(t, f.do(http.MethodGet, "/cart", nil))
	assert.Empty(t, view.Items)
	assert.Nil(t, view.Voucher)

	w = f.do(http.MethodGet, "/orders/"+placed.OrderNumber+"?email=ADA@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["data"].(map[string]interface{})["can_be_cancelled"])

	w = f.do(http.MethodGet, "/orders/"+placed.OrderNumber+"/invoice/data?email=ada@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "INV-"+placed.OrderNumber, data["invoice_number"])
}

func TestCheckout_Failures(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/checkout", checkoutBody())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "cart", decodeBody(t, w)["field"])
	})

	t.Run("missing email", func(t *testing.T) {
		f := newFixture(t)
		require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 1}).Code)

		body := checkoutBody()
		delete(body["contact"].(gin.H), "email")
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/checkout", body).Code)
		assert.Empty(t, f.store.Orders())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newFixture(t)
		require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 6}).Code)

		w := f.do(http.MethodPost, "/checkout", checkoutBody())
		require.Equal(t, http.StatusConflict, w.Code)
		details := decodeBody(t, w)["details"].(map[string]interface{})
		assert.EqualValues(t, 1, details["product_id"])
		assert.EqualValues(t, 5, details["available"])
		assert.EqualValues(t, 6, details["requested"])

		a, _ := f.store.Product(1)
		assert.Equal(t, 5, a.Stock)
		assert.Empty(t, f.store.Orders())

		view := decodeCart(t, f.do(http.MethodGet, "/cart", nil))
		assert.Len(t, view.Items, 1)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckout_ShippingMethods(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 5}).Code)

	w := f.do(http.MethodGet, "/checkout/shipping-methods", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			Subtotal        decimal.Decimal          `json:"subtotal"`
			ShippingMethods []shipping.Quote         `json:"shipping_methods"`
			PaymentMethods  []checkout.PaymentOption `json:"payment_methods"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.Subtotal.Equal(dec("500.00")))
	require.Len(t, env.Data.ShippingMethods, 2)
	assert.Equal(t, shipping.MethodStandard, env.Data.ShippingMethods[0].Code)
	assert.True(t, env.Data.ShippingMethods[0].IsFree)
	assert.True(t, env.Data.ShippingMethods[1].Cost.Equal(dec("60.00")))
	assert.Len(t, env.Data.PaymentMethods, 3)
}

func TestOrder_NotFound(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/orders/ORD-20260101-ZZZZZZ?email=ada@example.com", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/orders/ORD-20260101-ZZZZZZ/invoice/data?email=ada@example.com", nil).Code)
}

func TestOrder_LookupRequiresCheckoutEmail(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart/items", gin.H{"product_id": 1, "quantity": 1}).Code)
	w := f.do(http.MethodPost, "/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)
	number := f.store.Orders()[0].OrderNumber

	paths := map[string]string{
		"order":   "/orders/" + number,
		"invoice": "/orders/" + number + "/invoice/data",
	}
	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			w := f.do(http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "email", decodeBody(t, w)["field"])

			w = f.do(http.MethodGet, path+"?email=mallory@example.com", nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.NotContains(t, w.Body.String(), "ada@example.com")

			w = f.do(http.MethodGet, path+"?email=%20ada@example.com%20", nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRespondError_Unclassified(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, logger.Discard(), errors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRespondError_Persistence(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, logger.Discard(), apperror.Persistence("save cart", errors.New("redis down")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
