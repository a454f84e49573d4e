// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Carts opens the session cart for a request
type Carts struct {
	sessions cart.SessionStore
	catalog  cart.Catalog
}

// NewCarts creates a cart loader over a session store and catalog
func NewCarts(sessions cart.SessionStore, catalog cart.Catalog) *Carts {
	return &Carts{sessions: sessions, catalog: catalog}
}

func (l *Carts) load(c *gin.Context) (*cart.Cart, error) {
	return cart.Load(c.Request.Context(), l.sessions, l.catalog, middleware.GetSessionID(c))
}

// AddToCartRequest is the body of POST /cart/items. Quantity defaults to 1.
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity" binding:"omitempty,min=1,max=100"`
	// Override replaces the line quantity instead of adding to it
	Override bool `json:"override"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:id. A zero
// quantity removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=100"`
}

// CartResponse is the priced view of a session cart
type CartResponse struct {
	Items                 []cart.Item              `json:"items"`
	Voucher               *cart.VoucherApplication `json:"voucher,omitempty"`
	ShippingMethod        string                   `json:"shipping_method"`
	Totals                cart.Totals              `json:"totals"`
	FreeShippingThreshold decimal.Decimal          `json:"free_shipping_threshold"`
	AmountToFreeShipping  decimal.Decimal          `json:"amount_to_free_shipping"`
}

// CartHandler handles cart endpoints
type CartHandler struct {
	carts     *Carts
	catalog   cart.Catalog
	estimator *shipping.Estimator
	logger    *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *Carts, catalog cart.Catalog, estimator *shipping.Estimator, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:     carts,
		catalog:   catalog,
		estimator: estimator,
		logger:    logger,
	}
}

// GetCart handles GET /cart. The optional shipping_method query picks
// the method the totals are quoted with.
func (h *CartHandler) GetCart(c *gin.Context) {
	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondCart(c, h.logger, h.estimator, sc, "Cart retrieved successfully")
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := sc.Add(ctx, p, quantity, req.Override); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCart(c, h.logger, h.estimator, sc, "Item added to cart successfully")
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	found, err := sc.Update(c.Request.Context(), productID, *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found in cart",
		})
		return
	}

	respondCart(c, h.logger, h.estimator, sc, "Cart item updated successfully")
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	found, err := sc.Remove(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found in cart",
		})
		return
	}

	respondCart(c, h.logger, h.estimator, sc, "Item removed from cart successfully")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := sc.Clear(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCart(c, h.logger, h.estimator, sc, "Cart cleared successfully")
}

// respondCart writes the priced cart, quoted with the shipping_method query
func respondCart(c *gin.Context, logger *logrus.Logger, estimator *shipping.Estimator, sc *cart.Cart, message string) {
	view, err := priceCart(c.Request.Context(), sc, estimator, c.Query("shipping_method"))
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    view,
	})
}

// priceCart resolves the cart against the catalog and prices it with the
// chosen shipping method. An empty cart ships for free.
func priceCart(ctx context.Context, sc *cart.Cart, estimator *shipping.Estimator, method string) (*CartResponse, error) {
	items, err := sc.Products(ctx)
	if err != nil {
		return nil, err
	}

	if method == "" {
		method = shipping.MethodStandard
	}
	shippingCost := decimal.Zero
	if len(items) > 0 {
		shippingCost, err = estimator.Estimate(items, method)
		if err != nil {
			return nil, err
		}
	}

	totals := cart.Summarize(items, shippingCost, sc.Voucher())

	toFree := estimator.FreeThreshold().Sub(totals.Subtotal)
	if toFree.IsNegative() {
		toFree = decimal.Zero
	}

	return &CartResponse{
		Items:                 items,
		Voucher:               sc.Voucher(),
		ShippingMethod:        method,
		Totals:                totals,
		FreeShippingThreshold: estimator.FreeThreshold(),
		AmountToFreeShipping:  toFree,
	}, nil
}
