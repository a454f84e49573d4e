// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	carts           *Carts
	checkoutService *checkout.Service
	estimator       *shipping.Estimator
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(carts *Carts, checkoutService *checkout.Service, estimator *shipping.Estimator, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:           carts,
		checkoutService: checkoutService,
		estimator:       estimator,
		logger:          logger,
	}
}

// GetShippingMethods handles GET /checkout/shipping-methods. Every method
// is quoted against the current cart subtotal.
func (h *CheckoutHandler) GetShippingMethods(c *gin.Context) {
	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	subtotal, err := sc.Subtotal(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping methods retrieved successfully",
		"data": gin.H{
			"subtotal":                subtotal,
			"free_shipping_threshold": h.estimator.FreeThreshold(),
			"shipping_methods":        h.estimator.QuoteAll(subtotal),
			"payment_methods":         h.checkoutService.PaymentOptions(),
		},
	})
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	placed, err := h.checkoutService.Checkout(c.Request.Context(), sc, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}
