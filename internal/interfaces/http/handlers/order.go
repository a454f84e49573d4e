// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// OrderReader looks up a placed order by its public number
type OrderReader interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error)
}

// OrderHandler handles guest order lookups
type OrderHandler struct {
	orders OrderReader
	logger *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderReader, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// findGuestOrder loads the order named in the path and checks it against
// the email query parameter. A wrong email gets the same 404 as an unknown
// number.
func findGuestOrder(c *gin.Context, orders OrderReader, logger *logrus.Logger) (*order.Order, bool) {
	number := c.Param("number")
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		respondError(c, logger, apperror.Validation("email", "the email used at checkout is required"))
		return nil, false
	}

	o, err := orders.GetOrderByNumber(c.Request.Context(), number)
	if err == nil && !strings.EqualFold(strings.TrimSpace(o.Contact.Email), email) {
		err = apperror.NotFound("order", number)
	}
	if err != nil {
		respondError(c, logger, err)
		return nil, false
	}
	return o, true
}

// GetOrderByNumber handles GET /orders/:number?email=
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	o, ok := findGuestOrder(c, h.orders, h.logger)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data": gin.H{
			"order":            o,
			"can_be_cancelled": o.CanBeCancelled(),
		},
	})
}
