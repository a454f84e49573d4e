// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

const maxOrderNumberAttempts = 5

// ErrStockConflict means a product's stock fell below the quantity read
// earlier in the same transaction
var ErrStockConflict = errors.New("product stock changed during checkout")

// Request is what a guest submits to place an order
type Request struct {
	Contact         order.Contact       `json:"contact"`
	ShippingAddress order.Address       `json:"shipping_address"`
	ShippingMethod  string              `json:"shipping_method"`
	PaymentMethod   order.PaymentMethod `json:"payment_method" validate:"required"`
	Notes           string              `json:"notes" validate:"max=1000"`
}

// PaymentOption represents an available payment method
type PaymentOption struct {
	ID          order.PaymentMethod `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
}

// Service materializes carts into orders
type Service struct {
	store     Store
	estimator *shipping.Estimator
	validate  *validator.Validate
	logger    *logrus.Logger
	currency  string
	attempts  int
	newNumber order.NumberGenerator
	now       func() time.Time
}

// NewService creates a new checkout service
func NewService(store Store, estimator *shipping.Estimator, cfg config.ShopConfig, logger *logrus.Logger) *Service {
	attempts := cfg.CheckoutAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Service{
		store:     store,
		estimator: estimator,
		validate:  newValidator(),
		logger:    logger,
		currency:  cfg.Currency,
		attempts:  attempts,
		newNumber: order.GenerateNumber,
		now:       time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// PaymentOptions lists the accepted payment methods
func (s *Service) PaymentOptions() []PaymentOption {
	return []PaymentOption{
		{ID: order.PaymentMethodCOD, Name: "Cash on Delivery", Description: "Pay cash when your order is delivered"},
		{ID: order.PaymentMethodCard, Name: "Card", Description: "Pay by credit or debit card on delivery"},
		{ID: order.PaymentMethodBankTransfer, Name: "Bank Transfer", Description: "Transfer the total using the order number as reference"},
	}
}

// Checkout turns the cart into a pending order. Stock is decremented in
// the same transaction; on any failure nothing is written and the cart is
// left as it was. The cart is cleared only after the order is committed.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, req Request) (*order.Order, error) {
	if c.IsEmpty() {
		return nil, apperror.Validation("cart", "cart is empty")
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	lines := c.Lines()
	voucher := c.Voucher()

	var (
		created *order.Order
		err     error
	)
	for attempt := 1; attempt <= s.attempts; attempt++ {
		created, err = s.materialize(ctx, lines, voucher, req)
		if !errors.Is(err, ErrStockConflict) {
			break
		}
		s.logger.WithFields(logrus.Fields{
			"session_id": c.SessionID(),
			"attempt":    attempt,
		}).Debug("Stock changed during checkout, retrying")
	}

	if err != nil {
		err = apperror.Persistence("checkout", err)
		s.logFailure(c.SessionID(), err)
		return nil, err
	}

	if clearErr := c.Clear(ctx); clearErr != nil {
		s.logger.WithError(clearErr).WithFields(logrus.Fields{
			"session_id":   c.SessionID(),
			"order_number": created.OrderNumber,
		}).Warn("Order placed but cart could not be cleared")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":   c.SessionID(),
		"order_number": created.OrderNumber,
		"total":        created.Total.StringFixed(2),
		"items":        len(created.Items),
	}).Info("Order placed")

	return created, nil
}

func (s *Service) validateRequest(req Request) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperror.Validation(fe.Field(), "failed '%s' validation", fe.Tag())
		}
		return apperror.Validation("", "%v", err)
	}
	if !req.PaymentMethod.IsValid() {
		return apperror.Validation("payment_method", "unsupported payment method %q", req.PaymentMethod)
	}
	if _, err := s.estimator.Quote(req.ShippingMethod, decimal.Zero); err != nil {
		return err
	}
	return nil
}

func (s *Service) materialize(ctx context.Context, lines []cart.Line, voucher *cart.VoucherApplication, req Request) (*order.Order, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var created *order.Order
	err := s.store.WithinTx(ctx, func(tx TxStore) error {
		products, err := tx.FindProducts(ctx, ids)
		if err != nil {
			return err
		}

		items := cart.Resolve(lines, products)
		if len(items) == 0 {
			return apperror.Validation("cart", "none of the products in the cart are available")
		}

		shippingCost, err := s.estimator.Estimate(items, req.ShippingMethod)
		if err != nil {
			return err
		}
		totals := cart.Summarize(items, shippingCost, voucher)

		number, err := s.uniqueNumber(ctx, tx)
		if err != nil {
			return err
		}

		o := &order.Order{
			OrderNumber:     number,
			Status:          order.OrderStatusPending,
			Contact:         req.Contact,
			ShippingAddress: req.ShippingAddress,
			Subtotal:        totals.Subtotal,
			ShippingCost:    totals.ShippingCost,
			DiscountAmount:  totals.DiscountAmount,
			Total:           totals.Total,
			Currency:        s.currency,
			ShippingMethod:  strings.ToLower(strings.TrimSpace(req.ShippingMethod)),
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
		}
		if o.ShippingMethod == "" {
			o.ShippingMethod = shipping.MethodStandard
		}
		if voucher != nil {
			o.VoucherCode = voucher.Code
		}

		for _, item := range items {
			if !item.Product.CanFulfil(item.Quantity) {
				return &apperror.InsufficientStockError{
					ProductID:   item.Product.ID,
					ProductName: item.Product.Name,
					Available:   item.Product.SellableStock(),
					Requested:   item.Quantity,
				}
			}

			ok, err := tx.DecrementStock(ctx, item.Product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrStockConflict
			}

			orderItem := order.OrderItem{
				ProductID:   item.Product.ID,
				ProductName: item.Product.Name,
				Price:       item.UnitPrice,
				Quantity:    item.Quantity,
			}
			orderItem.RecalculateTotal()
			o.Items = append(o.Items, orderItem)
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) uniqueNumber(ctx context.Context, tx TxStore) (string, error) {
	for i := 0; i < maxOrderNumberAttempts; i++ {
		number, err := s.newNumber(s.now())
		if err != nil {
			return "", err
		}
		exists, err := tx.OrderNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("no unique order number after %d attempts", maxOrderNumberAttempts)
}

func (s *Service) logFailure(sessionID string, err error) {
	entry := s.logger.WithError(err).WithField("session_id", sessionID)

	var persistErr *apperror.PersistenceError
	if errors.As(err, &persistErr) {
		entry.Error("Checkout failed")
		return
	}
	entry.Info("Checkout rejected")
}
