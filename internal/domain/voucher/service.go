// internal/domain/voucher/service.go
package voucher

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// Result is an evaluated voucher
type Result struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	WaivesShipping bool            `json:"waives_shipping"`
}

// Service evaluates codes and applies them to carts
type Service struct {
	store  RuleStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new voucher service
func NewService(store RuleStore, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate maps a code and subtotal to a discount. Rejections come back as
// InvalidVoucherError.
func (s *Service) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (*Result, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, &apperror.InvalidVoucherError{Code: code, Reason: "voucher code is required"}
	}

	v, err := s.store.FindByCode(ctx, normalized)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &apperror.InvalidVoucherError{Code: normalized, Reason: "invalid voucher code"}
		}
		return nil, err
	}

	if reason := v.ineligibility(subtotal, s.now()); reason != "" {
		return nil, &apperror.InvalidVoucherError{Code: normalized, Reason: reason}
	}

	rule, err := v.Rule()
	if err != nil {
		s.logger.WithError(err).WithField("code", normalized).Error("Voucher has an unusable rule")
		return nil, &apperror.InvalidVoucherError{Code: normalized, Reason: "voucher cannot be applied"}
	}

	return &Result{
		Code:           normalized,
		DiscountAmount: rule.Discount(subtotal),
		WaivesShipping: rule.WaivesShipping(),
	}, nil
}

// Apply evaluates code against the cart's current subtotal and stores the
// resulting discount amount with the cart.
func (s *Service) Apply(ctx context.Context, c *cart.Cart, code string) (*Result, error) {
	items, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.Validation("cart", "cannot apply a voucher to an empty cart")
	}

	result, err := s.Evaluate(ctx, code, cart.Subtotal(items))
	if err != nil {
		return nil, err
	}

	err = c.ApplyVoucher(ctx, cart.VoucherApplication{
		Code:           result.Code,
		DiscountAmount: result.DiscountAmount,
		WaivesShipping: result.WaivesShipping,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": c.SessionID(),
		"code":       result.Code,
		"discount":   result.DiscountAmount.StringFixed(2),
	}).Info("Voucher applied")

	return result, nil
}

// Remove clears the voucher code and its stored discount
func (s *Service) Remove(ctx context.Context, c *cart.Cart) error {
	return c.RemoveVoucher(ctx)
}
