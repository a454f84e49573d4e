// internal/domain/shipping/estimator.go
package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// Shipping method codes
const (
	MethodStandard = "standard"
	MethodExpress  = "express"
)

// Method is a selectable shipping option
type Method struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	EstimatedDays string          `json:"estimated_days"`
	// FreeAboveThreshold makes the method free once the subtotal reaches
	// the shop's free-shipping threshold.
	FreeAboveThreshold bool `json:"free_above_threshold"`
}

// Quote is the price of one method for a given cart
type Quote struct {
	Method
	Cost   decimal.Decimal `json:"cost"`
	IsFree bool            `json:"is_free"`
}

// Estimator prices shipping from the cart subtotal and a chosen method
type Estimator struct {
	methods       []Method
	freeThreshold decimal.Decimal
}

// NewEstimator builds the standard and express methods from shop settings
func NewEstimator(cfg config.ShopConfig) *Estimator {
	return &Estimator{
		methods: []Method{
			{
				Code:               MethodStandard,
				Name:               "Standard Shipping",
				Rate:               cfg.StandardShippingRate,
				EstimatedDays:      "3-5",
				FreeAboveThreshold: true,
			},
			{
				Code:          MethodExpress,
				Name:          "Express Shipping",
				Rate:          cfg.ExpressShippingRate,
				EstimatedDays: "1-2",
			},
		},
		freeThreshold: cfg.FreeShippingThreshold,
	}
}

// Methods lists every method in display order
func (e *Estimator) Methods() []Method {
	out := make([]Method, len(e.methods))
	copy(out, e.methods)
	return out
}

// FreeThreshold is the subtotal at which eligible methods become free
func (e *Estimator) FreeThreshold() decimal.Decimal {
	return e.freeThreshold
}

// Quote prices a method for a subtotal. An empty code means standard.
func (e *Estimator) Quote(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	method, err := e.method(code)
	if err != nil {
		return decimal.Zero, err
	}
	return e.cost(method, subtotal), nil
}

// Estimate prices a method for resolved cart contents
func (e *Estimator) Estimate(items []cart.Item, code string) (decimal.Decimal, error) {
	return e.Quote(code, cart.Subtotal(items))
}

// QuoteAll prices every method for a subtotal
func (e *Estimator) QuoteAll(subtotal decimal.Decimal) []Quote {
	quotes := make([]Quote, 0, len(e.methods))
	for _, m := range e.methods {
		cost := e.cost(m, subtotal)
		quotes = append(quotes, Quote{Method: m, Cost: cost, IsFree: cost.IsZero()})
	}
	return quotes
}

func (e *Estimator) method(code string) (Method, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = MethodStandard
	}
	for _, m := range e.methods {
		if m.Code == code {
			return m, nil
		}
	}
	return Method{}, apperror.Validation("shipping_method", "unknown shipping method %q", code)
}

func (e *Estimator) cost(m Method, subtotal decimal.Decimal) decimal.Decimal {
	if m.FreeAboveThreshold && subtotal.GreaterThanOrEqual(e.freeThreshold) {
		return decimal.Zero
	}
	return m.Rate
}
