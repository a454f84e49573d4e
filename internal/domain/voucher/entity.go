// internal/domain/voucher/entity.go
package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Kind selects the discount rule a voucher uses
type Kind string

const (
	KindPercentage   Kind = "percentage"
	KindFixedAmount  Kind = "fixed_amount"
	KindFreeShipping Kind = "free_shipping"
)

// Voucher is a persisted discount code
type Voucher struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Code        string          `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Description string          `json:"description" gorm:"size:255"`
	Kind        Kind            `json:"kind" gorm:"not null;size:20"`
	Value       decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null;default:0"`
	MinSubtotal decimal.Decimal `json:"min_subtotal" gorm:"type:numeric(12,2);not null;default:0"`
	// MaxDiscount caps percentage vouchers; zero means uncapped
	MaxDiscount decimal.Decimal `json:"max_discount" gorm:"type:numeric(12,2);not null;default:0"`
	ValidFrom   *time.Time      `json:"valid_from,omitempty"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
	IsActive    bool            `json:"is_active" gorm:"default:true;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name for Voucher
func (Voucher) TableName() string {
	return "vouchers"
}

// BeforeSave keeps codes in their canonical form
func (v *Voucher) BeforeSave(tx *gorm.DB) error {
	v.Code = NormalizeCode(v.Code)
	return nil
}

// NormalizeCode trims and upper-cases a code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Rule builds the discount rule for the voucher's kind
func (v *Voucher) Rule() (Rule, error) {
	switch v.Kind {
	case KindPercentage:
		return PercentageRule{Percent: v.Value, MaxDiscount: v.MaxDiscount}, nil
	case KindFixedAmount:
		return FixedAmountRule{Amount: v.Value}, nil
	case KindFreeShipping:
		return FreeShippingRule{}, nil
	default:
		return nil, fmt.Errorf("unknown voucher kind %q", v.Kind)
	}
}

// ineligibility returns why the voucher cannot be used, or "" when it can
func (v *Voucher) ineligibility(subtotal decimal.Decimal, now time.Time) string {
	switch {
	case !v.IsActive:
		return "voucher is no longer active"
	case v.ValidFrom != nil && now.Before(*v.ValidFrom):
		return "voucher is not valid yet"
	case v.ValidUntil != nil && now.After(*v.ValidUntil):
		return "voucher has expired"
	case subtotal.LessThan(v.MinSubtotal):
		return fmt.Sprintf("order subtotal must be at least %s", v.MinSubtotal.StringFixed(2))
	}
	return ""
}
