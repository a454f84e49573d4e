// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod is how a guest intends to pay
type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid reports whether m is an accepted payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Contact is the guest's contact details (embedded in Order)
type Contact struct {
	FirstName string `gorm:"not null;size:100" json:"first_name" validate:"required,max=100"`
	LastName  string `gorm:"not null;size:100" json:"last_name" validate:"required,max=100"`
	Email     string `gorm:"not null;size:255;index" json:"email" validate:"required,email,max=255"`
	Phone     string `gorm:"size:20" json:"phone" validate:"omitempty,max=20"`
}

// Address represents the shipping address (embedded in Order)
type Address struct {
	AddressLine1 string `gorm:"size:255" json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `gorm:"size:255" json:"address_line2" validate:"max=255"`
	City         string `gorm:"size:100" json:"city" validate:"required,max=100"`
	State        string `gorm:"size:100" json:"state" validate:"max=100"`
	PostalCode   string `gorm:"size:20" json:"postal_code" validate:"required,max=20"`
	Country      string `gorm:"size:2" json:"country" validate:"required,len=2"`
}

// Order represents the order entity
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	Status      OrderStatus `gorm:"not null;default:'pending';size:20" json:"status"`

	Contact         Contact `gorm:"embedded" json:"contact"`
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	// Financial Information
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingCost   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping_cost"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Currency       string          `gorm:"size:3;default:'USD'" json:"currency"`
	VoucherCode    string          `gorm:"size:50" json:"voucher_code,omitempty"`

	ShippingMethod string        `gorm:"size:50" json:"shipping_method"`
	PaymentMethod  PaymentMethod `gorm:"not null;size:20" json:"payment_method"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`

	// Timestamps
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem snapshots a product line at order time
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"` // Quantity * Price
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// BeforeSave keeps TotalPrice in step with Price and Quantity
func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	i.RecalculateTotal()
	return nil
}

// RecalculateTotal sets TotalPrice to Price * Quantity
func (i *OrderItem) RecalculateTotal() {
	i.TotalPrice = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Business methods for Order

// ItemsTotal sums the line totals of the order's items
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}

// IsConsistent checks the order's money invariants
func (o *Order) IsConsistent() bool {
	return o.Total.Equal(o.Subtotal.Add(o.ShippingCost).Sub(o.DiscountAmount)) &&
		o.ItemsTotal().Equal(o.Subtotal)
}

// CustomerName returns the contact's full name
func (o *Order) CustomerName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", o.Contact.FirstName, o.Contact.LastName))
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether the state machine allows s -> to
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
