// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles order lookups and fulfillment status changes
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	if !IsValidNumber(orderNumber) {
		return nil, apperror.NotFound("order", orderNumber)
	}
	return s.findOne(ctx, "order_number = ?", orderNumber)
}

func (s *Service) findOne(ctx context.Context, query string, arg interface{}) (*Order, error) {
	var order Order
	result := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where(query, arg).
		First(&order)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order", arg)
		}
		return nil, apperror.Persistence("retrieve order", result.Error)
	}

	return &order, nil
}

// UpdateStatus moves an order along the status state machine. Cancelling
// returns the ordered quantities to stock in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status OrderStatus, comment string) (*Order, error) {
	if !status.IsValid() {
		return nil, apperror.Validation("status", "unknown order status %q", status)
	}

	var order Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order", orderID)
			}
			return err
		}

		// Validate status transition
		if !order.Status.CanTransitionTo(status) {
			return apperror.Validation("status", "invalid status transition from %s to %s", order.Status, status)
		}

		updates := map[string]interface{}{
			"status": status,
		}

		// Set timestamps based on status
		now := time.Now().UTC()
		switch status {
		case OrderStatusProcessing:
			updates["processed_at"] = now
			order.ProcessedAt = &now
		case OrderStatusShipped:
			updates["shipped_at"] = now
			order.ShippedAt = &now
		case OrderStatusDelivered:
			updates["delivered_at"] = now
			order.DeliveredAt = &now
		case OrderStatusCancelled:
			updates["cancelled_at"] = now
			order.CancelledAt = &now
			if err := s.restoreInventory(tx, order.ID); err != nil {
				return err
			}
		}

		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		order.Status = status

		history := OrderStatusHistory{
			OrderID:   order.ID,
			Status:    status,
			Comment:   comment,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		order.StatusHistory = append(order.StatusHistory, history)

		return nil
	})
	if err != nil {
		return nil, apperror.Persistence("update order status", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"status":       status,
	}).Info("Order status updated")

	return &order, nil
}

func (s *Service) restoreInventory(tx *gorm.DB, orderID uint) error {
	var items []OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to get order items: %w", err)
	}

	for _, item := range items {
		result := tx.Model(&product.Product{}).
			Where("id = ?", item.ProductID).
			Updates(map[string]interface{}{
				"stock":        gorm.Expr("stock + ?", item.Quantity),
				"version":      gorm.Expr("version + 1"),
				"is_available": gorm.Expr("CASE WHEN stock <= 0 THEN true ELSE is_available END"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, result.Error)
		}
	}
	return nil
}
