package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MyOrders returns the owner's orders with their items, newest first.
func (m *Manager) MyOrders(ctx context.Context, owner models.Owner) ([]models.Order, error) {
	if owner.IsZero() {
		return nil, apperr.MissingIdentity()
	}
	return m.find(owner.Scope(m.db.WithContext(ctx)))
}

// OrdersByUser returns a registered user's orders.
func (m *Manager) OrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	if userID == 0 {
		return nil, apperr.Validation("Invalid user id")
	}
	return m.find(m.db.WithContext(ctx).Where("user_id = ?", userID))
}

// AllOrders returns every order.
func (m *Manager) AllOrders(ctx context.Context) ([]models.Order, error) {
	return m.find(m.db.WithContext(ctx))
}

func (m *Manager) find(q *gorm.DB) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Order("created_at DESC, id DESC").Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// UpdateStatus sets the status of an order. actor names the operator for
// the audit trail.
func (m *Manager) UpdateStatus(ctx context.Context, id uint, status string, actor models.Owner) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return nil, apperr.Validation("Invalid status, expected one of pending, approved, completed, cancelled")
	}

	var order models.Order
	db := m.db.WithContext(ctx)
	if err := db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, apperr.Internal("Failed to load order", err)
	}

	previous := order.Status
	if err := db.Model(&order).Update("status", next).Error; err != nil {
		return nil, apperr.Internal("Failed to update order status", err)
	}
	order.Status = next

	m.logger.Info("Order status updated",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))

	m.record(order.ID, actor, "update_status", bson.M{
		"from": string(previous),
		"to":   string(next),
	})
	return &order, nil
}
