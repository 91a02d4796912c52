// Package events publishes order lifecycle messages.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicestory/spicestory/internal/model"
)

// Routing keys.
const (
	KeyOrderCreated       = "order.created"
	KeyOrderStatusChanged = "order.status_changed"
)

// OrderCreated is published after an order is persisted.
type OrderCreated struct {
	OrderID   uuid.UUID       `json:"orderId"`
	UserID    uuid.UUID       `json:"userId"`
	Items     int             `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// StatusChanged is published after an order's status is written.
type StatusChanged struct {
	OrderID   uuid.UUID         `json:"orderId"`
	OldStatus model.OrderStatus `json:"oldStatus"`
	NewStatus model.OrderStatus `json:"newStatus"`
	ChangedBy string            `json:"changedBy"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewOrderCreated builds the message for a freshly created order.
func NewOrderCreated(o *model.Order) OrderCreated {
	return OrderCreated{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Items:     len(o.Items),
		Total:     o.Total(),
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusChanged builds the message for a status write.
func NewStatusChanged(orderID uuid.UUID, oldStatus, newStatus model.OrderStatus, changedBy string) StatusChanged {
	return StatusChanged{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers messages under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg any) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
