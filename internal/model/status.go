package model

import (
	"errors"
	"slices"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// remember to add new statuses to orderStatuses
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ErrInvalidStatus is returned for strings outside the status domain.
var ErrInvalidStatus = errors.New("invalid order status")

// ToOrderStatus parses s into one of the five status literals.
func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if slices.Contains(orderStatuses, status) {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further transition is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
