package orders

import (
	"fmt"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/model"
)

// TransitionPolicy decides whether an order may move between two statuses.
type TransitionPolicy interface {
	Allow(from, to model.OrderStatus) error
}

// Permissive allows any status to be set from any other.
type Permissive struct{}

func (Permissive) Allow(from, to model.OrderStatus) error { return nil }

// Strict enforces the forward lifecycle. Cancellation is allowed from any
// non-terminal status and terminal statuses accept no change.
type Strict struct{}

var next = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:    model.OrderStatusProcessing,
	model.OrderStatusProcessing: model.OrderStatusShipped,
	model.OrderStatusShipped:    model.OrderStatusDelivered,
}

func (Strict) Allow(from, to model.OrderStatus) error {
	switch {
	case from == to:
		return nil
	case from.Terminal():
		return apperr.Validation("status", fmt.Sprintf("Order is already %s", from))
	case to == model.OrderStatusCancelled, next[from] == to:
		return nil
	}
	return apperr.Validation("status", fmt.Sprintf("Cannot change order status from %s to %s", from, to))
}
