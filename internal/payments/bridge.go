package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/logging"
	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/orders"
)

// Defaults for processor calls.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxAttempts   = 3
	DefaultRetryInterval = 200 * time.Millisecond
)

// IntentResponse is returned to the client after creating an intent.
type IntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// Bridge links orders to processor intents.
type Bridge struct {
	Orders    *orders.Manager
	Processor Processor
	Currency  currency.Unit
	// Timeout bounds each processor call.
	Timeout time.Duration
	// MaxAttempts bounds processor calls including the first one.
	MaxAttempts   int
	RetryInterval time.Duration
	Logger        *slog.Logger
}

// CreateIntent asks the processor for a payment handle covering the order
// total in minor currency units.
func (b *Bridge) CreateIntent(ctx context.Context, orderID string) (*IntentResponse, error) {
	o, err := b.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	req := IntentRequest{
		OrderID:        o.ID,
		Amount:         model.MinorUnits(o.Total(), b.currency()),
		Currency:       strings.ToLower(b.currency().String()),
		IdempotencyKey: uuid.NewString(),
	}

	in, err := b.call(ctx, "create_intent", func(ctx context.Context) (*Intent, error) {
		return b.Processor.CreateIntent(ctx, req)
	})
	if err != nil {
		return nil, apperr.Upstream("Error creating payment intent", err)
	}

	b.logger(ctx).Info("payment intent created", "order_id", o.ID, "intent_id", in.ID, "amount", req.Amount, "currency", req.Currency)
	return &IntentResponse{
		ClientSecret:    in.ClientSecret,
		PaymentIntentID: in.ID,
		Amount:          req.Amount,
		Currency:        req.Currency,
	}, nil
}

// Confirm checks the intent with the processor and, if it succeeded, moves
// the order to processing. The updated order is returned.
func (b *Bridge) Confirm(ctx context.Context, orderID, intentID string) (*model.Order, error) {
	o, err := b.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(intentID) == "" {
		return nil, apperr.Validation("paymentIntentId", "Payment intent ID is required")
	}

	in, err := b.call(ctx, "get_intent", func(ctx context.Context) (*Intent, error) {
		return b.Processor.GetIntent(ctx, intentID)
	})
	if err != nil {
		return nil, apperr.Upstream("Error confirming payment", err)
	}

	if in.OrderID != "" && in.OrderID != o.ID.String() {
		return nil, apperr.Validation("paymentIntentId", "Payment intent does not belong to this order")
	}
	if in.Status != StatusSucceeded {
		b.logger(ctx).Warn("payment not successful", "order_id", o.ID, "intent_id", intentID, "intent_status", in.Status)
		return nil, apperr.Validation("paymentIntentId", "Payment not successful")
	}

	return b.Orders.SetStatus(ctx, o.ID, model.OrderStatusProcessing, "payment")
}

// Status returns the order's locally stored status. The processor is not
// consulted.
func (b *Bridge) Status(ctx context.Context, orderID string) (model.OrderStatus, error) {
	o, err := b.loadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return o.Status, nil
}

// loadOrder reports malformed and unknown ids alike as NotFound.
func (b *Bridge) loadOrder(ctx context.Context, orderID string) (*model.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return nil, apperr.NotFound("Order not found")
	}
	return b.Orders.Load(ctx, id)
}

// call runs fn under a per-attempt timeout, retrying transient failures with
// exponential backoff.
func (b *Bridge) call(ctx context.Context, op string, fn func(context.Context) (*Intent, error)) (*Intent, error) {
	attempts := b.MaxAttempts
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = b.RetryInterval
	if exp.InitialInterval <= 0 {
		exp.InitialInterval = DefaultRetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	var result *Intent
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		in, err := fn(callCtx)
		if err != nil {
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = in
		return nil
	}, policy, func(err error, wait time.Duration) {
		b.logger(ctx).Warn("payment processor call failed, retrying", "op", op, "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("%s after %d attempt(s): %w", op, attempt, err)
	}
	return result, nil
}

func (b *Bridge) currency() currency.Unit {
	if b.Currency == (currency.Unit{}) {
		return currency.USD
	}
	return b.Currency
}

func (b *Bridge) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, b.Logger)
}
