// Package payments bridges orders to an external payment processor.
package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StatusSucceeded is the processor status of a completed payment.
const StatusSucceeded = "succeeded"

// IntentRequest asks the processor for a payment handle.
type IntentRequest struct {
	OrderID  uuid.UUID
	Amount   int64
	Currency string
	// IdempotencyKey is shared by every attempt of one logical request.
	IdempotencyKey string
}

// Intent is the processor's view of a pending or completed charge.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	// OrderID is the order recorded in the intent metadata, if any.
	OrderID string
}

// Processor creates and inspects payment intents.
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// MockProcessor keeps intents in memory. It is used when no processor key is
// configured and in tests.
type MockProcessor struct {
	// DefaultStatus is reported for intents the mock never created.
	DefaultStatus string

	mu       sync.Mutex
	intents  map[string]*Intent
	byKey    map[string]string
	failures []error
	calls    int
}

// NewMockProcessor returns a mock whose newly created intents start in
// requires_payment_method and whose unknown intents report defaultStatus.
func NewMockProcessor(defaultStatus string) *MockProcessor {
	return &MockProcessor{DefaultStatus: defaultStatus, intents: map[string]*Intent{}, byKey: map[string]string{}}
}

// FailWith queues errors returned by the next calls, one per call.
func (p *MockProcessor) FailWith(errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, errs...)
}

// SetStatus overrides the status of an intent, creating it if necessary.
func (p *MockProcessor) SetStatus(id, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in, ok := p.intents[id]
	if !ok {
		in = &Intent{ID: id}
		p.intents[id] = in
	}
	in.Status = status
}

// Intents returns the number of distinct intents created.
func (p *MockProcessor) Intents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.intents)
}

// Calls returns the number of processor calls made so far.
func (p *MockProcessor) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.next(ctx); err != nil {
		return nil, err
	}

	if id, ok := p.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		out := *p.intents[id]
		return &out, nil
	}

	id := "pi_mock_" + uuid.NewString()
	in := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString()[:8],
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       "requires_payment_method",
		OrderID:      req.OrderID.String(),
	}
	p.intents[id] = in
	if req.IdempotencyKey != "" {
		p.byKey[req.IdempotencyKey] = id
	}

	out := *in
	return &out, nil
}

func (p *MockProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.next(ctx); err != nil {
		return nil, err
	}

	in, ok := p.intents[id]
	if !ok {
		return &Intent{ID: id, Status: p.DefaultStatus}, nil
	}
	out := *in
	return &out, nil
}

// next must be called with mu held.
func (p *MockProcessor) next(ctx context.Context) error {
	p.calls++
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mock processor: %w", err)
	}
	if len(p.failures) == 0 {
		return nil
	}
	err := p.failures[0]
	p.failures = p.failures[1:]
	return err
}
