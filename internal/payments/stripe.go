package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProcessor creates payment intents through the Stripe API.
type StripeProcessor struct {
	api *client.API
}

// NewStripeProcessor returns a processor using secretKey. A nil backends
// value uses the default Stripe endpoints with client-side network retries
// disabled; the Bridge retries calls itself.
func NewStripeProcessor(secretKey string, backends *stripe.Backends) *StripeProcessor {
	if backends == nil {
		config := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
		backends = &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, config),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, config),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, config),
		}
	}
	return &StripeProcessor{api: client.New(secretKey, backends)}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("orderId", req.OrderID.String())
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating stripe payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (p *StripeProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieving stripe payment intent %s: %w", id, err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		OrderID:      pi.Metadata["orderId"],
	}
}

// isPermanent reports whether retrying err cannot help. Stripe client errors
// other than rate limiting are permanent.
func isPermanent(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 &&
			se.HTTPStatusCode != http.StatusTooManyRequests
	}
	return errors.Is(err, context.Canceled)
}
