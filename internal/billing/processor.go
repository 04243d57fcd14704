package billing

import (
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/powerofaum/payments/config"
	apperrors "github.com/powerofaum/payments/internal/errors"
)

// Processor is the narrow surface of the payment processor this service
// consumes: open a checkout session, verify and decode a webhook payload.
// Tests substitute a fake; production uses Stripe.
type Processor interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeProcessor implements Processor against the Stripe API
type StripeProcessor struct {
	webhookSecret string
}

// NewStripeProcessor configures the Stripe client and returns a processor
func NewStripeProcessor(cfg config.StripeConfig) *StripeProcessor {
	stripe.Key = cfg.SecretKey
	return &StripeProcessor{webhookSecret: cfg.WebhookSecret}
}

// CreateCheckoutSession opens a Stripe Checkout session
func (p *StripeProcessor) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

// ConstructEvent verifies the signature header against the signing secret
// and decodes the payload. A missing header is an authentication failure,
// the same as a bad signature, so the caller responds non-2xx and the
// processor redelivers. The event's API version is not checked: endpoints
// pinned to a version other than the SDK's still deliver valid events,
// and the reconciler only reads fields stable across versions.
func (p *StripeProcessor) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if sigHeader == "" {
		return stripe.Event{}, apperrors.AuthenticationError{Err: apperrors.ErrMissingSignature}
	}
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, apperrors.AuthenticationError{Err: err}
	}
	return event, nil
}
