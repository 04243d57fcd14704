package billing

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
)

// AddonPurchaseType is the metadata sentinel marking a checkout session
// as a one-time add-on purchase rather than a subscription.
const AddonPurchaseType = "addon_purchase"

// Metadata keys embedded at session creation and read back from webhooks.
const (
	metaPurchaserID     = "purchaser_id"
	metaVendorAccountID = "vendor_account_id"
	metaPurchaseType    = "purchase_type"
)

// Event is a verified webhook payload decoded into a closed set of
// variants, so reconciliation can switch exhaustively instead of picking
// fields off a generic payload.
type Event interface {
	isEvent()
}

// SubscriptionCompleted is a completed checkout for a recurring subscription
type SubscriptionCompleted struct {
	SessionID       string
	PurchaserID     string
	VendorAccountID string
	AmountCents     int64
	Currency        string
}

// AddonCompleted is a completed checkout for a one-time add-on purchase
type AddonCompleted struct {
	SessionID string
}

// PaymentFailed is a failed payment intent; observability only, no ledger mutation
type PaymentFailed struct {
	IntentID string
	Reason   string
}

// Unhandled is any event type this service does not act on. It is
// acknowledged so the processor does not grow a retry backlog.
type Unhandled struct {
	Type string
}

func (SubscriptionCompleted) isEvent() {}
func (AddonCompleted) isEvent()        {}
func (PaymentFailed) isEvent()         {}
func (Unhandled) isEvent()             {}

// Classify decodes a verified Stripe event into one of the variants above
func Classify(event stripe.Event) (Event, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}

		if sess.Metadata[metaPurchaseType] == AddonPurchaseType {
			return AddonCompleted{SessionID: sess.ID}, nil
		}

		currency := string(sess.Currency)
		if currency == "" {
			currency = "usd"
		}
		return SubscriptionCompleted{
			SessionID:       sess.ID,
			PurchaserID:     sess.Metadata[metaPurchaserID],
			VendorAccountID: sess.Metadata[metaVendorAccountID],
			AmountCents:     sess.AmountTotal,
			Currency:        currency,
		}, nil

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}

		reason := "unknown"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			reason = intent.LastPaymentError.Msg
		}
		return PaymentFailed{IntentID: intent.ID, Reason: reason}, nil

	default:
		return Unhandled{Type: string(event.Type)}, nil
	}
}
