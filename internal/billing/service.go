package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v76"

	"github.com/powerofaum/payments/config"
	apperrors "github.com/powerofaum/payments/internal/errors"
	"github.com/powerofaum/payments/internal/logger"
	"github.com/powerofaum/payments/internal/metrics"
	"github.com/powerofaum/payments/internal/models"
	"github.com/powerofaum/payments/internal/reporting"
	"github.com/powerofaum/payments/internal/store"
)

// SessionRequest is the caller input for both session kinds
type SessionRequest struct {
	PurchaserID     string `json:"purchaserId"`
	AmountCents     int64  `json:"amountCents"`
	Currency        string `json:"currency"`
	VendorAccountID string `json:"vendorAccountId"`
}

// SessionResult describes a created checkout session
type SessionResult struct {
	SessionID                 string
	URL                       string
	ApplicationFeeAmountCents int64
}

// Service brokers checkout sessions through the payment processor and
// reconciles webhook events into the ledger.
type Service struct {
	cfg       config.StripeConfig
	store     store.Store
	processor Processor
}

// NewService creates a billing service
func NewService(cfg config.StripeConfig, st store.Store, processor Processor) *Service {
	return &Service{cfg: cfg, store: st, processor: processor}
}

func validateSessionRequest(req SessionRequest) error {
	switch {
	case req.PurchaserID == "":
		return apperrors.ValidationError{Field: "purchaserId", Message: "is required"}
	case req.Currency == "":
		return apperrors.ValidationError{Field: "currency", Message: "is required"}
	case req.VendorAccountID == "":
		return apperrors.ValidationError{Field: "vendorAccountId", Message: "is required"}
	case req.AmountCents <= 0:
		return apperrors.ValidationError{Field: "amountCents", Message: "must be greater than 0"}
	}
	return nil
}

// CreateSubscriptionSession opens a recurring monthly checkout session on
// the platform account, with the vendor as transfer destination so Stripe
// splits funds natively. Routing metadata is embedded for the webhook
// reconciler.
func (s *Service) CreateSubscriptionSession(ctx context.Context, req SessionRequest) (*SessionResult, error) {
	if err := validateSessionRequest(req); err != nil {
		return nil, err
	}
	if s.cfg.PlatformAccountID == "" {
		return nil, apperrors.ConfigurationError{Key: "STRIPE_PLATFORM_ACCOUNT_ID"}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(s.cfg.PublicBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.cfg.PublicBaseURL + "/cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("PowerOfAum Subscription"),
						Description: stripe.String(fmt.Sprintf("Subscription for user %s", req.PurchaserID)),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			ApplicationFeePercent: stripe.Float64(float64(reporting.CommissionRateBps) / 100),
			TransferData: &stripe.CheckoutSessionSubscriptionDataTransferDataParams{
				Destination: stripe.String(req.VendorAccountID),
			},
		},
	}
	params.AddMetadata(metaPurchaserID, req.PurchaserID)
	params.AddMetadata(metaVendorAccountID, req.VendorAccountID)
	params.SetStripeAccount(s.cfg.PlatformAccountID)

	sess, err := s.processor.CreateCheckoutSession(params)
	if err != nil {
		metrics.RecordCheckoutSession("subscription", "failed")
		return nil, apperrors.ProcessorError{Operation: "create subscription session", Err: err}
	}
	metrics.RecordCheckoutSession("subscription", "created")

	return &SessionResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// CreateAddonSession opens a one-time checkout session with the platform's
// commission withheld as an application fee, then registers a pending
// AddonRecord keyed by the session id. The record must exist before the
// completion webhook arrives or the reconciler has nothing to correlate.
func (s *Service) CreateAddonSession(ctx context.Context, req SessionRequest) (*SessionResult, error) {
	if err := validateSessionRequest(req); err != nil {
		return nil, err
	}
	if s.cfg.PlatformAccountID == "" {
		return nil, apperrors.ConfigurationError{Key: "STRIPE_PLATFORM_ACCOUNT_ID"}
	}

	fee := reporting.Commission(req.AmountCents)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(s.cfg.PublicBaseURL + "/addon-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.cfg.PublicBaseURL + "/addon-cancel"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Blessing PDF Add-On"),
						Description: stripe.String(fmt.Sprintf("Blessing PDF purchase for user %s", req.PurchaserID)),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(fee),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.VendorAccountID),
			},
		},
	}
	params.AddMetadata(metaPurchaserID, req.PurchaserID)
	params.AddMetadata(metaVendorAccountID, req.VendorAccountID)
	params.AddMetadata(metaPurchaseType, AddonPurchaseType)
	params.SetStripeAccount(s.cfg.PlatformAccountID)

	sess, err := s.processor.CreateCheckoutSession(params)
	if err != nil {
		metrics.RecordCheckoutSession("addon", "failed")
		return nil, apperrors.ProcessorError{Operation: "create addon session", Err: err}
	}
	metrics.RecordCheckoutSession("addon", "created")

	rec := models.AddonRecord{
		ID:              "addon_" + uuid.NewString(),
		PurchaserID:     req.PurchaserID,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		VendorAccountID: req.VendorAccountID,
		SessionID:       sess.ID,
		Status:          models.AddonPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.InsertAddon(ctx, rec); err != nil {
		return nil, apperrors.StoreError{Operation: "register pending addon", Err: err}
	}

	return &SessionResult{
		SessionID:                 sess.ID,
		URL:                       sess.URL,
		ApplicationFeeAmountCents: fee,
	}, nil
}

// VerifyEvent authenticates a raw webhook payload and decodes it
func (s *Service) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return s.processor.ConstructEvent(payload, sigHeader)
}

// RecordSubscription appends a SubscriptionRecord for a completed
// checkout. Absent metadata degrades to the "unknown" sentinel rather
// than failing; a replayed session id is absorbed silently since the
// first record already holds the truth. Ledger amounts are positive
// integers, so a session without a usable amount_total is acknowledged
// without a record; persisting it would violate the schema and turn one
// malformed event into an endless redelivery.
func (s *Service) RecordSubscription(ctx context.Context, ev SubscriptionCompleted) error {
	if ev.AmountCents <= 0 {
		logger.WithContext(ctx).Warn("Subscription completion without a positive amount, not recorded",
			"session_id", ev.SessionID,
			"amount_cents", ev.AmountCents,
		)
		metrics.RecordWebhookEvent("checkout.session.completed", "no_amount")
		return nil
	}

	purchaserID := ev.PurchaserID
	if purchaserID == "" {
		purchaserID = "unknown"
	}
	vendorID := ev.VendorAccountID
	if vendorID == "" {
		vendorID = "unknown"
	}

	rec := models.SubscriptionRecord{
		ID:              "sub_" + uuid.NewString(),
		PurchaserID:     purchaserID,
		AmountCents:     ev.AmountCents,
		Currency:        ev.Currency,
		VendorAccountID: vendorID,
		SessionID:       ev.SessionID,
		Status:          models.SubscriptionActive,
		CreatedAt:       time.Now().UTC(),
	}

	err := s.store.InsertSubscription(ctx, rec)
	if errors.Is(err, apperrors.ErrDuplicateSession) {
		logger.WithContext(ctx).Info("Subscription event replayed, ledger unchanged",
			"session_id", ev.SessionID,
		)
		metrics.RecordWebhookEvent("checkout.session.completed", "duplicate")
		return nil
	}
	if err != nil {
		return apperrors.StoreError{Operation: "record subscription", Err: err}
	}

	logger.WithContext(ctx).Info("Subscription completed",
		"session_id", ev.SessionID,
		"vendor_account_id", vendorID,
		"amount_cents", ev.AmountCents,
	)
	metrics.RecordWebhookEvent("checkout.session.completed", "applied")
	return nil
}

// CompleteAddon transitions the pending add-on for the session to
// completed and attaches the generated PDF URL. The bool result reports
// whether a matching record existed; a missing record is not an error,
// the caller decides how to respond. Redelivery lands on the same record
// and regenerates the same URL, so the transition is idempotent.
func (s *Service) CompleteAddon(ctx context.Context, ev AddonCompleted) (*models.AddonRecord, bool, error) {
	rec, err := s.store.GetAddonBySession(ctx, ev.SessionID)
	if err != nil {
		return nil, false, apperrors.StoreError{Operation: "find addon", Err: err}
	}
	if rec == nil {
		logger.WithContext(ctx).Warn("Add-on completion for unknown session", "session_id", ev.SessionID)
		metrics.RecordWebhookEvent("checkout.session.completed", "addon_not_found")
		return nil, false, nil
	}

	pdfURL := s.cfg.PublicBaseURL + "/blessing-pdf/" + rec.ID + ".pdf"
	if err := s.store.UpdateAddonStatus(ctx, ev.SessionID, models.AddonCompleted, pdfURL); err != nil {
		return nil, false, apperrors.StoreError{Operation: "complete addon", Err: err}
	}

	rec.Status = models.AddonCompleted
	rec.PDFURL = pdfURL

	logger.WithContext(ctx).Info("Add-on purchase completed",
		"session_id", ev.SessionID,
		"pdf_url", pdfURL,
	)
	metrics.RecordWebhookEvent("checkout.session.completed", "addon_completed")
	return rec, true, nil
}

// NotePaymentFailure surfaces a failed payment intent as an observability
// event; no ledger mutation is defined for failures.
func (s *Service) NotePaymentFailure(ctx context.Context, ev PaymentFailed) {
	logger.WithContext(ctx).Warn("Payment failed",
		"payment_intent_id", ev.IntentID,
		"reason", ev.Reason,
	)
	metrics.RecordWebhookEvent("payment_intent.payment_failed", "logged")
	metrics.RecordPaymentFailure(ev.Reason)
}
