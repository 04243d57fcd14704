package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/powerofaum/payments/config"
	"github.com/powerofaum/payments/internal/api"
	"github.com/powerofaum/payments/internal/billing"
	"github.com/powerofaum/payments/internal/reporting"
	"github.com/powerofaum/payments/internal/store"
)

const flowWebhookSecret = "whsec_flow_test"

// cannedProcessor stands in for Stripe: checkout sessions come back with a
// fixed id, webhook signatures are verified for real.
type cannedProcessor struct {
	nextID   string
	verifier *billing.StripeProcessor
}

func (p *cannedProcessor) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: p.nextID, URL: "https://checkout.stripe.com/pay/" + p.nextID}, nil
}

func (p *cannedProcessor) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return p.verifier.ConstructEvent(payload, sigHeader)
}

func newFlowRouter(sessionID string) *chi.Mux {
	cfg := config.StripeConfig{
		SecretKey:         "sk_test_flow",
		WebhookSecret:     flowWebhookSecret,
		PlatformAccountID: "acct_platform",
		PublicBaseURL:     "https://pay.powerofaum.example",
	}
	st := store.NewInMemoryStore()
	proc := &cannedProcessor{nextID: sessionID, verifier: billing.NewStripeProcessor(cfg)}
	bs := billing.NewService(cfg, st, proc)
	h := api.NewHandler(st, bs, reporting.New(st), nil, "test", "test-time", "test-commit")
	r := chi.NewRouter()
	h.RegisterRoutes(r, nil)
	return r
}

func postJSON(t *testing.T, r *chi.Mux, path, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST %s: %d: %s", path, rec.Code, rec.Body.String())
	}
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return out
}

// A vendor sells one 199-cent blessing PDF: the session is opened, the
// completion webhook lands, and the vendor's add-on totals reflect the
// sale with the platform's 20% share.
func TestAddonPurchaseFlow(t *testing.T) {
	r := newFlowRouter("cs_flow_addon")

	created := postJSON(t, r, "/api/create-addon-session",
		`{"purchaserId":"user_777","amountCents":199,"currency":"usd","vendorAccountId":"acct_guru"}`)
	if created["sessionId"] != "cs_flow_addon" {
		t.Fatalf("sessionId: got %v", created["sessionId"])
	}
	if fee := created["applicationFeeAmountCents"].(float64); int64(fee) != 39 {
		t.Fatalf("applicationFeeAmountCents: got %v", fee)
	}

	payload := []byte(`{
		"id": "evt_flow_addon",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_flow_addon",
			"amount_total": 199,
			"currency": "usd",
			"metadata": {"purchaser_id": "user_777", "vendor_account_id": "acct_guru", "purchase_type": "addon_purchase"}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    flowWebhookSecret,
		Timestamp: time.Now(),
	})

	req := httptest.NewRequest("POST", "/api/addon-webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("addon webhook: %d: %s", rec.Code, rec.Body.String())
	}
	var hook map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &hook); err != nil {
		t.Fatalf("decode webhook response: %v", err)
	}
	if hook["message"] != "Blessing PDF purchased" {
		t.Fatalf("webhook message: got %v", hook["message"])
	}

	statusReq := httptest.NewRequest("GET", "/api/addon-purchase-status?vendorAccountId=acct_guru", nil)
	statusRec := httptest.NewRecorder()
	r.ServeHTTP(statusRec, statusReq)
	if statusRec.Code != http.StatusOK {
		t.Fatalf("status: %d", statusRec.Code)
	}
	var totals map[string]interface{}
	if err := json.Unmarshal(statusRec.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if totals["totalAddOnSales"].(float64) != 1 ||
		totals["totalAddOnRevenueCents"].(float64) != 199 ||
		totals["totalAddOnCommissionCents"].(float64) != 39 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

// A completed subscription checkout lands in the vendor's sales totals
// exactly once, no matter how often the event is redelivered.
func TestSubscriptionFlow(t *testing.T) {
	r := newFlowRouter("cs_flow_sub")

	created := postJSON(t, r, "/api/create-subscription-session",
		`{"purchaserId":"user_888","amountCents":50000,"currency":"usd","vendorAccountId":"acct_guru"}`)
	if created["sessionId"] != "cs_flow_sub" {
		t.Fatalf("sessionId: got %v", created["sessionId"])
	}

	payload := []byte(`{
		"id": "evt_flow_sub",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_flow_sub",
			"amount_total": 50000,
			"currency": "usd",
			"metadata": {"purchaser_id": "user_888", "vendor_account_id": "acct_guru"}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    flowWebhookSecret,
		Timestamp: time.Now(),
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/webhook-stripe", bytes.NewReader(signed.Payload))
		req.Header.Set("Stripe-Signature", signed.Header)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	statusReq := httptest.NewRequest("GET", "/api/vendor-sales-status?vendorAccountId=acct_guru", nil)
	statusRec := httptest.NewRecorder()
	r.ServeHTTP(statusRec, statusReq)
	var totals map[string]interface{}
	if err := json.Unmarshal(statusRec.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if totals["totalSubscriptions"].(float64) != 1 ||
		totals["totalRevenueCents"].(float64) != 50000 ||
		totals["totalCommissionCents"].(float64) != 10000 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}
