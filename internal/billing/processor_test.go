package billing

import (
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/powerofaum/payments/config"
)

func signedPayload(t *testing.T, payload []byte, secret string) ([]byte, string) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestStripeProcessorAcceptsSignedEvent(t *testing.T) {
	p := NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_proc"})

	payload := []byte(`{"id":"evt_proc_1","type":"checkout.session.completed","data":{"object":{"id":"cs_proc_1"}}}`)
	body, sig := signedPayload(t, payload, "whsec_proc")

	event, err := p.ConstructEvent(body, sig)
	if err != nil {
		t.Fatalf("valid signed event rejected: %v", err)
	}
	if event.ID != "evt_proc_1" {
		t.Errorf("event id: got %s", event.ID)
	}
	if string(event.Type) != "checkout.session.completed" {
		t.Errorf("event type: got %s", event.Type)
	}
}

// an endpoint pinned to a different API version still delivers valid
// events; acceptance depends on the signature alone
func TestStripeProcessorAcceptsOtherAPIVersions(t *testing.T) {
	p := NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_proc"})

	payload := []byte(`{"id":"evt_proc_2","api_version":"2019-09-09","type":"checkout.session.completed","data":{"object":{"id":"cs_proc_2"}}}`)
	body, sig := signedPayload(t, payload, "whsec_proc")

	event, err := p.ConstructEvent(body, sig)
	if err != nil {
		t.Fatalf("event with pinned API version rejected: %v", err)
	}
	if event.ID != "evt_proc_2" {
		t.Errorf("event id: got %s", event.ID)
	}
}

func TestStripeProcessorRejectsWrongSecret(t *testing.T) {
	p := NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_proc"})

	payload := []byte(`{"id":"evt_proc_3","type":"checkout.session.completed","data":{"object":{}}}`)
	body, sig := signedPayload(t, payload, "whsec_other")

	if _, err := p.ConstructEvent(body, sig); err == nil {
		t.Fatal("expected signature failure for wrong secret")
	}
}
