package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/givebridge/givebridge/internal/gateway/domain"
)

func signPayload(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerify(t *testing.T) {
	webhook, err := NewWebhook("whsec_test")
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	timestamp := "1700000000"
	signature := signPayload("whsec_test", timestamp, payload)

	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf("t=%s,v1=%s", timestamp, signature))

	if err := webhook.Verify(context.Background(), payload, headers); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestWebhookVerifyRejectsTamperedPayload(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")

	payload := []byte(`{"id":"evt_1"}`)
	signature := signPayload("whsec_test", "1700000000", payload)

	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf("t=1700000000,v1=%s", signature))

	tampered := []byte(`{"id":"evt_2"}`)
	if err := webhook.Verify(context.Background(), tampered, headers); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestWebhookVerifyRejectsMissingHeader(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")
	if err := webhook.Verify(context.Background(), []byte(`{}`), http.Header{}); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestWebhookParsePaymentSucceeded(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")

	payload := []byte(`{
		"id": "evt_100",
		"type": "payment_intent.succeeded",
		"created": 1700000000,
		"data": {"object": {
			"id": "pi_100",
			"amount": 5000,
			"amount_received": 5000,
			"currency": "usd",
			"metadata": {"campaign_id": "42"}
		}}
	}`)

	event, err := webhook.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Type != domain.EventPaymentSucceeded {
		t.Fatalf("expected %s, got %s", domain.EventPaymentSucceeded, event.Type)
	}
	if event.IntentID != "pi_100" {
		t.Fatalf("expected intent pi_100, got %s", event.IntentID)
	}
	if event.Amount != 5000 {
		t.Fatalf("expected amount 5000, got %d", event.Amount)
	}
	if event.Currency != "USD" {
		t.Fatalf("expected currency USD, got %s", event.Currency)
	}
	if event.Metadata["campaign_id"] != "42" {
		t.Fatalf("expected campaign metadata, got %v", event.Metadata)
	}
}

func TestWebhookParsePaymentFailed(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")

	payload := []byte(`{
		"id": "evt_101",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_101", "amount": 2500, "currency": "usd"}}
	}`)

	event, err := webhook.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Type != domain.EventPaymentFailed {
		t.Fatalf("expected %s, got %s", domain.EventPaymentFailed, event.Type)
	}
	if event.Amount != 2500 {
		t.Fatalf("expected amount 2500, got %d", event.Amount)
	}
}

func TestWebhookParseInvoicePaid(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")

	payload := []byte(`{
		"id": "evt_102",
		"type": "invoice.payment_succeeded",
		"data": {"object": {
			"id": "in_55",
			"payment_intent": "pi_55",
			"subscription": "sub_55",
			"amount_paid": 1500,
			"currency": "usd"
		}}
	}`)

	event, err := webhook.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Type != domain.EventInvoicePaid {
		t.Fatalf("expected %s, got %s", domain.EventInvoicePaid, event.Type)
	}
	if event.InvoiceID != "in_55" || event.SubscriptionID != "sub_55" {
		t.Fatalf("unexpected invoice/subscription: %s/%s", event.InvoiceID, event.SubscriptionID)
	}
	if event.Amount != 1500 {
		t.Fatalf("expected amount 1500, got %d", event.Amount)
	}
}

func TestWebhookParseSubscriptionDeleted(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")

	payload := []byte(`{
		"id": "evt_103",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_77", "metadata": {"donor_email": "a@b.org"}}}
	}`)

	event, err := webhook.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Type != domain.EventSubscriptionCanceled {
		t.Fatalf("expected %s, got %s", domain.EventSubscriptionCanceled, event.Type)
	}
	if event.SubscriptionID != "sub_77" {
		t.Fatalf("expected sub_77, got %s", event.SubscriptionID)
	}
}

func TestWebhookParseIgnoresUnknownType(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")

	payload := []byte(`{"id": "evt_104", "type": "customer.created", "data": {"object": {}}}`)
	if _, err := webhook.Parse(context.Background(), payload); !errors.Is(err, domain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
}

func TestWebhookParseRejectsMalformedPayload(t *testing.T) {
	webhook, _ := NewWebhook("whsec_test")
	if _, err := webhook.Parse(context.Background(), []byte("not-json")); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
