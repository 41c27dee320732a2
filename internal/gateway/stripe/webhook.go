package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/givebridge/givebridge/internal/gateway/domain"
)

// Webhook verifies and decodes Stripe event payloads.
type Webhook struct {
	secret string
}

func NewWebhook(secret string) (*Webhook, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, domain.ErrInvalidConfig
	}
	return &Webhook{secret: secret}, nil
}

func (w *Webhook) Provider() string { return "stripe" }

func (w *Webhook) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return domain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(w.secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return domain.ErrInvalidSignature
}

func (w *Webhook) Parse(ctx context.Context, payload []byte) (*domain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		return parseIntent(event, payload, domain.EventPaymentSucceeded)
	case "payment_intent.payment_failed":
		return parseIntent(event, payload, domain.EventPaymentFailed)
	case "invoice.payment_succeeded":
		return parseInvoice(event, payload)
	case "customer.subscription.deleted":
		return parseSubscription(event, payload)
	case "charge.refunded":
		return parseCharge(event, payload)
	default:
		return nil, domain.ErrEventIgnored
	}
}

type stripeEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type stripeIntent struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Created        int64             `json:"created"`
	Metadata       map[string]string `json:"metadata"`
}

type stripeInvoice struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Subscription  string `json:"subscription"`
	AmountPaid    int64  `json:"amount_paid"`
	Currency      string `json:"currency"`
	Created       int64  `json:"created"`
}

type stripeSubscription struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
	Created  int64             `json:"created"`
}

type stripeCharge struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	AmountRefunded int64  `json:"amount_refunded"`
	Currency       string `json:"currency"`
	Created        int64  `json:"created"`
}

func parseIntent(event stripeEvent, payload []byte, eventType string) (*domain.Event, error) {
	var intent stripeIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, domain.ErrInvalidEvent
	}

	amount := intent.AmountReceived
	if amount <= 0 {
		amount = intent.Amount
	}

	return &domain.Event{
		ID:         event.ID,
		Type:       eventType,
		IntentID:   intent.ID,
		Amount:     amount,
		Currency:   strings.ToUpper(strings.TrimSpace(intent.Currency)),
		Metadata:   intent.Metadata,
		OccurredAt: timestamp(intent.Created, event.Created),
		Raw:        payload,
	}, nil
}

func parseInvoice(event stripeEvent, payload []byte) (*domain.Event, error) {
	var invoice stripeInvoice
	if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(invoice.ID) == "" {
		return nil, domain.ErrInvalidEvent
	}

	return &domain.Event{
		ID:             event.ID,
		Type:           domain.EventInvoicePaid,
		IntentID:       strings.TrimSpace(invoice.PaymentIntent),
		InvoiceID:      invoice.ID,
		SubscriptionID: strings.TrimSpace(invoice.Subscription),
		Amount:         invoice.AmountPaid,
		Currency:       strings.ToUpper(strings.TrimSpace(invoice.Currency)),
		OccurredAt:     timestamp(invoice.Created, event.Created),
		Raw:            payload,
	}, nil
}

func parseSubscription(event stripeEvent, payload []byte) (*domain.Event, error) {
	var sub stripeSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(sub.ID) == "" {
		return nil, domain.ErrInvalidEvent
	}

	return &domain.Event{
		ID:             event.ID,
		Type:           domain.EventSubscriptionCanceled,
		SubscriptionID: sub.ID,
		Metadata:       sub.Metadata,
		OccurredAt:     timestamp(sub.Created, event.Created),
		Raw:            payload,
	}, nil
}

func parseCharge(event stripeEvent, payload []byte) (*domain.Event, error) {
	var charge stripeCharge
	if err := json.Unmarshal(event.Data.Object, &charge); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(charge.PaymentIntent) == "" {
		return nil, domain.ErrInvalidEvent
	}

	return &domain.Event{
		ID:         event.ID,
		Type:       domain.EventRefunded,
		IntentID:   charge.PaymentIntent,
		Amount:     charge.AmountRefunded,
		Currency:   strings.ToUpper(strings.TrimSpace(charge.Currency)),
		OccurredAt: timestamp(charge.Created, event.Created),
		Raw:        payload,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}
