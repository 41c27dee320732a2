package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Intent statuses as reported by the gateway. Only StatusSucceeded may
// result in a persisted donation; everything else is surfaced verbatim
// in declined responses.
const (
	StatusSucceeded      = "succeeded"
	StatusProcessing     = "processing"
	StatusRequiresAction = "requires_action"
	StatusCanceled       = "canceled"
)

// Intent is the gateway-side handle for one prospective charge.
// Amounts are minor currency units as reported by the gateway.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Fee          int64
	Currency     string
	Metadata     map[string]string
}

type CreateIntentRequest struct {
	Amount   MajorAmount
	Currency string
	Metadata map[string]string
}

type Refund struct {
	ID       string
	IntentID string
	Amount   int64
	Status   string
}

type RefundRequest struct {
	IntentID string
	// Amount in minor units; zero refunds the full charge.
	Amount int64
}

// Gateway wraps the payment processor. Implementations hold no state
// beyond credentials; every call is a bounded round trip.
type Gateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// Canonical webhook event kinds.
const (
	EventPaymentSucceeded     = "payment_succeeded"
	EventPaymentFailed        = "payment_failed"
	EventInvoicePaid          = "invoice_paid"
	EventSubscriptionCanceled = "subscription_canceled"
	EventRefunded             = "refunded"
)

// Event is a gateway webhook notification parsed into provider-neutral form.
type Event struct {
	ID             string
	Type           string
	IntentID       string
	InvoiceID      string
	SubscriptionID string
	Amount         int64
	Currency       string
	Metadata       map[string]string
	OccurredAt     time.Time
	Raw            []byte
}

// WebhookAdapter authenticates and decodes inbound gateway events.
type WebhookAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
}

var (
	ErrUnavailable      = errors.New("gateway_unavailable")
	ErrInvalidRequest   = errors.New("gateway_invalid_request")
	ErrIntentNotFound   = errors.New("gateway_intent_not_found")
	ErrInvalidConfig    = errors.New("gateway_invalid_config")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
)
