package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound              = errors.New("donation_not_found")
	ErrInvalidID             = errors.New("invalid_donation_id")
	ErrInvalidIntent         = errors.New("invalid_donation_intent")
	ErrInvalidEmail          = errors.New("invalid_donor_contact")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrPaymentDeclined       = errors.New("payment_declined")
	ErrPaymentIncomplete     = errors.New("payment_incomplete")
	ErrPaymentRequiresAction = errors.New("payment_requires_action")
	ErrInvalidTransition     = errors.New("invalid_status_transition")
	ErrNotRefundable         = errors.New("donation_not_refundable")
)

type Service interface {
	// CreateIntent opens a payment with the gateway and hands the
	// client secret back so the donor can complete it.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (IntentResponse, error)

	// Confirm settles a completed payment into the record store:
	// gateway-verified amounts, campaign totals and donor stats move
	// in one transaction. Replays return the stored donation.
	Confirm(ctx context.Context, req ConfirmRequest) (Donation, error)

	GetByID(ctx context.Context, id string) (Donation, error)
	Recent(ctx context.Context, limit int) ([]Donation, error)
	Refund(ctx context.Context, id string, req RefundRequest) (Donation, error)
}

type CreateIntentRequest struct {
	CampaignID string  `json:"campaign_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	DonorEmail string  `json:"donor_email"`
	DonorName  string  `json:"donor_name"`
	Anonymous  bool    `json:"anonymous"`
	Message    string  `json:"message"`
}

type IntentResponse struct {
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	CampaignID   string  `json:"campaign_id"`
}

type ConfirmRequest struct {
	IntentID   string `json:"intent_id"`
	CampaignID string `json:"campaign_id"`
	DonorEmail string `json:"donor_email"`
	DonorName  string `json:"donor_name"`
	Anonymous  bool   `json:"anonymous"`
	Message    string `json:"message"`
}

type RefundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}
