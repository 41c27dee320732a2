package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/givebridge/givebridge/internal/gateway/domain"
)

const apiBase = "https://api.stripe.com"

type intentPayload struct {
	ID             string            `json:"id"`
	ClientSecret   string            `json:"client_secret"`
	Status         string            `json:"status"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Metadata       map[string]string `json:"metadata"`
	LatestCharge   struct {
		BalanceTransaction struct {
			Fee int64 `json:"fee"`
		} `json:"balance_transaction"`
	} `json:"latest_charge"`
}

type refundPayload struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}

type errorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Stripe REST API. It keeps no state beyond
// credentials; the donation workflow owns all persistence.
type Client struct {
	apiKey    string
	accountID string
	client    *http.Client
}

func NewClient(apiKey string, accountID string) *Client {
	return &Client{
		apiKey:    strings.TrimSpace(apiKey),
		accountID: strings.TrimSpace(accountID),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.Intent, error) {
	if err := req.Amount.Validate(); err != nil {
		return nil, err
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		return nil, domain.ErrInvalidRequest
	}

	values := url.Values{}
	values.Set("amount", strconv.FormatInt(req.Amount.MinorUnits(), 10))
	values.Set("currency", currency)
	values.Set("automatic_payment_methods[enabled]", "true")
	for key, value := range req.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		values.Set("metadata["+key+"]", value)
	}

	idempotencyKey := ""
	if ref := req.Metadata["reference"]; ref != "" {
		idempotencyKey = "intent:" + ref
	}

	payload, err := c.doIntentRequest(ctx, http.MethodPost, "/v1/payment_intents", values, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return toIntent(payload), nil
}

func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*domain.Intent, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, domain.ErrInvalidRequest
	}

	values := url.Values{}
	values.Set("expand[]", "latest_charge.balance_transaction")

	payload, err := c.doIntentRequest(ctx, http.MethodGet, "/v1/payment_intents/"+intentID+"?"+values.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	return toIntent(payload), nil
}

func (c *Client) CreateRefund(ctx context.Context, req domain.RefundRequest) (*domain.Refund, error) {
	intentID := strings.TrimSpace(req.IntentID)
	if intentID == "" {
		return nil, domain.ErrInvalidRequest
	}

	values := url.Values{}
	values.Set("payment_intent", intentID)
	if req.Amount > 0 {
		values.Set("amount", strconv.FormatInt(req.Amount, 10))
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/v1/refunds", values, "refund:"+intentID)
	if err != nil {
		return nil, err
	}

	var refund refundPayload
	if err := json.Unmarshal(body, &refund); err != nil {
		return nil, domain.ErrUnavailable
	}
	if refund.ID == "" {
		return nil, domain.ErrUnavailable
	}
	return &domain.Refund{
		ID:       refund.ID,
		IntentID: refund.PaymentIntent,
		Amount:   refund.Amount,
		Status:   refund.Status,
	}, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return domain.ErrInvalidRequest
	}
	_, err := c.doRequest(ctx, http.MethodDelete, "/v1/subscriptions/"+subscriptionID, nil, "")
	return err
}

func (c *Client) doIntentRequest(ctx context.Context, method, path string, values url.Values, idempotencyKey string) (*intentPayload, error) {
	body, err := c.doRequest(ctx, method, path, values, idempotencyKey)
	if err != nil {
		return nil, err
	}

	var payload intentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.ErrUnavailable
	}
	if payload.ID == "" {
		return nil, domain.ErrUnavailable
	}
	return &payload, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, values url.Values, idempotencyKey string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, domain.ErrInvalidConfig
	}

	bodyReader := strings.NewReader("")
	if values != nil && method != http.MethodGet {
		bodyReader = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil && method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.accountID != "" {
		req.Header.Set("Stripe-Account", c.accountID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.ErrUnavailable
	}
	defer resp.Body.Close()

	var buf []byte
	decoder := json.NewDecoder(resp.Body)
	var raw json.RawMessage
	if err := decoder.Decode(&raw); err == nil {
		buf = raw
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, domain.ErrUnavailable
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrIntentNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr errorPayload
		_ = json.Unmarshal(buf, &stripeErr)
		if stripeErr.Error.Type == "api_connection_error" || stripeErr.Error.Type == "api_error" {
			return nil, domain.ErrUnavailable
		}
		return nil, domain.ErrInvalidRequest
	}

	return buf, nil
}

func toIntent(payload *intentPayload) *domain.Intent {
	amount := payload.AmountReceived
	if amount <= 0 {
		amount = payload.Amount
	}
	return &domain.Intent{
		ID:           payload.ID,
		ClientSecret: payload.ClientSecret,
		Status:       strings.TrimSpace(payload.Status),
		Amount:       amount,
		Fee:          payload.LatestCharge.BalanceTransaction.Fee,
		Currency:     strings.ToUpper(strings.TrimSpace(payload.Currency)),
		Metadata:     payload.Metadata,
	}
}
