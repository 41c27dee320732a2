package webhook_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
	campaignrepo "github.com/givebridge/givebridge/internal/campaign/repository"
	"github.com/givebridge/givebridge/internal/clock"
	"github.com/givebridge/givebridge/internal/config"
	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
	donationrepo "github.com/givebridge/givebridge/internal/donation/repository"
	donationservice "github.com/givebridge/givebridge/internal/donation/service"
	donationwebhook "github.com/givebridge/givebridge/internal/donation/webhook"
	donorrepo "github.com/givebridge/givebridge/internal/donor/repository"
	gatewaydomain "github.com/givebridge/givebridge/internal/gateway/domain"
	gatewaystripe "github.com/givebridge/givebridge/internal/gateway/stripe"
)

const webhookSecret = "whsec_test"

type stubGateway struct {
	intents map[string]*gatewaydomain.Intent
}

func (g *stubGateway) CreateIntent(ctx context.Context, req gatewaydomain.CreateIntentRequest) (*gatewaydomain.Intent, error) {
	return nil, gatewaydomain.ErrInvalidRequest
}

func (g *stubGateway) RetrieveIntent(ctx context.Context, intentID string) (*gatewaydomain.Intent, error) {
	intent, ok := g.intents[intentID]
	if !ok {
		return nil, gatewaydomain.ErrIntentNotFound
	}
	return intent, nil
}

func (g *stubGateway) CreateRefund(ctx context.Context, req gatewaydomain.RefundRequest) (*gatewaydomain.Refund, error) {
	return &gatewaydomain.Refund{ID: "re_1", IntentID: req.IntentID, Amount: req.Amount}, nil
}

func (g *stubGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_wh_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE campaigns (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'draft',
			currency TEXT NOT NULL,
			goal_amount INTEGER NOT NULL,
			raised_amount INTEGER NOT NULL DEFAULT 0,
			donor_count INTEGER NOT NULL DEFAULT 0,
			metadata TEXT,
			starts_at DATETIME,
			ends_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE donors (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			segment TEXT NOT NULL DEFAULT 'first_time',
			donation_count INTEGER NOT NULL DEFAULT 0,
			total_donated INTEGER NOT NULL DEFAULT 0,
			average_donation INTEGER NOT NULL DEFAULT 0,
			largest_donation INTEGER NOT NULL DEFAULT 0,
			recurring INTEGER NOT NULL DEFAULT 0,
			first_donated_at DATETIME,
			last_donated_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE donations (
			id INTEGER PRIMARY KEY,
			intent_id TEXT NOT NULL UNIQUE,
			invoice_id TEXT,
			subscription_id TEXT,
			campaign_id INTEGER NOT NULL,
			donor_id INTEGER,
			donor_email TEXT,
			donor_name TEXT,
			amount INTEGER NOT NULL,
			fee INTEGER NOT NULL DEFAULT 0,
			net_amount INTEGER NOT NULL DEFAULT 0,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'direct',
			anonymous INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			failure_reason TEXT,
			metadata TEXT,
			settled_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX idx_donations_invoice_id ON donations (invoice_id) WHERE invoice_id IS NOT NULL`,
		`CREATE TABLE webhook_events (
			id INTEGER PRIMARY KEY,
			provider TEXT NOT NULL,
			event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT,
			received_at DATETIME NOT NULL,
			processed_at DATETIME,
			UNIQUE (provider, event_id)
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newWebhookService(t *testing.T, db *gorm.DB, gateway gatewaydomain.Gateway) *donationwebhook.Service {
	t.Helper()

	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	donationSvc := donationservice.New(donationservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        clock.NewSystemClock(),
		GenID:        node,
		Gateway:      gateway,
		Repo:         donationrepo.Provide(),
		CampaignRepo: campaignrepo.Provide(),
		DonorRepo:    donorrepo.Provide(),
		Settings:     config.NewStaticSettings(config.DefaultSettings()),
	})

	adapter, err := gatewaystripe.NewWebhook(webhookSecret)
	if err != nil {
		t.Fatalf("new webhook adapter: %v", err)
	}

	return donationwebhook.NewService(donationwebhook.Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       clock.NewSystemClock(),
		GenID:       node,
		Adapter:     adapter,
		DonationSvc: donationSvc,
	})
}

func seedCampaign(t *testing.T, db *gorm.DB, id snowflake.ID) {
	t.Helper()
	now := time.Now().UTC()
	err := db.Exec(
		`INSERT INTO campaigns (id, name, slug, status, currency, goal_amount, raised_amount, donor_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'USD', 10000000, 0, 0, ?, ?)`,
		id, "Clean Water", fmt.Sprintf("clean-water-%d", id), campaigndomain.StatusActive, now, now,
	).Error
	if err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
}

func signedHeader(payload []byte, at int64) http.Header {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", at, payload)))
	signature := hex.EncodeToString(mac.Sum(nil))

	headers := http.Header{}
	headers.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", at, signature))
	return headers
}

func assertCount(t *testing.T, db *gorm.DB, query string, want int64) {
	t.Helper()
	var got int64
	if err := db.Raw(query).Scan(&got).Error; err != nil {
		t.Fatalf("count query: %v", err)
	}
	if got != want {
		t.Fatalf("expected %d rows for %q, got %d", want, query, got)
	}
}

func TestIngestSettlesDonationOnce(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, _ := snowflake.NewNode(12)
	campaignID := node.Generate()
	seedCampaign(t, db, campaignID)

	gateway := &stubGateway{intents: map[string]*gatewaydomain.Intent{
		"pi_1": {
			ID:       "pi_1",
			Status:   gatewaydomain.StatusSucceeded,
			Amount:   2_000,
			Currency: "USD",
			Metadata: map[string]string{
				"campaign_id": campaignID.String(),
				"donor_email": "ada@example.org",
			},
		},
	}}
	svc := newWebhookService(t, db, gateway)

	now := time.Now().UTC()
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"payment_intent.succeeded","created":%d,"data":{"object":{"id":"pi_1","amount":2000,"amount_received":2000,"currency":"usd","created":%d,"metadata":{"campaign_id":"%s"}}}}`,
		now.Unix(), now.Unix(), campaignID.String(),
	))
	headers := signedHeader(payload, now.Unix())

	if err := svc.Ingest(ctx, "stripe", payload, headers); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.Ingest(ctx, "stripe", payload, headers); err != nil {
		t.Fatalf("duplicate delivery: %v", err)
	}

	assertCount(t, db, `SELECT COUNT(1) FROM webhook_events`, 1)
	assertCount(t, db, `SELECT COUNT(1) FROM donations`, 1)

	var raised int64
	if err := db.Raw(`SELECT raised_amount FROM campaigns WHERE id = ?`, campaignID).Scan(&raised).Error; err != nil {
		t.Fatalf("scan raised: %v", err)
	}
	if raised != 2_000 {
		t.Fatalf("expected raised applied once, got %d", raised)
	}

	assertCount(t, db, `SELECT COUNT(1) FROM webhook_events WHERE processed_at IS NOT NULL`, 1)
}

func TestIngestRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newWebhookService(t, db, &stubGateway{intents: map[string]*gatewaydomain.Intent{}})

	payload := []byte(`{"id":"evt_2","type":"payment_intent.succeeded","data":{"object":{"id":"pi_2"}}}`)
	headers := http.Header{}
	headers.Set("Stripe-Signature", "t=1700000000,v1=deadbeef")

	err := svc.Ingest(ctx, "stripe", payload, headers)
	if !errors.Is(err, gatewaydomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	assertCount(t, db, `SELECT COUNT(1) FROM webhook_events`, 0)
}

func TestIngestAcksUnknownEventType(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newWebhookService(t, db, &stubGateway{intents: map[string]*gatewaydomain.Intent{}})

	now := time.Now().UTC()
	payload := []byte(`{"id":"evt_3","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)
	headers := signedHeader(payload, now.Unix())

	if err := svc.Ingest(ctx, "stripe", payload, headers); err != nil {
		t.Fatalf("expected unknown event to be acked, got %v", err)
	}
	assertCount(t, db, `SELECT COUNT(1) FROM donations`, 0)
}

func TestIngestFailureMarksDonationFailed(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, _ := snowflake.NewNode(12)
	campaignID := node.Generate()
	seedCampaign(t, db, campaignID)
	svc := newWebhookService(t, db, &stubGateway{intents: map[string]*gatewaydomain.Intent{}})

	now := time.Now().UTC()
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_4","type":"payment_intent.payment_failed","created":%d,"data":{"object":{"id":"pi_4","amount":3000,"currency":"usd","metadata":{"campaign_id":"%s","donor_email":"ada@example.org"}}}}`,
		now.Unix(), campaignID.String(),
	))
	headers := signedHeader(payload, now.Unix())

	if err := svc.Ingest(ctx, "stripe", payload, headers); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	var status string
	if err := db.Raw(`SELECT status FROM donations WHERE intent_id = 'pi_4'`).Scan(&status).Error; err != nil {
		t.Fatalf("scan status: %v", err)
	}
	if status != donationdomain.StatusFailed {
		t.Fatalf("expected failed, got %s", status)
	}

	var raised int64
	if err := db.Raw(`SELECT raised_amount FROM campaigns WHERE id = ?`, campaignID).Scan(&raised).Error; err != nil {
		t.Fatalf("scan raised: %v", err)
	}
	if raised != 0 {
		t.Fatalf("failed payment must not move totals, got %d", raised)
	}
}

func TestIngestRecurringInvoiceCopiesAttribution(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, _ := snowflake.NewNode(12)
	campaignID := node.Generate()
	seedCampaign(t, db, campaignID)

	gateway := &stubGateway{intents: map[string]*gatewaydomain.Intent{
		"pi_origin": {
			ID:       "pi_origin",
			Status:   gatewaydomain.StatusSucceeded,
			Amount:   1_500,
			Currency: "USD",
			Metadata: map[string]string{
				"campaign_id": campaignID.String(),
				"donor_email": "ada@example.org",
				"donor_name":  "Ada",
			},
		},
	}}
	svc := newWebhookService(t, db, gateway)

	now := time.Now().UTC()

	// Origin donation arrives via webhook, then gets linked to the
	// subscription the way the first invoice of a plan would be.
	originPayload := []byte(fmt.Sprintf(
		`{"id":"evt_5","type":"payment_intent.succeeded","created":%d,"data":{"object":{"id":"pi_origin","amount":1500,"amount_received":1500,"currency":"usd"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", originPayload, signedHeader(originPayload, now.Unix())); err != nil {
		t.Fatalf("origin ingest: %v", err)
	}
	if err := db.Exec(`UPDATE donations SET subscription_id = 'sub_9', source = 'recurring' WHERE intent_id = 'pi_origin'`).Error; err != nil {
		t.Fatalf("link subscription: %v", err)
	}

	invoicePayload := []byte(fmt.Sprintf(
		`{"id":"evt_6","type":"invoice.payment_succeeded","created":%d,"data":{"object":{"id":"in_10","payment_intent":"pi_recurring","subscription":"sub_9","amount_paid":1500,"currency":"usd"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", invoicePayload, signedHeader(invoicePayload, now.Unix())); err != nil {
		t.Fatalf("invoice ingest: %v", err)
	}

	var email, source string
	row := db.Raw(`SELECT donor_email, source FROM donations WHERE invoice_id = 'in_10'`).Row()
	if err := row.Scan(&email, &source); err != nil {
		t.Fatalf("scan recurring donation: %v", err)
	}
	if email != "ada@example.org" {
		t.Fatalf("expected attribution copied from origin, got %q", email)
	}
	if source != donationdomain.SourceRecurring {
		t.Fatalf("expected recurring source, got %s", source)
	}

	// Redelivery of the same invoice creates nothing new.
	redelivery := []byte(fmt.Sprintf(
		`{"id":"evt_7","type":"invoice.payment_succeeded","created":%d,"data":{"object":{"id":"in_10","payment_intent":"pi_recurring","subscription":"sub_9","amount_paid":1500,"currency":"usd"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", redelivery, signedHeader(redelivery, now.Unix())); err != nil {
		t.Fatalf("redelivery ingest: %v", err)
	}
	assertCount(t, db, `SELECT COUNT(1) FROM donations WHERE invoice_id = 'in_10'`, 1)

	var recurring bool
	if err := db.Raw(`SELECT recurring FROM donors WHERE email = 'ada@example.org'`).Scan(&recurring).Error; err != nil {
		t.Fatalf("scan recurring flag: %v", err)
	}
	if !recurring {
		t.Fatal("expected donor flagged recurring")
	}
}

func TestIngestSubscriptionCanceledClearsRecurring(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, _ := snowflake.NewNode(12)
	campaignID := node.Generate()
	seedCampaign(t, db, campaignID)

	gateway := &stubGateway{intents: map[string]*gatewaydomain.Intent{
		"pi_sub": {
			ID:       "pi_sub",
			Status:   gatewaydomain.StatusSucceeded,
			Amount:   1_500,
			Currency: "USD",
			Metadata: map[string]string{
				"campaign_id": campaignID.String(),
				"donor_email": "ada@example.org",
			},
		},
	}}
	svc := newWebhookService(t, db, gateway)

	now := time.Now().UTC()
	originPayload := []byte(fmt.Sprintf(
		`{"id":"evt_8","type":"payment_intent.succeeded","created":%d,"data":{"object":{"id":"pi_sub","amount":1500,"amount_received":1500,"currency":"usd"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", originPayload, signedHeader(originPayload, now.Unix())); err != nil {
		t.Fatalf("origin ingest: %v", err)
	}
	if err := db.Exec(`UPDATE donations SET subscription_id = 'sub_20' WHERE intent_id = 'pi_sub'`).Error; err != nil {
		t.Fatalf("link subscription: %v", err)
	}
	if err := db.Exec(`UPDATE donors SET recurring = 1, segment = 'recurring' WHERE email = 'ada@example.org'`).Error; err != nil {
		t.Fatalf("flag recurring: %v", err)
	}

	cancelPayload := []byte(fmt.Sprintf(
		`{"id":"evt_9","type":"customer.subscription.deleted","created":%d,"data":{"object":{"id":"sub_20"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", cancelPayload, signedHeader(cancelPayload, now.Unix())); err != nil {
		t.Fatalf("cancel ingest: %v", err)
	}

	var recurring bool
	if err := db.Raw(`SELECT recurring FROM donors WHERE email = 'ada@example.org'`).Scan(&recurring).Error; err != nil {
		t.Fatalf("scan recurring flag: %v", err)
	}
	if recurring {
		t.Fatal("expected recurring flag cleared")
	}

	var status string
	if err := db.Raw(`SELECT status FROM donations WHERE subscription_id = 'sub_20'`).Scan(&status).Error; err != nil {
		t.Fatalf("scan donation status: %v", err)
	}
	if status != donationdomain.StatusCanceled {
		t.Fatalf("expected donation canceled, got %q", status)
	}
}

func TestIngestRefundEvent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	node, _ := snowflake.NewNode(12)
	campaignID := node.Generate()
	seedCampaign(t, db, campaignID)

	gateway := &stubGateway{intents: map[string]*gatewaydomain.Intent{
		"pi_ref": {
			ID:       "pi_ref",
			Status:   gatewaydomain.StatusSucceeded,
			Amount:   2_500,
			Currency: "USD",
			Metadata: map[string]string{
				"campaign_id": campaignID.String(),
				"donor_email": "ada@example.org",
			},
		},
	}}
	svc := newWebhookService(t, db, gateway)

	now := time.Now().UTC()
	settledPayload := []byte(fmt.Sprintf(
		`{"id":"evt_10","type":"payment_intent.succeeded","created":%d,"data":{"object":{"id":"pi_ref","amount":2500,"amount_received":2500,"currency":"usd"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", settledPayload, signedHeader(settledPayload, now.Unix())); err != nil {
		t.Fatalf("settle ingest: %v", err)
	}

	refundPayload := []byte(fmt.Sprintf(
		`{"id":"evt_11","type":"charge.refunded","created":%d,"data":{"object":{"id":"ch_1","payment_intent":"pi_ref","amount_refunded":2500,"currency":"usd"}}}`,
		now.Unix(),
	))
	if err := svc.Ingest(ctx, "stripe", refundPayload, signedHeader(refundPayload, now.Unix())); err != nil {
		t.Fatalf("refund ingest: %v", err)
	}

	var status string
	if err := db.Raw(`SELECT status FROM donations WHERE intent_id = 'pi_ref'`).Scan(&status).Error; err != nil {
		t.Fatalf("scan status: %v", err)
	}
	if status != donationdomain.StatusRefunded {
		t.Fatalf("expected refunded, got %s", status)
	}
}

func TestIngestUnknownProvider(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newWebhookService(t, db, &stubGateway{intents: map[string]*gatewaydomain.Intent{}})

	err := svc.Ingest(ctx, "braintree", []byte(`{}`), http.Header{})
	if !errors.Is(err, donationwebhook.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}
