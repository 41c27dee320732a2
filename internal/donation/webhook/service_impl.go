package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/clock"
	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
	donationservice "github.com/givebridge/givebridge/internal/donation/service"
	gatewaydomain "github.com/givebridge/givebridge/internal/gateway/domain"
	obsmetrics "github.com/givebridge/givebridge/internal/observability/metrics"
)

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
)

// EventRecord is one received webhook event. The unique key on
// (provider, event_id) is what makes redelivery harmless.
type EventRecord struct {
	ID          snowflake.ID   `gorm:"primaryKey"`
	Provider    string         `gorm:"not null"`
	EventID     string         `gorm:"column:event_id;not null"`
	EventType   string         `gorm:"not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt  time.Time      `gorm:"not null"`
	ProcessedAt *time.Time
}

func (EventRecord) TableName() string { return "webhook_events" }

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Adapter     gatewaydomain.WebhookAdapter
	DonationSvc *donationservice.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	adapter     gatewaydomain.WebhookAdapter
	donationSvc *donationservice.Service
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("donation.webhook"),
		clock:       p.Clock,
		genID:       p.GenID,
		adapter:     p.Adapter,
		donationSvc: p.DonationSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

// Ingest authenticates, dedups and applies one webhook delivery.
// Unknown event types and duplicate deliveries return nil so the
// gateway sees an ack and stops retrying.
func (s *Service) Ingest(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return ErrInvalidProvider
	}
	if s.adapter == nil || s.adapter.Provider() != provider {
		return ErrProviderNotFound
	}
	if !json.Valid(payload) {
		return gatewaydomain.ErrInvalidPayload
	}

	if err := s.adapter.Verify(ctx, payload, headers); err != nil {
		return err
	}

	event, err := s.adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, gatewaydomain.ErrEventIgnored) {
			s.log.Debug("ignoring webhook event", zap.String("provider", provider))
			return nil
		}
		return err
	}

	now := s.clock.Now().UTC()
	record := EventRecord{
		ID:         s.genID.Generate(),
		Provider:   provider,
		EventID:    event.ID,
		EventType:  event.Type,
		Payload:    datatypes.JSON(payload),
		ReceivedAt: now,
	}

	inserted, err := s.insertEvent(ctx, &record)
	if err != nil {
		return err
	}
	if !inserted {
		stored, err := s.loadEvent(ctx, provider, event.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return gatewaydomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			s.log.Debug("duplicate webhook delivery",
				zap.String("provider", provider),
				zap.String("event_id", event.ID),
			)
			return nil
		}
		record = *stored
	}

	if err := s.dispatch(ctx, event); err != nil {
		return err
	}

	if err := s.markProcessed(ctx, record.ID, now); err != nil {
		return err
	}

	if inserted && s.obsMetrics != nil {
		s.obsMetrics.RecordWebhookEvent(ctx, provider, event.Type)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, event *gatewaydomain.Event) error {
	switch event.Type {
	case gatewaydomain.EventPaymentSucceeded:
		return s.donationSvc.SettleFromEvent(ctx, event)
	case gatewaydomain.EventPaymentFailed:
		return s.donationSvc.FailFromEvent(ctx, event, "")
	case gatewaydomain.EventInvoicePaid:
		return s.donationSvc.RecordRecurring(ctx, event)
	case gatewaydomain.EventSubscriptionCanceled:
		return s.donationSvc.CancelRecurringFromEvent(ctx, event)
	case gatewaydomain.EventRefunded:
		err := s.donationSvc.RecordRefund(ctx, event.IntentID, event.Amount)
		if errors.Is(err, donationdomain.ErrNotFound) {
			// Refund for a donation this system never recorded.
			s.log.Warn("refund event for unknown donation",
				zap.String("intent_id", event.IntentID),
			)
			return nil
		}
		return err
	default:
		return gatewaydomain.ErrInvalidEvent
	}
}

func (s *Service) insertEvent(ctx context.Context, record *EventRecord) (bool, error) {
	res := s.db.WithContext(ctx).Exec(
		`INSERT INTO webhook_events (id, provider, event_id, event_type, payload, received_at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)
		 ON CONFLICT (provider, event_id) DO NOTHING`,
		record.ID,
		record.Provider,
		record.EventID,
		record.EventType,
		record.Payload,
		record.ReceivedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Service) loadEvent(ctx context.Context, provider, eventID string) (*EventRecord, error) {
	var record EventRecord
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, provider, event_id, event_type, payload, received_at, processed_at
		 FROM webhook_events WHERE provider = ? AND event_id = ?`,
		provider,
		eventID,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (s *Service) markProcessed(ctx context.Context, id snowflake.ID, at time.Time) error {
	return s.db.WithContext(ctx).Exec(
		`UPDATE webhook_events SET processed_at = ? WHERE id = ?`,
		at,
		id,
	).Error
}
