package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
	"github.com/givebridge/givebridge/internal/clock"
	"github.com/givebridge/givebridge/internal/config"
	"github.com/givebridge/givebridge/internal/donation/domain"
	donordomain "github.com/givebridge/givebridge/internal/donor/domain"
	gatewaydomain "github.com/givebridge/givebridge/internal/gateway/domain"
	"github.com/givebridge/givebridge/internal/notifier"
	obsmetrics "github.com/givebridge/givebridge/internal/observability/metrics"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Cfg          config.Config
	Gateway      gatewaydomain.Gateway
	Repo         domain.Repository
	CampaignRepo campaigndomain.Repository
	DonorRepo    donordomain.Repository
	Settings     *config.SettingsHolder
	Notifier     *notifier.Notifier  `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	gateway      gatewaydomain.Gateway
	repo         domain.Repository
	campaignRepo campaigndomain.Repository
	donorRepo    donordomain.Repository
	settings     *config.SettingsHolder
	notifier     *notifier.Notifier
	obsMetrics   *obsmetrics.Metrics
	adminEmail   string
}

func New(p Params) *Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("donation.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		gateway:      p.Gateway,
		repo:         p.Repo,
		campaignRepo: p.CampaignRepo,
		donorRepo:    p.DonorRepo,
		settings:     p.Settings,
		notifier:     p.Notifier,
		obsMetrics:   p.ObsMetrics,
		adminEmail:   strings.TrimSpace(p.Cfg.AdminEmail),
	}
}

func (s *Service) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (domain.IntentResponse, error) {
	campaign, err := s.loadCampaign(ctx, req.CampaignID)
	if err != nil {
		return domain.IntentResponse{}, err
	}
	if !campaign.AcceptsDonations() {
		return domain.IntentResponse{}, campaigndomain.ErrNotAccepting
	}

	amount := gatewaydomain.MajorAmount(req.Amount)
	if err := amount.Validate(); err != nil {
		return domain.IntentResponse{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = campaign.Currency
	}
	if currency != campaign.Currency {
		return domain.IntentResponse{}, domain.ErrInvalidCurrency
	}

	email := strings.ToLower(strings.TrimSpace(req.DonorEmail))
	if email != "" && !strings.Contains(email, "@") {
		return domain.IntentResponse{}, domain.ErrInvalidEmail
	}

	metadata := map[string]string{
		"reference":   s.genID.Generate().String(),
		"campaign_id": campaign.ID.String(),
		"anonymous":   boolString(req.Anonymous),
	}
	if email != "" {
		metadata["donor_email"] = email
	}
	if name := strings.TrimSpace(req.DonorName); name != "" {
		metadata["donor_name"] = name
	}
	if message := strings.TrimSpace(req.Message); message != "" {
		metadata["message"] = message
	}

	intent, err := s.gateway.CreateIntent(ctx, gatewaydomain.CreateIntentRequest{
		Amount:   amount,
		Currency: currency,
		Metadata: metadata,
	})
	if err != nil {
		return domain.IntentResponse{}, err
	}

	s.log.Info("donation intent created",
		zap.String("intent_id", intent.ID),
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int64("amount", intent.Amount),
	)

	return domain.IntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       float64(gatewaydomain.MajorFromMinor(intent.Amount)),
		Currency:     intent.Currency,
		CampaignID:   campaign.ID.String(),
	}, nil
}

func (s *Service) Confirm(ctx context.Context, req domain.ConfirmRequest) (domain.Donation, error) {
	intentID := strings.TrimSpace(req.IntentID)
	if intentID == "" {
		return domain.Donation{}, domain.ErrInvalidIntent
	}

	// Replays of an already-settled confirmation short-circuit before
	// talking to the gateway at all. A failed row is not a settlement:
	// the donor may have retried the card on the same intent, so the
	// gateway gets asked again.
	if existing, err := s.repo.FindByIntentID(ctx, s.db, intentID); err != nil {
		return domain.Donation{}, err
	} else if existing != nil && existing.Status != domain.StatusFailed {
		return *existing, nil
	}

	// The gateway round trip happens outside any database transaction
	// so a slow processor never holds row locks.
	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return domain.Donation{}, err
	}

	input, err := s.settleInputFromIntent(intent, req)
	if err != nil {
		return domain.Donation{}, err
	}

	switch intent.Status {
	case gatewaydomain.StatusSucceeded:
		return s.settle(ctx, input)
	case gatewaydomain.StatusProcessing:
		return domain.Donation{}, domain.ErrPaymentIncomplete
	case gatewaydomain.StatusRequiresAction:
		return domain.Donation{}, domain.ErrPaymentRequiresAction
	default:
		// A decline leaves no donation record. The donor can retry
		// the same intent and a later success settles normally.
		s.notifyDeclined(ctx, input, "payment was declined by the processor")
		return domain.Donation{}, domain.ErrPaymentDeclined
	}
}

// settleInput is everything needed to persist one settled donation.
// Amounts are minor units straight from the gateway.
type settleInput struct {
	intentID       string
	invoiceID      string
	subscriptionID string
	campaignID     snowflake.ID
	campaign       *campaigndomain.Campaign
	donorEmail     string
	donorName      string
	anonymous      bool
	message        string
	amount         int64
	fee            int64
	currency       string
	source         string
	occurredAt     time.Time
}

func (s *Service) settleInputFromIntent(intent *gatewaydomain.Intent, req domain.ConfirmRequest) (settleInput, error) {
	metadata := intent.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	campaignRef := strings.TrimSpace(req.CampaignID)
	if campaignRef == "" {
		campaignRef = metadata["campaign_id"]
	}
	campaignID, err := snowflake.ParseString(strings.TrimSpace(campaignRef))
	if err != nil || campaignID == 0 {
		return settleInput{}, campaigndomain.ErrInvalidID
	}

	email := strings.ToLower(strings.TrimSpace(req.DonorEmail))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(metadata["donor_email"]))
	}
	if email != "" && !strings.Contains(email, "@") {
		return settleInput{}, domain.ErrInvalidEmail
	}

	name := strings.TrimSpace(req.DonorName)
	if name == "" {
		name = strings.TrimSpace(metadata["donor_name"])
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = strings.TrimSpace(metadata["message"])
	}

	anonymous := req.Anonymous || metadata["anonymous"] == "true"

	return settleInput{
		intentID:   intent.ID,
		campaignID: campaignID,
		donorEmail: email,
		donorName:  name,
		anonymous:  anonymous,
		message:    message,
		amount:     intent.Amount,
		fee:        intent.Fee,
		currency:   intent.Currency,
		source:     domain.SourceDirect,
		occurredAt: s.clock.Now().UTC(),
	}, nil
}

// settle persists one settled donation: the donation row, the campaign
// totals and the donor stats commit or roll back together. A conflict
// on the intent key means a concurrent or earlier confirmation already
// settled this payment; the stored row is returned and no side effect
// runs twice.
func (s *Service) settle(ctx context.Context, input settleInput) (domain.Donation, error) {
	campaign := input.campaign
	if campaign == nil {
		var err error
		campaign, err = s.loadCampaignByID(ctx, input.campaignID)
		if err != nil {
			return domain.Donation{}, err
		}
	}

	now := input.occurredAt
	if now.IsZero() {
		now = s.clock.Now().UTC()
	}

	donation := domain.Donation{
		ID:         s.genID.Generate(),
		IntentID:   input.intentID,
		CampaignID: campaign.ID,
		DonorEmail: input.donorEmail,
		DonorName:  input.donorName,
		Amount:     input.amount,
		Fee:        input.fee,
		NetAmount:  input.amount - input.fee,
		Currency:   strings.ToUpper(strings.TrimSpace(input.currency)),
		Status:     domain.StatusSucceeded,
		Source:     input.source,
		Anonymous:  input.anonymous,
		Message:    input.message,
		Metadata:   datatypes.JSONMap{},
		SettledAt:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.invoiceID != "" {
		donation.InvoiceID = &input.invoiceID
	}
	if input.subscriptionID != "" {
		donation.SubscriptionID = &input.subscriptionID
	}

	replayed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.Insert(ctx, tx, &donation)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := s.repo.FindByIntentID(ctx, tx, input.intentID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrNotFound
			}
			if existing.Status != domain.StatusFailed {
				donation = *existing
				replayed = true
				return nil
			}
			// The processor collected the payment after a recorded
			// failure. Move the row forward and apply the aggregates
			// that the failure never touched.
			moved, err := s.repo.SettleFailed(ctx, tx, existing.ID, input.amount, input.fee, now)
			if err != nil {
				return err
			}
			if !moved {
				refreshed, err := s.repo.FindByID(ctx, tx, existing.ID)
				if err != nil {
					return err
				}
				if refreshed == nil {
					return domain.ErrNotFound
				}
				donation = *refreshed
				replayed = true
				return nil
			}
			donation.ID = existing.ID
			donation.CreatedAt = existing.CreatedAt
			donation.FailureReason = ""
		}

		newDonor := false
		if input.donorEmail != "" {
			donor, created, err := s.donorRepo.Upsert(ctx, tx, donordomain.RecordGift{
				ID:         s.genID.Generate(),
				Email:      input.donorEmail,
				Name:       input.donorName,
				Amount:     input.amount,
				Recurring:  input.source == domain.SourceRecurring,
				ReceivedAt: now,
			}, s.thresholds())
			if err != nil {
				return err
			}
			newDonor = created
			donation.DonorID = &donor.ID
			if err := s.repo.SetDonor(ctx, tx, donation.ID, donor.ID); err != nil {
				return err
			}
		}

		return s.campaignRepo.ApplyDonation(ctx, tx, campaign.ID, input.amount, newDonor)
	})
	if err != nil {
		return domain.Donation{}, err
	}

	if replayed {
		return donation, nil
	}

	s.log.Info("donation settled",
		zap.String("donation_id", donation.ID.String()),
		zap.String("intent_id", donation.IntentID),
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int64("amount", donation.Amount),
		zap.String("source", donation.Source),
	)
	if s.obsMetrics != nil {
		s.obsMetrics.RecordDonation(ctx, donation.Status, donation.Source)
	}
	if s.notifier != nil && donation.DonorEmail != "" {
		s.notifier.SendReceipt(notifier.Receipt{
			DonationID:   donation.ID.String(),
			DonorEmail:   donation.DonorEmail,
			DonorName:    donation.DonorName,
			CampaignName: campaign.Name,
			Amount:       float64(gatewaydomain.MajorFromMinor(donation.Amount)),
			Currency:     donation.Currency,
			SettledAt:    now,
		})
	}
	if s.notifier != nil && s.adminEmail != "" {
		s.notifier.SendAdminAlert(
			s.adminEmail,
			fmt.Sprintf("New donation to %s", campaign.Name),
			fmt.Sprintf("Donation %s settled: %.2f %s to %s.",
				donation.ID.String(),
				float64(gatewaydomain.MajorFromMinor(donation.Amount)),
				donation.Currency,
				campaign.Name,
			),
		)
	}

	return donation, nil
}

// recordDeclined keeps an audit row for a processor-reported failure
// arriving by webhook. Campaign and donor aggregates never move for
// failures, and a later success settles the row forward.
func (s *Service) recordDeclined(ctx context.Context, input settleInput, reason string) {
	now := s.clock.Now().UTC()
	donation := domain.Donation{
		ID:            s.genID.Generate(),
		IntentID:      input.intentID,
		CampaignID:    input.campaignID,
		DonorEmail:    input.donorEmail,
		DonorName:     input.donorName,
		Amount:        input.amount,
		Fee:           input.fee,
		NetAmount:     input.amount - input.fee,
		Currency:      strings.ToUpper(strings.TrimSpace(input.currency)),
		Status:        domain.StatusFailed,
		Source:        input.source,
		Anonymous:     input.anonymous,
		Message:       input.message,
		FailureReason: reason,
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.repo.Insert(ctx, s.db, &donation); err != nil {
		s.log.Warn("failed to record declined donation",
			zap.String("intent_id", input.intentID),
			zap.Error(err),
		)
		return
	}

	s.notifyDeclined(ctx, input, reason)
}

// notifyDeclined emits the failure metric and donor notice without
// touching the record store.
func (s *Service) notifyDeclined(ctx context.Context, input settleInput, reason string) {
	if s.obsMetrics != nil {
		s.obsMetrics.RecordDonation(ctx, domain.StatusFailed, input.source)
	}
	if s.notifier != nil && input.donorEmail != "" {
		s.notifier.SendFailure(notifier.Failure{
			DonorEmail: input.donorEmail,
			DonorName:  input.donorName,
			Reason:     reason,
		})
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Donation, error) {
	donationID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || donationID == 0 {
		return domain.Donation{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, donationID)
	if err != nil {
		return domain.Donation{}, err
	}
	if item == nil {
		return domain.Donation{}, domain.ErrNotFound
	}

	return *item, nil
}

// Recent returns the public activity feed. Anonymous gifts stay in the
// feed but shed all donor identity.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Donation, error) {
	items, err := s.repo.Recent(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	donations := make([]domain.Donation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		donation := *item
		if donation.Anonymous {
			donation.DonorID = nil
			donation.DonorEmail = ""
			donation.DonorName = ""
		}
		donations = append(donations, donation)
	}
	return donations, nil
}

func (s *Service) Refund(ctx context.Context, id string, req domain.RefundRequest) (domain.Donation, error) {
	donation, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Donation{}, err
	}
	if donation.Status != domain.StatusSucceeded {
		return domain.Donation{}, domain.ErrNotRefundable
	}

	refundAmount := donation.Amount
	if req.Amount > 0 {
		requested := gatewaydomain.MajorAmount(req.Amount)
		if err := requested.Validate(); err != nil {
			return domain.Donation{}, err
		}
		refundAmount = requested.MinorUnits()
		if refundAmount > donation.Amount {
			return domain.Donation{}, gatewaydomain.ErrInvalidAmount
		}
	}

	if _, err := s.gateway.CreateRefund(ctx, gatewaydomain.RefundRequest{
		IntentID: donation.IntentID,
		Amount:   refundAmount,
	}); err != nil {
		return domain.Donation{}, err
	}

	if err := s.applyRefund(ctx, &donation, refundAmount, strings.TrimSpace(req.Reason)); err != nil {
		return domain.Donation{}, err
	}

	return donation, nil
}

// RecordRefund applies a gateway-reported refund to the stored
// donation. Used by webhook ingestion; replays of the same refund are
// absorbed by the status guard.
func (s *Service) RecordRefund(ctx context.Context, intentID string, amount int64) error {
	donation, err := s.repo.FindByIntentID(ctx, s.db, intentID)
	if err != nil {
		return err
	}
	if donation == nil {
		return domain.ErrNotFound
	}
	if donation.Status == domain.StatusRefunded {
		return nil
	}
	if donation.Status != domain.StatusSucceeded {
		return domain.ErrNotRefundable
	}
	if amount <= 0 || amount > donation.Amount {
		amount = donation.Amount
	}
	return s.applyRefund(ctx, donation, amount, "refunded by the payment processor")
}

func (s *Service) applyRefund(ctx context.Context, donation *domain.Donation, amount int64, reason string) error {
	now := s.clock.Now().UTC()
	reverse := s.settings.Get().RefundReversesCampaignTotals

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.repo.UpdateStatus(ctx, tx, donation.ID,
			[]string{domain.StatusSucceeded}, domain.StatusRefunded, reason, now)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrNotRefundable
		}
		if reverse {
			return s.campaignRepo.ReverseDonation(ctx, tx, donation.CampaignID, amount)
		}
		return nil
	})
	if err != nil {
		return err
	}

	donation.Status = domain.StatusRefunded
	donation.FailureReason = reason
	donation.UpdatedAt = now

	s.log.Info("donation refunded",
		zap.String("donation_id", donation.ID.String()),
		zap.Int64("amount", amount),
		zap.Bool("campaign_reversed", reverse),
	)
	if s.obsMetrics != nil {
		s.obsMetrics.RecordDonation(ctx, domain.StatusRefunded, donation.Source)
	}
	return nil
}

// SettleFromEvent settles a donation announced by a gateway webhook.
// The intent is re-fetched so the recorded amounts are always the
// processor's, not the event payload's.
func (s *Service) SettleFromEvent(ctx context.Context, event *gatewaydomain.Event) error {
	if event == nil || strings.TrimSpace(event.IntentID) == "" {
		return gatewaydomain.ErrInvalidEvent
	}

	// A failed row does not block settlement; the settle path moves
	// it forward when the processor reports success after a failure.
	if existing, err := s.repo.FindByIntentID(ctx, s.db, event.IntentID); err != nil {
		return err
	} else if existing != nil && existing.Status != domain.StatusFailed {
		return nil
	}

	intent, err := s.gateway.RetrieveIntent(ctx, event.IntentID)
	if err != nil {
		return err
	}
	if intent.Status != gatewaydomain.StatusSucceeded {
		return gatewaydomain.ErrInvalidEvent
	}

	input, err := s.settleInputFromIntent(intent, domain.ConfirmRequest{})
	if err != nil {
		return err
	}
	input.occurredAt = event.OccurredAt

	_, err = s.settle(ctx, input)
	return err
}

// FailFromEvent records a gateway-reported payment failure. An
// existing in-flight donation moves to failed; an unknown intent gets
// an audit row reconstructed from the event metadata.
func (s *Service) FailFromEvent(ctx context.Context, event *gatewaydomain.Event, reason string) error {
	if event == nil || strings.TrimSpace(event.IntentID) == "" {
		return gatewaydomain.ErrInvalidEvent
	}
	if reason == "" {
		reason = "payment was declined by the processor"
	}

	existing, err := s.repo.FindByIntentID(ctx, s.db, event.IntentID)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Status == domain.StatusFailed {
			return nil
		}
		moved, err := s.repo.UpdateStatus(ctx, s.db, existing.ID,
			[]string{domain.StatusPending, domain.StatusProcessing, domain.StatusRequiresAction},
			domain.StatusFailed, reason, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		if !moved {
			// Settled rows stay settled; a stale failure event
			// after success is dropped.
			return nil
		}
		if s.notifier != nil && existing.DonorEmail != "" {
			s.notifier.SendFailure(notifier.Failure{
				DonorEmail: existing.DonorEmail,
				DonorName:  existing.DonorName,
				Reason:     reason,
			})
		}
		return nil
	}

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	campaignID, err := snowflake.ParseString(strings.TrimSpace(metadata["campaign_id"]))
	if err != nil || campaignID == 0 {
		// No attribution, nothing to record against.
		return nil
	}

	s.recordDeclined(ctx, settleInput{
		intentID:   event.IntentID,
		campaignID: campaignID,
		donorEmail: strings.ToLower(strings.TrimSpace(metadata["donor_email"])),
		donorName:  strings.TrimSpace(metadata["donor_name"]),
		anonymous:  metadata["anonymous"] == "true",
		amount:     event.Amount,
		currency:   event.Currency,
		source:     domain.SourceDirect,
	}, reason)
	return nil
}

// RecordRecurring settles an invoice-paid event for a subscription
// gift. Attribution is copied from the subscription's origin donation;
// the invoice id is the idempotency key.
func (s *Service) RecordRecurring(ctx context.Context, event *gatewaydomain.Event) error {
	if event == nil || strings.TrimSpace(event.InvoiceID) == "" {
		return gatewaydomain.ErrInvalidEvent
	}

	if existing, err := s.repo.FindByInvoiceID(ctx, s.db, event.InvoiceID); err != nil {
		return err
	} else if existing != nil {
		return nil
	}

	origin, err := s.repo.LastBySubscriptionID(ctx, s.db, event.SubscriptionID)
	if err != nil {
		return err
	}
	if origin == nil {
		s.log.Warn("recurring invoice without origin donation",
			zap.String("invoice_id", event.InvoiceID),
			zap.String("subscription_id", event.SubscriptionID),
		)
		return nil
	}

	intentID := strings.TrimSpace(event.IntentID)
	if intentID == "" {
		intentID = "invoice:" + event.InvoiceID
	}

	currency := event.Currency
	if currency == "" {
		currency = origin.Currency
	}

	_, err = s.settle(ctx, settleInput{
		intentID:       intentID,
		invoiceID:      event.InvoiceID,
		subscriptionID: event.SubscriptionID,
		campaignID:     origin.CampaignID,
		donorEmail:     origin.DonorEmail,
		donorName:      origin.DonorName,
		anonymous:      origin.Anonymous,
		amount:         event.Amount,
		currency:       currency,
		source:         domain.SourceRecurring,
		occurredAt:     event.OccurredAt,
	})
	return err
}

// CancelRecurringFromEvent marks the subscription's donations canceled
// and clears the donor's recurring flag when the gateway reports a
// subscription as ended.
func (s *Service) CancelRecurringFromEvent(ctx context.Context, event *gatewaydomain.Event) error {
	if event == nil || strings.TrimSpace(event.SubscriptionID) == "" {
		return gatewaydomain.ErrInvalidEvent
	}

	canceled, err := s.repo.CancelBySubscriptionID(ctx, s.db, event.SubscriptionID, s.clock.Now())
	if err != nil {
		return err
	}

	origin, err := s.repo.LastBySubscriptionID(ctx, s.db, event.SubscriptionID)
	if err != nil {
		return err
	}
	if origin == nil || origin.DonorEmail == "" {
		return nil
	}

	if err := s.donorRepo.SetRecurring(ctx, s.db, origin.DonorEmail, false, s.thresholds()); err != nil {
		if errors.Is(err, donordomain.ErrNotFound) {
			return nil
		}
		return err
	}

	s.log.Info("recurring donation canceled",
		zap.String("subscription_id", event.SubscriptionID),
		zap.Int64("donations_canceled", canceled),
	)
	return nil
}

func (s *Service) thresholds() donordomain.Thresholds {
	settings := s.settings.Get()
	return donordomain.Thresholds{
		Major:    settings.MajorDonorThreshold,
		Champion: settings.ChampionDonorThreshold,
	}
}

func (s *Service) loadCampaign(ctx context.Context, id string) (*campaigndomain.Campaign, error) {
	campaignID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || campaignID == 0 {
		return nil, campaigndomain.ErrInvalidID
	}
	return s.loadCampaignByID(ctx, campaignID)
}

func (s *Service) loadCampaignByID(ctx context.Context, id snowflake.ID) (*campaigndomain.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, campaigndomain.ErrNotFound
	}
	return campaign, nil
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
