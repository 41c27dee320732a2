package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/donation/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const donationColumns = `id, intent_id, invoice_id, subscription_id, campaign_id, donor_id, donor_email, donor_name, amount, fee, net_amount, currency, status, source, anonymous, message, failure_reason, metadata, settled_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, donation *domain.Donation) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO donations (`+donationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (intent_id) DO NOTHING`,
		donation.ID,
		donation.IntentID,
		donation.InvoiceID,
		donation.SubscriptionID,
		donation.CampaignID,
		donation.DonorID,
		donation.DonorEmail,
		donation.DonorName,
		donation.Amount,
		donation.Fee,
		donation.NetAmount,
		donation.Currency,
		donation.Status,
		donation.Source,
		donation.Anonymous,
		donation.Message,
		donation.FailureReason,
		donation.Metadata,
		donation.SettledAt,
		donation.CreatedAt,
		donation.UpdatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Donation, error) {
	var donation domain.Donation
	err := db.WithContext(ctx).Raw(
		`SELECT `+donationColumns+` FROM donations WHERE id = ?`,
		id,
	).Scan(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*domain.Donation, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, nil
	}
	var donation domain.Donation
	err := db.WithContext(ctx).Raw(
		`SELECT `+donationColumns+` FROM donations WHERE intent_id = ?`,
		intentID,
	).Scan(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) FindByInvoiceID(ctx context.Context, db *gorm.DB, invoiceID string) (*domain.Donation, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, nil
	}
	var donation domain.Donation
	err := db.WithContext(ctx).Raw(
		`SELECT `+donationColumns+` FROM donations WHERE invoice_id = ?`,
		invoiceID,
	).Scan(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) LastBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*domain.Donation, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, nil
	}
	var donation domain.Donation
	err := db.WithContext(ctx).Raw(
		`SELECT `+donationColumns+` FROM donations
		 WHERE subscription_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		subscriptionID,
	).Scan(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) Recent(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Donation, error) {
	if limit <= 0 {
		limit = 20
	}
	var donations []*domain.Donation
	err := db.WithContext(ctx).Raw(
		`SELECT `+donationColumns+` FROM donations
		 WHERE status = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		domain.StatusSucceeded,
		limit,
	).Scan(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []string, to string, reason string, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, domain.ErrInvalidTransition
	}

	var res *gorm.DB
	if to == domain.StatusSucceeded {
		res = db.WithContext(ctx).Exec(
			`UPDATE donations
			 SET status = ?,
			     failure_reason = CASE WHEN ? <> '' THEN ? ELSE failure_reason END,
			     settled_at = ?,
			     updated_at = ?
			 WHERE id = ? AND status IN ?`,
			to,
			reason,
			reason,
			at.UTC(),
			at.UTC(),
			id,
			from,
		)
	} else {
		res = db.WithContext(ctx).Exec(
			`UPDATE donations
			 SET status = ?,
			     failure_reason = CASE WHEN ? <> '' THEN ? ELSE failure_reason END,
			     updated_at = ?
			 WHERE id = ? AND status IN ?`,
			to,
			reason,
			reason,
			at.UTC(),
			id,
			from,
		)
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SettleFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, amount, fee int64, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE donations
		 SET status = ?,
		     amount = ?,
		     fee = ?,
		     net_amount = ?,
		     failure_reason = '',
		     settled_at = ?,
		     updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusSucceeded,
		amount,
		fee,
		amount-fee,
		at.UTC(),
		at.UTC(),
		id,
		domain.StatusFailed,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SetDonor(ctx context.Context, db *gorm.DB, id snowflake.ID, donorID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE donations SET donor_id = ? WHERE id = ?`,
		donorID,
		id,
	).Error
}

func (r *repo) CancelBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE donations SET status = ?, updated_at = ?
		 WHERE subscription_id = ? AND status IN ?`,
		domain.StatusCanceled,
		at,
		subscriptionID,
		[]string{domain.StatusSucceeded, domain.StatusFailed},
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
