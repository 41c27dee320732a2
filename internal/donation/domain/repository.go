package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert writes the donation keyed by its gateway intent. Returns
	// false without error when a row for the same intent already
	// exists, which is how confirmation replays are absorbed.
	Insert(ctx context.Context, db *gorm.DB, donation *Donation) (bool, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Donation, error)
	FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*Donation, error)
	FindByInvoiceID(ctx context.Context, db *gorm.DB, invoiceID string) (*Donation, error)
	LastBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*Donation, error)
	Recent(ctx context.Context, db *gorm.DB, limit int) ([]*Donation, error)

	// UpdateStatus moves a donation between statuses, guarding the
	// transition inside the statement. Returns false when the guard
	// rejected the move.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []string, to string, reason string, at time.Time) (bool, error)

	// SettleFailed moves a previously failed donation to succeeded
	// with the processor's amounts. Returns false when the row is no
	// longer failed, so a concurrent settlement is applied once.
	SettleFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, amount, fee int64, at time.Time) (bool, error)

	// SetDonor links a settled donation to the donor row created or
	// updated in the same transaction.
	SetDonor(ctx context.Context, db *gorm.DB, id snowflake.ID, donorID snowflake.ID) error

	// CancelBySubscriptionID moves every donation under a subscription
	// to canceled. Refunded rows stay refunded.
	CancelBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string, at time.Time) (int64, error)
}
