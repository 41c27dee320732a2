package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending        = "pending"
	StatusProcessing     = "processing"
	StatusRequiresAction = "requires_action"
	StatusSucceeded      = "succeeded"
	StatusFailed         = "failed"
	StatusRefunded       = "refunded"
	StatusCanceled       = "canceled"
)

const (
	SourceDirect    = "direct"
	SourceRecurring = "recurring"
)

type Donation struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	IntentID       string            `gorm:"not null;uniqueIndex" json:"intent_id"`
	InvoiceID      *string           `json:"invoice_id,omitempty"`
	SubscriptionID *string           `json:"subscription_id,omitempty"`
	CampaignID     snowflake.ID      `gorm:"not null;index" json:"campaign_id"`
	DonorID        *snowflake.ID     `gorm:"index" json:"donor_id,omitempty"`
	DonorEmail     string            `json:"donor_email,omitempty"`
	DonorName      string            `json:"donor_name,omitempty"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Fee            int64             `gorm:"not null;default:0" json:"fee"`
	NetAmount      int64             `gorm:"not null;default:0" json:"net_amount"`
	Currency       string            `gorm:"not null" json:"currency"`
	Status         string            `gorm:"not null;index" json:"status"`
	Source         string            `gorm:"not null;default:direct" json:"source"`
	Anonymous      bool              `gorm:"not null;default:false" json:"anonymous"`
	Message        string            `json:"message,omitempty"`
	FailureReason  string            `json:"failure_reason,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	SettledAt      *time.Time        `json:"settled_at,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CanTransition reports whether a donation may move between two
// statuses. Transitions are forward-only; settled money never goes
// back to an in-flight state.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusPending:
		switch to {
		case StatusProcessing, StatusRequiresAction, StatusSucceeded, StatusFailed, StatusCanceled:
			return true
		}
	case StatusProcessing:
		switch to {
		case StatusRequiresAction, StatusSucceeded, StatusFailed, StatusCanceled:
			return true
		}
	case StatusRequiresAction:
		switch to {
		case StatusProcessing, StatusSucceeded, StatusFailed, StatusCanceled:
			return true
		}
	case StatusSucceeded:
		switch to {
		case StatusRefunded, StatusCanceled:
			return true
		}
	case StatusFailed:
		return to == StatusCanceled
	}
	return false
}

// Settled reports whether a donation reached a terminal successful
// state and counts toward campaign totals.
func (d Donation) Settled() bool {
	return d.Status == StatusSucceeded
}
