package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

type Campaign struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"not null" json:"name"`
	Slug         string            `gorm:"not null;uniqueIndex" json:"slug"`
	Description  string            `json:"description,omitempty"`
	Status       string            `gorm:"not null;default:draft" json:"status"`
	Currency     string            `gorm:"not null" json:"currency"`
	GoalAmount   int64             `gorm:"not null" json:"goal_amount"`
	RaisedAmount int64             `gorm:"not null;default:0" json:"raised_amount"`
	DonorCount   int64             `gorm:"not null;default:0" json:"donor_count"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	StartsAt     *time.Time        `json:"starts_at,omitempty"`
	EndsAt       *time.Time        `json:"ends_at,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AcceptsDonations reports whether the campaign can receive new
// contributions. Completed campaigns keep accepting overflow gifts;
// only drafts and paused campaigns are closed.
func (c Campaign) AcceptsDonations() bool {
	return c.Status == StatusActive || c.Status == StatusCompleted
}
