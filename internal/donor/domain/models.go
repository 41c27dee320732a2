package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	SegmentFirstTime = "first_time"
	SegmentReturning = "returning"
	SegmentRecurring = "recurring"
	SegmentMajor     = "major"
	SegmentChampion  = "champion"
)

type Donor struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Email           string       `gorm:"not null;uniqueIndex" json:"email"`
	Name            string       `json:"name,omitempty"`
	Segment         string       `gorm:"not null;default:first_time" json:"segment"`
	DonationCount   int64        `gorm:"not null;default:0" json:"donation_count"`
	TotalDonated    int64        `gorm:"not null;default:0" json:"total_donated"`
	AverageDonation int64        `gorm:"not null;default:0" json:"average_donation"`
	LargestDonation int64        `gorm:"not null;default:0" json:"largest_donation"`
	Recurring       bool         `gorm:"not null;default:false" json:"recurring"`
	FirstDonatedAt  *time.Time   `json:"first_donated_at,omitempty"`
	LastDonatedAt   *time.Time   `json:"last_donated_at,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Thresholds are minor-unit amounts above which a donor graduates to
// the major and champion segments.
type Thresholds struct {
	Major    int64
	Champion int64
}

// ClassifySegment derives a donor segment from lifetime stats. Amount
// tiers win over frequency: a recurring donor past the major threshold
// reports as major.
func ClassifySegment(donationCount, totalDonated int64, recurring bool, t Thresholds) string {
	switch {
	case t.Champion > 0 && totalDonated >= t.Champion:
		return SegmentChampion
	case t.Major > 0 && totalDonated >= t.Major:
		return SegmentMajor
	case recurring:
		return SegmentRecurring
	case donationCount > 1:
		return SegmentReturning
	default:
		return SegmentFirstTime
	}
}
