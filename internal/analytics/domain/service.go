package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidRange  = errors.New("invalid_analytics_range")
	ErrInvalidWindow = errors.New("invalid_analytics_window")
)

// Summary aggregates settled donations only. Amounts are major units
// for presentation.
type Summary struct {
	TotalRaised     float64 `json:"total_raised"`
	DonationCount   int64   `json:"donation_count"`
	DonorCount      int64   `json:"donor_count"`
	AverageDonation float64 `json:"average_donation"`
	RecurringShare  float64 `json:"recurring_share"`
	Currency        string  `json:"currency"`
}

type TrendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

type TopDonor struct {
	DonorName    string  `json:"donor_name"`
	TotalDonated float64 `json:"total_donated"`
	Donations    int64   `json:"donations"`
}

type CampaignBreakdown struct {
	CampaignID   string  `json:"campaign_id"`
	CampaignName string  `json:"campaign_name"`
	Raised       float64 `json:"raised"`
	Goal         float64 `json:"goal"`
	Progress     float64 `json:"progress"`
	DonorCount   int64   `json:"donor_count"`
}

type SummaryRequest struct {
	CampaignID string     `form:"campaign_id"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
}

type SummaryResponse struct {
	Summary   Summary             `json:"summary"`
	Trend     []TrendPoint        `json:"trend"`
	TopDonors []TopDonor          `json:"top_donors"`
	Campaigns []CampaignBreakdown `json:"campaigns"`
}

type Service interface {
	Summary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
}
