package domain

import (
	"context"
	"errors"
	"time"

	"github.com/givebridge/givebridge/pkg/db/pagination"
)

var (
	ErrNotFound      = errors.New("campaign_not_found")
	ErrInvalidID     = errors.New("invalid_campaign_id")
	ErrInvalidName   = errors.New("invalid_campaign_name")
	ErrInvalidGoal   = errors.New("invalid_campaign_goal")
	ErrInvalidStatus = errors.New("invalid_campaign_status")
	ErrDuplicateSlug = errors.New("duplicate_campaign_slug")
	ErrNotAccepting  = errors.New("campaign_not_accepting_donations")
	ErrInvalidWindow = errors.New("invalid_campaign_window")
)

type Service interface {
	Create(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	GetByID(ctx context.Context, id string) (Campaign, error)
	GetBySlug(ctx context.Context, slug string) (Campaign, error)
	List(ctx context.Context, req ListCampaignRequest) (ListCampaignResponse, error)
	UpdateStatus(ctx context.Context, id string, status string) (Campaign, error)
}

type CreateCampaignRequest struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	GoalAmount  float64           `json:"goal_amount"`
	Metadata    map[string]string `json:"metadata"`
	StartsAt    *time.Time        `json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at"`
}

type ListCampaignRequest struct {
	Status    string `form:"status"`
	Currency  string `form:"currency"`
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
}

type ListCampaignResponse struct {
	Campaigns []Campaign          `json:"campaigns"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}
