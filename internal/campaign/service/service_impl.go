package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/campaign/domain"
	"github.com/givebridge/givebridge/internal/clock"
	gatewaydomain "github.com/givebridge/givebridge/internal/gateway/domain"
	"github.com/givebridge/givebridge/pkg/db"
	"github.com/givebridge/givebridge/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("campaign.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Campaign{}, domain.ErrInvalidName
	}

	goal := gatewaydomain.MajorAmount(req.GoalAmount)
	if err := goal.Validate(); err != nil {
		return domain.Campaign{}, domain.ErrInvalidGoal
	}

	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return domain.Campaign{}, domain.ErrInvalidWindow
	}

	campaignSlug := strings.TrimSpace(req.Slug)
	if campaignSlug == "" {
		campaignSlug = slug.Make(name)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		metadata[key] = value
	}

	now := s.clock.Now().UTC()
	campaign := domain.Campaign{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        campaignSlug,
		Description: strings.TrimSpace(req.Description),
		Status:      domain.StatusActive,
		Currency:    currency,
		GoalAmount:  goal.MinorUnits(),
		Metadata:    metadata,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Campaign{}, domain.ErrDuplicateSlug
		}
		return domain.Campaign{}, err
	}

	s.log.Info("campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("slug", campaign.Slug),
		zap.Int64("goal_amount", campaign.GoalAmount),
	)

	return campaign, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Campaign, error) {
	campaignID, err := s.parseID(id)
	if err != nil {
		return domain.Campaign{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, campaignID)
	if err != nil {
		return domain.Campaign{}, err
	}
	if item == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (domain.Campaign, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Campaign{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		return domain.Campaign{}, err
	}
	if item == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCampaignRequest) (domain.ListCampaignResponse, error) {
	status := strings.TrimSpace(req.Status)
	if status != "" && !validStatus(status) {
		return domain.ListCampaignResponse{}, domain.ErrInvalidStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListCampaignFilter{
		Status:   status,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListCampaignResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(campaign *domain.Campaign) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        campaign.ID.String(),
			CreatedAt: campaign.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	campaigns := make([]domain.Campaign, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		campaigns = append(campaigns, *item)
	}

	resp := domain.ListCampaignResponse{Campaigns: campaigns}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (domain.Campaign, error) {
	campaignID, err := s.parseID(id)
	if err != nil {
		return domain.Campaign{}, err
	}

	status = strings.TrimSpace(status)
	if !validStatus(status) {
		return domain.Campaign{}, domain.ErrInvalidStatus
	}

	item, err := s.repo.FindByID(ctx, s.db, campaignID)
	if err != nil {
		return domain.Campaign{}, err
	}
	if item == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}

	if err := s.repo.UpdateStatus(ctx, s.db, campaignID, status); err != nil {
		return domain.Campaign{}, err
	}

	item.Status = status
	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusDraft, domain.StatusActive, domain.StatusPaused, domain.StatusCompleted:
		return true
	}
	return false
}
