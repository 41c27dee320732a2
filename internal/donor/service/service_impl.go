package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/donor/domain"
	"github.com/givebridge/givebridge/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("donor.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Donor, error) {
	donorID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || donorID == 0 {
		return domain.Donor{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, donorID)
	if err != nil {
		return domain.Donor{}, err
	}
	if item == nil {
		return domain.Donor{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (domain.Donor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Donor{}, domain.ErrInvalidEmail
	}

	item, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Donor{}, err
	}
	if item == nil {
		return domain.Donor{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDonorRequest) (domain.ListDonorResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListDonorFilter{
		Segment:   strings.TrimSpace(req.Segment),
		Recurring: req.Recurring,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListDonorResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(donor *domain.Donor) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        donor.ID.String(),
			CreatedAt: donor.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	donors := make([]domain.Donor, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		donors = append(donors, *item)
	}

	resp := domain.ListDonorResponse{Donors: donors}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}
