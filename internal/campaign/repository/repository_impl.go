package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/campaign/domain"
	"github.com/givebridge/givebridge/pkg/db/option"
	"github.com/givebridge/givebridge/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (id, name, slug, description, status, currency, goal_amount, raised_amount, donor_count, metadata, starts_at, ends_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.Name,
		campaign.Slug,
		campaign.Description,
		campaign.Status,
		campaign.Currency,
		campaign.GoalAmount,
		campaign.RaisedAmount,
		campaign.DonorCount,
		campaign.Metadata,
		campaign.StartsAt,
		campaign.EndsAt,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, description, status, currency, goal_amount, raised_amount, donor_count, metadata, starts_at, ends_at, created_at, updated_at
		 FROM campaigns WHERE id = ?`,
		id,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, description, status, currency, goal_amount, raised_amount, donor_count, metadata, starts_at, ends_at, created_at, updated_at
		 FROM campaigns WHERE slug = ?`,
		slug,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCampaignFilter, page pagination.Pagination) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	stmt := db.WithContext(ctx).Model(&domain.Campaign{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Currency != "" {
		stmt = stmt.Where("currency = ?", filter.Currency)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		id,
	).Error
}

func (r *repo) ApplyDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, newDonor bool) error {
	donorDelta := 0
	if newDonor {
		donorDelta = 1
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE campaigns
		 SET raised_amount = raised_amount + ?,
		     donor_count = donor_count + ?,
		     status = CASE WHEN status = ? AND raised_amount + ? >= goal_amount THEN ? ELSE status END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		amount,
		donorDelta,
		domain.StatusActive,
		amount,
		domain.StatusCompleted,
		id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) ReverseDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE campaigns
		 SET raised_amount = CASE WHEN raised_amount >= ? THEN raised_amount - ? ELSE 0 END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		amount,
		amount,
		id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
