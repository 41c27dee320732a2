package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, filter ListCampaignFilter, page pagination.Pagination) ([]*Campaign, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error

	// ApplyDonation atomically adds the amount to raised totals,
	// bumps the donor count when the gift is the donor's first for
	// this campaign, and flips the campaign to completed once the
	// goal is reached. Runs as a single UPDATE.
	ApplyDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, newDonor bool) error

	// ReverseDonation subtracts a refunded amount from raised totals
	// without touching the status.
	ReverseDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) error
}

type ListCampaignFilter struct {
	Status   string
	Currency string
}
