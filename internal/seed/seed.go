package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
)

const (
	defaultCampaignName = "General Fund"
	defaultCampaignSlug = "general-fund"
	defaultCampaignGoal = 1_000_000 // $10,000 in minor units
)

// EnsureDefaultCampaign seeds a catch-all campaign so a fresh install
// can take donations before anyone has created one.
func EnsureDefaultCampaign(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (id, name, slug, description, status, currency, goal_amount, raised_amount, donor_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
		 ON CONFLICT (slug) DO NOTHING`,
		node.Generate(),
		defaultCampaignName,
		defaultCampaignSlug,
		"Unrestricted gifts that go where they are needed most.",
		campaigndomain.StatusActive,
		"USD",
		int64(defaultCampaignGoal),
		now,
		now,
	).Error
}
