package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/pkg/db/pagination"
)

var (
	ErrNotFound     = errors.New("donor_not_found")
	ErrInvalidID    = errors.New("invalid_donor_id")
	ErrInvalidEmail = errors.New("invalid_donor_email")
)

// RecordGift carries one settled donation into a donor's lifetime
// stats. Amount is in minor units.
type RecordGift struct {
	ID         snowflake.ID
	Email      string
	Name       string
	Amount     int64
	Recurring  bool
	ReceivedAt time.Time
}

type Repository interface {
	// Upsert inserts the donor on first gift or folds the gift into
	// the existing row, recomputing count, total, average and
	// largest in one statement. Returns the donor after the write
	// and whether the row was newly created.
	Upsert(ctx context.Context, db *gorm.DB, gift RecordGift, t Thresholds) (*Donor, bool, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Donor, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Donor, error)
	List(ctx context.Context, db *gorm.DB, filter ListDonorFilter, page pagination.Pagination) ([]*Donor, error)
	SetRecurring(ctx context.Context, db *gorm.DB, email string, recurring bool, t Thresholds) error
}

type ListDonorFilter struct {
	Segment   string
	Recurring *bool
}
