package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/donor/domain"
	"github.com/givebridge/givebridge/pkg/db/option"
	"github.com/givebridge/givebridge/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, gift domain.RecordGift, t domain.Thresholds) (*domain.Donor, bool, error) {
	email := strings.ToLower(strings.TrimSpace(gift.Email))
	if email == "" {
		return nil, false, domain.ErrInvalidEmail
	}

	receivedAt := gift.ReceivedAt.UTC()
	segment := domain.ClassifySegment(1, gift.Amount, gift.Recurring, t)

	res := db.WithContext(ctx).Exec(
		`INSERT INTO donors (id, email, name, segment, donation_count, total_donated, average_donation, largest_donation, recurring, first_donated_at, last_donated_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		gift.ID,
		email,
		strings.TrimSpace(gift.Name),
		segment,
		gift.Amount,
		gift.Amount,
		gift.Amount,
		gift.Recurring,
		receivedAt,
		receivedAt,
		receivedAt,
		receivedAt,
	)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		donor, err := r.FindByEmail(ctx, db, email)
		if err != nil {
			return nil, false, err
		}
		return donor, true, nil
	}

	err := db.WithContext(ctx).Exec(
		`UPDATE donors
		 SET donation_count = donation_count + 1,
		     total_donated = total_donated + ?,
		     average_donation = (total_donated + ?) / (donation_count + 1),
		     largest_donation = CASE WHEN ? > largest_donation THEN ? ELSE largest_donation END,
		     recurring = recurring OR ?,
		     name = CASE WHEN ? <> '' THEN ? ELSE name END,
		     last_donated_at = ?,
		     updated_at = ?
		 WHERE email = ?`,
		gift.Amount,
		gift.Amount,
		gift.Amount,
		gift.Amount,
		gift.Recurring,
		strings.TrimSpace(gift.Name),
		strings.TrimSpace(gift.Name),
		receivedAt,
		receivedAt,
		email,
	).Error
	if err != nil {
		return nil, false, err
	}

	donor, err := r.FindByEmail(ctx, db, email)
	if err != nil {
		return nil, false, err
	}
	if donor == nil {
		return nil, false, domain.ErrNotFound
	}

	segment = domain.ClassifySegment(donor.DonationCount, donor.TotalDonated, donor.Recurring, t)
	if segment != donor.Segment {
		err = db.WithContext(ctx).Exec(
			`UPDATE donors SET segment = ? WHERE email = ?`,
			segment,
			email,
		).Error
		if err != nil {
			return nil, false, err
		}
		donor.Segment = segment
	}

	return donor, false, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Donor, error) {
	var donor domain.Donor
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, segment, donation_count, total_donated, average_donation, largest_donation, recurring, first_donated_at, last_donated_at, created_at, updated_at
		 FROM donors WHERE id = ?`,
		id,
	).Scan(&donor).Error
	if err != nil {
		return nil, err
	}
	if donor.ID == 0 {
		return nil, nil
	}
	return &donor, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Donor, error) {
	var donor domain.Donor
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, segment, donation_count, total_donated, average_donation, largest_donation, recurring, first_donated_at, last_donated_at, created_at, updated_at
		 FROM donors WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&donor).Error
	if err != nil {
		return nil, err
	}
	if donor.ID == 0 {
		return nil, nil
	}
	return &donor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListDonorFilter, page pagination.Pagination) ([]*domain.Donor, error) {
	var donors []*domain.Donor
	stmt := db.WithContext(ctx).Model(&domain.Donor{})
	if filter.Segment != "" {
		stmt = stmt.Where("segment = ?", filter.Segment)
	}
	if filter.Recurring != nil {
		stmt = stmt.Where("recurring = ?", *filter.Recurring)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("total_donated desc, id desc").
		Find(&donors).Error
	if err != nil {
		return nil, err
	}
	return donors, nil
}

func (r *repo) SetRecurring(ctx context.Context, db *gorm.DB, email string, recurring bool, t domain.Thresholds) error {
	email = strings.ToLower(strings.TrimSpace(email))
	donor, err := r.FindByEmail(ctx, db, email)
	if err != nil {
		return err
	}
	if donor == nil {
		return domain.ErrNotFound
	}

	segment := domain.ClassifySegment(donor.DonationCount, donor.TotalDonated, recurring, t)
	return db.WithContext(ctx).Exec(
		`UPDATE donors SET recurring = ?, segment = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		recurring,
		segment,
		email,
	).Error
}
