package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge/internal/analytics/domain"
	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
	"github.com/givebridge/givebridge/internal/clock"
	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
	gatewaydomain "github.com/givebridge/givebridge/internal/gateway/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		clock: p.Clock,
	}
}

// Summary reduces settled donations into dashboard aggregates. Failed
// and refunded rows never contribute; anonymous gifts contribute to
// totals but stay out of the named leaderboards.
func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResponse, error) {
	var campaignID snowflake.ID
	if ref := strings.TrimSpace(req.CampaignID); ref != "" {
		parsed, err := snowflake.ParseString(ref)
		if err != nil || parsed == 0 {
			return domain.SummaryResponse{}, campaigndomain.ErrInvalidID
		}
		campaignID = parsed
	}

	from, to, err := normalizeRange(req.From, req.To, s.clock.Now())
	if err != nil {
		return domain.SummaryResponse{}, err
	}

	summary, err := s.loadSummary(ctx, campaignID, from, to)
	if err != nil {
		return domain.SummaryResponse{}, err
	}
	trend, err := s.loadTrend(ctx, campaignID, from, to)
	if err != nil {
		return domain.SummaryResponse{}, err
	}
	topDonors, err := s.loadTopDonors(ctx, campaignID, from, to)
	if err != nil {
		return domain.SummaryResponse{}, err
	}
	campaigns, err := s.loadCampaigns(ctx, campaignID)
	if err != nil {
		return domain.SummaryResponse{}, err
	}

	return domain.SummaryResponse{
		Summary:   summary,
		Trend:     trend,
		TopDonors: topDonors,
		Campaigns: campaigns,
	}, nil
}

func normalizeRange(from, to *time.Time, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if to != nil {
		end = to.UTC().Add(24*time.Hour - time.Nanosecond)
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = from.UTC()
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	if end.Sub(start) > 366*24*time.Hour {
		return time.Time{}, time.Time{}, domain.ErrInvalidWindow
	}
	return start, end, nil
}

func (s *Service) loadSummary(ctx context.Context, campaignID snowflake.ID, from, to time.Time) (domain.Summary, error) {
	var row struct {
		Total      int64
		Count      int64
		DonorCount int64
		Recurring  int64
		Currency   string
	}

	query := `SELECT
		COALESCE(SUM(amount), 0) AS total,
		COUNT(1) AS count,
		COUNT(DISTINCT CASE WHEN donor_email <> '' THEN donor_email END) AS donor_count,
		COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0) AS recurring,
		MAX(currency) AS currency
	 FROM donations
	 WHERE status = ? AND settled_at >= ? AND settled_at <= ?`
	args := []any{donationdomain.SourceRecurring, donationdomain.StatusSucceeded, from, to}
	if campaignID != 0 {
		query += ` AND campaign_id = ?`
		args = append(args, campaignID)
	}

	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		TotalRaised:   float64(gatewaydomain.MajorFromMinor(row.Total)),
		DonationCount: row.Count,
		DonorCount:    row.DonorCount,
		Currency:      row.Currency,
	}
	if row.Count > 0 {
		summary.AverageDonation = float64(gatewaydomain.MajorFromMinor(row.Total / row.Count))
		summary.RecurringShare = float64(row.Recurring) / float64(row.Count)
	}
	return summary, nil
}

func (s *Service) loadTrend(ctx context.Context, campaignID snowflake.ID, from, to time.Time) ([]domain.TrendPoint, error) {
	var rows []struct {
		Day    string
		Amount int64
		Count  int64
	}

	query := `SELECT DATE(settled_at) AS day,
		COALESCE(SUM(amount), 0) AS amount,
		COUNT(1) AS count
	 FROM donations
	 WHERE status = ? AND settled_at >= ? AND settled_at <= ?`
	args := []any{donationdomain.StatusSucceeded, from, to}
	if campaignID != 0 {
		query += ` AND campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` GROUP BY DATE(settled_at) ORDER BY day ASC`

	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.TrendPoint{
			Date:   row.Day,
			Amount: float64(gatewaydomain.MajorFromMinor(row.Amount)),
			Count:  row.Count,
		})
	}
	return points, nil
}

func (s *Service) loadTopDonors(ctx context.Context, campaignID snowflake.ID, from, to time.Time) ([]domain.TopDonor, error) {
	var rows []struct {
		Name      string
		Total     int64
		Donations int64
	}

	query := `SELECT
		CASE WHEN donor_name <> '' THEN donor_name ELSE donor_email END AS name,
		COALESCE(SUM(amount), 0) AS total,
		COUNT(1) AS donations
	 FROM donations
	 WHERE status = ? AND anonymous = ? AND donor_email <> ''
	   AND settled_at >= ? AND settled_at <= ?`
	args := []any{donationdomain.StatusSucceeded, false, from, to}
	if campaignID != 0 {
		query += ` AND campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` GROUP BY name ORDER BY total DESC LIMIT 10`

	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	donors := make([]domain.TopDonor, 0, len(rows))
	for _, row := range rows {
		donors = append(donors, domain.TopDonor{
			DonorName:    row.Name,
			TotalDonated: float64(gatewaydomain.MajorFromMinor(row.Total)),
			Donations:    row.Donations,
		})
	}
	return donors, nil
}

func (s *Service) loadCampaigns(ctx context.Context, campaignID snowflake.ID) ([]domain.CampaignBreakdown, error) {
	var rows []struct {
		ID           snowflake.ID
		Name         string
		GoalAmount   int64
		RaisedAmount int64
		DonorCount   int64
	}

	query := `SELECT id, name, goal_amount, raised_amount, donor_count
	 FROM campaigns WHERE status <> ?`
	args := []any{campaigndomain.StatusDraft}
	if campaignID != 0 {
		query += ` AND id = ?`
		args = append(args, campaignID)
	}
	query += ` ORDER BY raised_amount DESC`

	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	campaigns := make([]domain.CampaignBreakdown, 0, len(rows))
	for _, row := range rows {
		breakdown := domain.CampaignBreakdown{
			CampaignID:   row.ID.String(),
			CampaignName: row.Name,
			Raised:       float64(gatewaydomain.MajorFromMinor(row.RaisedAmount)),
			Goal:         float64(gatewaydomain.MajorFromMinor(row.GoalAmount)),
			DonorCount:   row.DonorCount,
		}
		if row.GoalAmount > 0 {
			breakdown.Progress = float64(row.RaisedAmount) / float64(row.GoalAmount)
		}
		campaigns = append(campaigns, breakdown)
	}
	return campaigns, nil
}
