package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campus-union/voicebox/internal/models"
)

// ErrUnknownMetric indicates an increment for a metric outside the fixed
// counter set.
var ErrUnknownMetric = errors.New("unknown analytics metric")

// maxDailyRows caps the per-day series returned by Query. Totals are still
// computed over the entire matching range.
const maxDailyRows = 30

// AnalyticsStore maintains per-day counters with atomic upsert-increments.
type AnalyticsStore struct {
	db *gorm.DB

	now func() time.Time
}

// NewAnalyticsStore constructs an AnalyticsStore backed by GORM.
func NewAnalyticsStore(db *gorm.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db, now: time.Now}
}

// Increment bumps the named counter for the calendar day containing t,
// creating the day row when absent. The increment happens in a single
// upsert statement, so concurrent increments for the same day never lose
// updates.
func (s *AnalyticsStore) Increment(ctx context.Context, metric string, t time.Time) error {
	row := models.AnalyticsDay{Date: datatypes.Date(models.TruncateDay(t))}
	switch metric {
	case models.MetricPageViews:
		row.PageViews = 1
	case models.MetricUniqueVisitors:
		row.UniqueVisitors = 1
	case models.MetricMessageSubmissions:
		row.MessageSubmissions = 1
	case models.MetricAdminLogins:
		row.AdminLogins = 1
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			metric:       gorm.Expr(metric + " + 1"),
			"updated_at": s.now(),
		}),
	}).Create(&row).Error
}

// IncrementToday bumps the named counter for the current day.
func (s *AnalyticsStore) IncrementToday(ctx context.Context, metric string) error {
	return s.Increment(ctx, metric, s.now())
}

// AnalyticsTotals sums the counters and averages the rate-like fields over
// an entire date range.
type AnalyticsTotals struct {
	TotalPageViews          int64   `json:"totalPageViews"`
	TotalUniqueVisitors     int64   `json:"totalUniqueVisitors"`
	TotalMessageSubmissions int64   `json:"totalMessageSubmissions"`
	TotalAdminLogins        int64   `json:"totalAdminLogins"`
	AverageBounceRate       float64 `json:"averageBounceRate"`
	AverageSessionDuration  float64 `json:"averageSessionDuration"`
}

// AnalyticsReport is the Query result: the capped daily series plus totals
// over the whole matching range.
type AnalyticsReport struct {
	DailyAnalytics []models.AnalyticsDay `json:"dailyAnalytics"`
	TotalStats     AnalyticsTotals       `json:"totalStats"`
}

// Query returns at most the 30 most recent day rows within the optional
// inclusive date range, newest first, plus totals across every matching
// row (not just the returned slice).
func (s *AnalyticsStore) Query(ctx context.Context, start, end *time.Time) (*AnalyticsReport, error) {
	filter := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.AnalyticsDay{})
		if start != nil {
			tx = tx.Where("date >= ?", datatypes.Date(models.TruncateDay(*start)))
		}
		if end != nil {
			tx = tx.Where("date <= ?", datatypes.Date(models.TruncateDay(*end)))
		}
		return tx
	}

	var days []models.AnalyticsDay
	if errFind := filter().
		Order("date DESC").
		Limit(maxDailyRows).
		Find(&days).Error; errFind != nil {
		return nil, errFind
	}

	var totals AnalyticsTotals
	if errScan := filter().Select(`
		COALESCE(SUM(page_views), 0) AS total_page_views,
		COALESCE(SUM(unique_visitors), 0) AS total_unique_visitors,
		COALESCE(SUM(message_submissions), 0) AS total_message_submissions,
		COALESCE(SUM(admin_logins), 0) AS total_admin_logins,
		COALESCE(AVG(bounce_rate), 0) AS average_bounce_rate,
		COALESCE(AVG(average_session_duration), 0) AS average_session_duration
	`).Scan(&totals).Error; errScan != nil {
		return nil, errScan
	}

	report := &AnalyticsReport{
		DailyAnalytics: days,
		TotalStats:     totals,
	}
	if report.DailyAnalytics == nil {
		report.DailyAnalytics = []models.AnalyticsDay{}
	}
	return report, nil
}
