package models

import (
	"time"

	"gorm.io/datatypes"
)

// Analytics metric column names accepted by the analytics store.
const (
	// MetricPageViews counts tracked page views.
	MetricPageViews = "page_views"
	// MetricUniqueVisitors counts tracked unique visitors.
	MetricUniqueVisitors = "unique_visitors"
	// MetricMessageSubmissions counts accepted message submissions.
	MetricMessageSubmissions = "message_submissions"
	// MetricAdminLogins counts successful admin logins.
	MetricAdminLogins = "admin_logins"
)

// AnalyticsDay holds per-calendar-day counters. At most one row exists per
// day; rows are created by upsert-increment and never deleted.
type AnalyticsDay struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"-"` // Primary key.

	Date datatypes.Date `gorm:"not null;uniqueIndex" json:"date"` // Calendar day, no time component.

	PageViews          int64 `gorm:"not null;default:0" json:"pageViews"`          // Page view counter.
	UniqueVisitors     int64 `gorm:"not null;default:0" json:"uniqueVisitors"`     // Unique visitor counter.
	MessageSubmissions int64 `gorm:"not null;default:0" json:"messageSubmissions"` // Submission counter.
	AdminLogins        int64 `gorm:"not null;default:0" json:"adminLogins"`        // Admin login counter.

	BounceRate             float64 `gorm:"not null;default:0" json:"bounceRate"`             // Placeholder, always 0.
	AverageSessionDuration float64 `gorm:"not null;default:0" json:"averageSessionDuration"` // Placeholder, always 0.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"` // Last update timestamp.
}

// TruncateDay drops the time component from t, keyed to the UTC calendar
// day. Stored day rows and query bounds go through the same truncation so
// they agree regardless of the server's time zone.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
