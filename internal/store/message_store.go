// Package store provides repository-style access to messages and analytics
// counters.
package store

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campus-union/voicebox/internal/models"
	"github.com/campus-union/voicebox/internal/sanitize"
)

// Message content bounds, applied to the trimmed raw content.
const (
	// MinContentLength is the minimum accepted message length.
	MinContentLength = 10
	// MaxContentLength is the maximum accepted message length.
	MaxContentLength = 5000
)

// Message store errors.
var (
	// ErrContentLength indicates the trimmed raw content is outside bounds.
	ErrContentLength = errors.New("message content length out of bounds")
	// ErrContentUnsafe indicates sanitization left fewer than
	// MinContentLength characters, i.e. the submission was mostly
	// disallowed markup.
	ErrContentUnsafe = errors.New("message content too short after sanitization")
	// ErrMessageNotFound indicates the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)

// MessageStore persists and queries anonymous messages.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore constructs a MessageStore backed by GORM.
func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Submit validates, sanitizes, and persists a new message. The raw content
// is stored alongside the sanitized form; the sanitized form is always
// derived here and never accepted from the caller.
func (s *MessageStore) Submit(ctx context.Context, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	length := len([]rune(content))
	if length < MinContentLength || length > MaxContentLength {
		return nil, ErrContentLength
	}

	sanitized := sanitize.Sanitize(content)
	if len([]rune(sanitized)) < MinContentLength {
		return nil, ErrContentUnsafe
	}

	msg := models.Message{
		Content:          content,
		SanitizedContent: sanitized,
		MessageLength:    length,
	}
	if errCreate := s.db.WithContext(ctx).Create(&msg).Error; errCreate != nil {
		return nil, errCreate
	}
	return &msg, nil
}

// Pagination describes the position of a page within the full result set.
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalMessages int64 `json:"totalMessages"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

// List returns one page of messages ordered by creation time descending.
func (s *MessageStore) List(ctx context.Context, page, pageSize int) ([]models.Message, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if errCount := s.db.WithContext(ctx).Model(&models.Message{}).Count(&total).Error; errCount != nil {
		return nil, Pagination{}, errCount
	}

	var items []models.Message
	if errFind := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; errFind != nil {
		return nil, Pagination{}, errFind
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	pagination := Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalMessages: total,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
	}
	return items, pagination, nil
}

// Get fetches a single message by id.
func (s *MessageStore) Get(ctx context.Context, id uint64) (*models.Message, error) {
	var msg models.Message
	if errFind := s.db.WithContext(ctx).First(&msg, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, errFind
	}
	return &msg, nil
}

// SetReviewed updates the review flag. ReviewedAt is stamped exactly when
// the flag flips to true and cleared when it flips to false. Setting the
// current value again is a no-op success, distinct from not-found.
func (s *MessageStore) SetReviewed(ctx context.Context, id uint64, reviewed bool) (*models.Message, error) {
	msg, errGet := s.Get(ctx, id)
	if errGet != nil {
		return nil, errGet
	}

	msg.IsReviewed = reviewed
	if reviewed {
		now := time.Now()
		msg.ReviewedAt = &now
	} else {
		msg.ReviewedAt = nil
	}
	if errSave := s.db.WithContext(ctx).Save(msg).Error; errSave != nil {
		return nil, errSave
	}
	return msg, nil
}

// Delete permanently removes a message. Deleting a missing message is an
// error, not a silent success.
func (s *MessageStore) Delete(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MessageStats aggregates counts over the whole message table.
type MessageStats struct {
	TotalMessages        int64 `json:"totalMessages"`
	ReviewedMessages     int64 `json:"reviewedMessages"`
	PendingMessages      int64 `json:"pendingMessages"`
	MessagesThisWeek     int64 `json:"messagesThisWeek"`
	MessagesThisMonth    int64 `json:"messagesThisMonth"`
	AverageMessageLength int   `json:"averageMessageLength"`
}

// Stats computes dashboard aggregates. The week and month windows are
// rolling (now minus 7 and 30 days), not calendar aligned.
func (s *MessageStore) Stats(ctx context.Context) (*MessageStats, error) {
	messages := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Message{})
	}

	var stats MessageStats
	if errCount := messages().Count(&stats.TotalMessages).Error; errCount != nil {
		return nil, errCount
	}
	if errCount := messages().Where("is_reviewed = ?", true).Count(&stats.ReviewedMessages).Error; errCount != nil {
		return nil, errCount
	}
	stats.PendingMessages = stats.TotalMessages - stats.ReviewedMessages

	now := time.Now()
	if errCount := messages().Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&stats.MessagesThisWeek).Error; errCount != nil {
		return nil, errCount
	}
	if errCount := messages().Where("created_at >= ?", now.AddDate(0, 0, -30)).Count(&stats.MessagesThisMonth).Error; errCount != nil {
		return nil, errCount
	}

	var avg float64
	if errScan := messages().Select("COALESCE(AVG(message_length), 0)").Scan(&avg).Error; errScan != nil {
		return nil, errScan
	}
	stats.AverageMessageLength = int(math.Round(avg))

	return &stats, nil
}
