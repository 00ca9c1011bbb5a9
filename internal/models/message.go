package models

import "time"

// Message represents an anonymous submission stored in the database.
type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Content          string `gorm:"type:text;not null" json:"content"`          // Raw submitted text, trimmed.
	SanitizedContent string `gorm:"type:text;not null" json:"sanitizedContent"` // Derived safe-to-render text.
	MessageLength    int    `gorm:"not null" json:"messageLength"`              // Length of the trimmed raw content.

	IsReviewed bool       `gorm:"not null;default:false;index" json:"isReviewed"` // Admin review flag.
	ReviewedAt *time.Time `json:"reviewedAt"`                                     // Set when IsReviewed flips true, cleared on false.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_messages_created_at,sort:desc" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`                                         // Last update timestamp.
}
