package models

import "time"

// Admin represents the administrator account stored in the database.
// In practice exactly one record exists, provisioned lazily on the first
// login attempt that matches the configured bootstrap email.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex" json:"email"` // Unique login email, lowercased.
	Password string `gorm:"type:text;not null" json:"-"`                 // Hashed password, never plaintext.

	LastLogin     *time.Time `json:"lastLogin"`                   // Stamped on successful login.
	LoginAttempts int        `gorm:"not null;default:0" json:"-"` // Consecutive failed attempts.
	LockUntil     *time.Time `json:"-"`                           // Locked iff set and in the future.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// Locked reports whether the account lockout is active at the given time.
func (a *Admin) Locked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}
