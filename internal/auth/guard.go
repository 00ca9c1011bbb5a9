// Package auth implements admin credential verification with failed-attempt
// tracking and temporary lockout.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/campus-union/voicebox/internal/models"
	"github.com/campus-union/voicebox/internal/security"
)

// Lockout policy.
const (
	// MaxLoginAttempts is the number of consecutive failures before lockout.
	MaxLoginAttempts = 5
	// LockDuration is how long a locked account rejects all attempts.
	LockDuration = 2 * time.Hour
)

// Authentication failure signals.
var (
	// ErrInvalidCredentials covers wrong email, wrong password, and unknown
	// emails that do not match the bootstrap email.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked indicates an active lockout; the password is not
	// checked in this state.
	ErrAccountLocked = errors.New("account locked")
	// ErrNotConfigured indicates the bootstrap credentials are missing from
	// configuration, so no admin can ever be provisioned.
	ErrNotConfigured = errors.New("admin credentials not configured")
)

// Guard verifies admin credentials and maintains attempt/lock state. The
// read-modify-write of LoginAttempts/LockUntil is not atomic across
// concurrent attempts for the same admin; acceptable for this threat model.
type Guard struct {
	db                *gorm.DB
	bootstrapEmail    string
	bootstrapPassword string

	now func() time.Time
}

// NewGuard constructs a Guard with the configured bootstrap credentials.
func NewGuard(db *gorm.DB, bootstrapEmail, bootstrapPassword string) *Guard {
	return &Guard{
		db:                db,
		bootstrapEmail:    strings.ToLower(strings.TrimSpace(bootstrapEmail)),
		bootstrapPassword: bootstrapPassword,
		now:               time.Now,
	}
}

// Result describes a successful authentication.
type Result struct {
	Admin *models.Admin
	// Provisioned is true when this attempt created the admin record via
	// the bootstrap path.
	Provisioned bool
}

// Authenticate checks email/password against the stored admin record,
// updating attempt and lock state. Every attempt, success or failure,
// persists its state transition before returning.
//
// State machine per admin record:
//
//	Unlocked(k) --wrong password-->  Unlocked(k+1)          if k+1 < MaxLoginAttempts
//	Unlocked(k) --wrong password-->  Locked(now + LockDuration) otherwise
//	Unlocked(k) --correct password-> Unlocked(0), LastLogin stamped
//	Locked(until), now < until  -->  rejected before the password check
//	Locked(until), now >= until -->  re-enters the normal flow
func (g *Guard) Authenticate(ctx context.Context, email, password string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := g.now()

	var admin models.Admin
	provisioned := false
	errFind := g.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	switch {
	case errFind == nil:
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		created, errBootstrap := g.bootstrap(ctx, email)
		if errBootstrap != nil {
			return Result{}, errBootstrap
		}
		admin = *created
		provisioned = true
	default:
		return Result{}, errFind
	}

	if admin.Locked(now) {
		return Result{}, ErrAccountLocked
	}

	if !security.CheckPassword(admin.Password, password) {
		admin.LoginAttempts++
		if admin.LoginAttempts >= MaxLoginAttempts {
			lockUntil := now.Add(LockDuration)
			admin.LockUntil = &lockUntil
			log.WithField("email", email).Warn("admin account locked after repeated failed logins")
		}
		if errSave := g.db.WithContext(ctx).Save(&admin).Error; errSave != nil {
			return Result{}, errSave
		}
		return Result{}, ErrInvalidCredentials
	}

	admin.LoginAttempts = 0
	admin.LockUntil = nil
	lastLogin := now
	admin.LastLogin = &lastLogin
	if errSave := g.db.WithContext(ctx).Save(&admin).Error; errSave != nil {
		return Result{}, errSave
	}

	return Result{Admin: &admin, Provisioned: provisioned}, nil
}

// bootstrap creates the admin record for the configured email. Any other
// email is indistinguishable from wrong credentials.
func (g *Guard) bootstrap(ctx context.Context, email string) (*models.Admin, error) {
	if g.bootstrapEmail == "" || g.bootstrapPassword == "" {
		return nil, ErrNotConfigured
	}
	if email != g.bootstrapEmail {
		return nil, ErrInvalidCredentials
	}

	hash, errHash := security.HashPassword(g.bootstrapPassword)
	if errHash != nil {
		return nil, errHash
	}
	admin := models.Admin{Email: g.bootstrapEmail, Password: hash}
	if errCreate := g.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return nil, errCreate
	}
	log.WithField("email", g.bootstrapEmail).Info("admin account provisioned")
	return &admin, nil
}
