package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/campus-union/voicebox/internal/db"
	"github.com/campus-union/voicebox/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestAuthenticateBootstrapProvisionsAdmin(t *testing.T) {
	conn := testDB(t)
	guard := NewGuard(conn, "Admin@Example.com", "supersecret")

	res, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret")
	if errAuth != nil {
		t.Fatalf("authenticate: %v", errAuth)
	}
	if !res.Provisioned {
		t.Fatalf("expected first login to provision the admin record")
	}
	if res.Admin.Email != "admin@example.com" {
		t.Fatalf("email not lowercased: %q", res.Admin.Email)
	}
	if res.Admin.Password == "supersecret" {
		t.Fatalf("password stored as plaintext")
	}
	if res.Admin.LastLogin == nil {
		t.Fatalf("lastLogin not stamped")
	}

	// Second login hits the existing record.
	res2, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret")
	if errAuth != nil {
		t.Fatalf("second authenticate: %v", errAuth)
	}
	if res2.Provisioned {
		t.Fatalf("second login must not report provisioning")
	}

	var count int64
	conn.Model(&models.Admin{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one admin record, got %d", count)
	}
}

func TestAuthenticateUnknownEmailRejected(t *testing.T) {
	conn := testDB(t)
	guard := NewGuard(conn, "admin@example.com", "supersecret")

	if _, errAuth := guard.Authenticate(context.Background(), "other@example.com", "supersecret"); !errors.Is(errAuth, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", errAuth)
	}

	var count int64
	conn.Model(&models.Admin{}).Count(&count)
	if count != 0 {
		t.Fatalf("no record should be provisioned for unknown emails")
	}
}

func TestAuthenticateMissingBootstrapConfig(t *testing.T) {
	conn := testDB(t)
	guard := NewGuard(conn, "", "")

	if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "x"); !errors.Is(errAuth, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", errAuth)
	}
}

func TestAuthenticateLockoutAfterFiveFailures(t *testing.T) {
	conn := testDB(t)
	guard := NewGuard(conn, "admin@example.com", "supersecret")

	// Provision the record.
	if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret"); errAuth != nil {
		t.Fatalf("provision: %v", errAuth)
	}

	for i := 0; i < MaxLoginAttempts; i++ {
		if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "wrong"); !errors.Is(errAuth, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, errAuth)
		}
	}

	// Sixth attempt is rejected as locked even with the correct password,
	// before any password comparison.
	if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret"); !errors.Is(errAuth, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", errAuth)
	}

	var admin models.Admin
	if errFind := conn.Where("email = ?", "admin@example.com").First(&admin).Error; errFind != nil {
		t.Fatalf("load admin: %v", errFind)
	}
	if admin.LoginAttempts != MaxLoginAttempts {
		t.Fatalf("expected %d persisted attempts, got %d", MaxLoginAttempts, admin.LoginAttempts)
	}
	if admin.LockUntil == nil {
		t.Fatalf("lockUntil not persisted")
	}
}

func TestAuthenticateLockExpiryReentersFlow(t *testing.T) {
	conn := testDB(t)
	guard := NewGuard(conn, "admin@example.com", "supersecret")

	if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret"); errAuth != nil {
		t.Fatalf("provision: %v", errAuth)
	}
	for i := 0; i < MaxLoginAttempts; i++ {
		guard.Authenticate(context.Background(), "admin@example.com", "wrong")
	}
	if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret"); !errors.Is(errAuth, ErrAccountLocked) {
		t.Fatalf("expected active lock, got %v", errAuth)
	}

	// Move the clock past the lock window.
	guard.now = func() time.Time { return time.Now().Add(LockDuration + time.Minute) }

	res, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret")
	if errAuth != nil {
		t.Fatalf("expected login after lock expiry, got %v", errAuth)
	}
	if res.Admin.LoginAttempts != 0 {
		t.Fatalf("attempts not reset: %d", res.Admin.LoginAttempts)
	}
	if res.Admin.LockUntil != nil {
		t.Fatalf("lockUntil not cleared")
	}
}

func TestAuthenticateSuccessResetsAttempts(t *testing.T) {
	conn := testDB(t)
	guard := NewGuard(conn, "admin@example.com", "supersecret")

	if _, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret"); errAuth != nil {
		t.Fatalf("provision: %v", errAuth)
	}
	for i := 0; i < 3; i++ {
		guard.Authenticate(context.Background(), "admin@example.com", "wrong")
	}

	res, errAuth := guard.Authenticate(context.Background(), "admin@example.com", "supersecret")
	if errAuth != nil {
		t.Fatalf("authenticate: %v", errAuth)
	}
	if res.Admin.LoginAttempts != 0 {
		t.Fatalf("attempts not reset, got %d", res.Admin.LoginAttempts)
	}
	if res.Admin.LastLogin == nil {
		t.Fatalf("lastLogin not stamped")
	}
}
