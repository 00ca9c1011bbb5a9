package security

import (
	"testing"
	"time"
)

func TestGenerateAndParseAdminToken(t *testing.T) {
	token, errGen := GenerateAdminToken("test-secret", 7, "admin@example.com", time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}

	claims, errParse := ParseAdminToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.AdminID != 7 || claims.Email != "admin@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != TokenIssuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestParseAdminTokenWrongSecret(t *testing.T) {
	token, errGen := GenerateAdminToken("secret-a", 1, "a@example.com", time.Hour)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	if _, errParse := ParseAdminToken("secret-b", token); errParse != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseAdminTokenExpired(t *testing.T) {
	token, errGen := GenerateAdminToken("test-secret", 1, "a@example.com", -time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}
	if _, errParse := ParseAdminToken("test-secret", token); errParse != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestParseAdminTokenGarbage(t *testing.T) {
	if _, errParse := ParseAdminToken("test-secret", "not-a-token"); errParse != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, errHash := HashPassword("correct horse battery staple")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if hash == "correct horse battery staple" {
		t.Fatalf("hash equals plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("wrong password accepted")
	}
}
