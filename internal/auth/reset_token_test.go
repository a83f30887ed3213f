package auth

import (
	"errors"
	"testing"
	"time"
)

func TestResetTokenManager_IssueAndParse(t *testing.T) {
	m := NewResetTokenManager("test-secret", 0)
	if m.TTL() != DefaultResetTokenTTL {
		t.Errorf("TTL() = %v, want %v", m.TTL(), DefaultResetTokenTTL)
	}

	token, err := m.Issue("user-1", "hash-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, fingerprint, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}
	if !m.VerifyFingerprint("user-1", "hash-1", fingerprint) {
		t.Error("fingerprint should match the hash it was issued for")
	}
	if m.VerifyFingerprint("user-1", "hash-2", fingerprint) {
		t.Error("fingerprint should not match after the password hash changes")
	}
	if m.VerifyFingerprint("user-2", "hash-1", fingerprint) {
		t.Error("fingerprint should not match another user")
	}
}

func TestResetTokenManager_Expired(t *testing.T) {
	m := NewResetTokenManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := m.Issue("user-1", "hash-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, _, err := m.Parse(token); !errors.Is(err, ErrExpiredResetToken) {
		t.Fatalf("Parse() error = %v, want ErrExpiredResetToken", err)
	}
}

func TestResetTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewResetTokenManager("other-secret", 0).Issue("user-1", "hash-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	m := NewResetTokenManager("test-secret", 0)
	if _, _, err := m.Parse(token); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("Parse() error = %v, want ErrInvalidResetToken", err)
	}
	if _, _, err := m.Parse("not-a-jwt"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("Parse(garbage) error = %v, want ErrInvalidResetToken", err)
	}
}
