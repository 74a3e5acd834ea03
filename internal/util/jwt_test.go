package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTGenerateAndParse(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()
	username := "camper"

	token, expiresAt, err := manager.Generate(userID, "user@example.com", &username)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expiry should be in the future")
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email claim: %q", claims.Email)
	}
	if claims.Username == nil || *claims.Username != username {
		t.Fatalf("unexpected username claim: %v", claims.Username)
	}
}

func TestJWTParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).Generate(uuid.New(), "user@example.com", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := NewJWTManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestJWTParseRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)
	token, _, err := manager.Generate(uuid.New(), "user@example.com", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := manager.Parse(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTParseRejectsGarbage(t *testing.T) {
	if _, err := NewJWTManager("test-secret", time.Hour).Parse("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
