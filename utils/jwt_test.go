package utils

import (
	"testing"

	"tutordesk/config"
	"tutordesk/models"
)

func setTestEncryptionKey(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{EncryptionKey: "test-signing-key"}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestGenerateAndParseJWTToken(t *testing.T) {
	setTestEncryptionKey(t)

	user := &models.User{TokenVersion: 3}
	user.ID = 42

	access, refresh, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	if access == refresh {
		t.Error("access and refresh tokens must differ")
	}

	claims, err := ParseJWTToken(access)
	if err != nil {
		t.Fatalf("ParseJWTToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
}

func TestParseJWTTokenRejectsTampering(t *testing.T) {
	setTestEncryptionKey(t)

	user := &models.User{}
	user.ID = 1
	access, _, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	if _, err := ParseJWTToken(access + "x"); err == nil {
		t.Error("expected a signature error for a tampered token")
	}
	if _, err := ParseJWTToken("not-a-token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}
