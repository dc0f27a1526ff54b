package models

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	key, hash, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if !strings.HasPrefix(key, "cdk_") {
		t.Fatalf("key %q missing cdk_ prefix", key)
	}
	if len(hash) != 64 {
		t.Fatalf("hash length = %d, want 64", len(hash))
	}
	if HashAPIKey(key) != hash {
		t.Fatalf("hash does not match HashAPIKey(key)")
	}

	key2, hash2, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if key == key2 || hash == hash2 {
		t.Fatalf("expected unique keys per call")
	}
}

func TestHashAPIKeyIsDeterministic(t *testing.T) {
	if HashAPIKey("cdk_abc") != HashAPIKey("cdk_abc") {
		t.Fatalf("expected stable hash for same input")
	}
	if HashAPIKey("cdk_abc") == HashAPIKey("cdk_abd") {
		t.Fatalf("expected different hashes for different keys")
	}
}

func TestUserValidate(t *testing.T) {
	user := &User{
		OrganizationID: 1,
		Name:           "Jane Staff",
		Email:          "jane@example.test",
		Password:       "hashed-password",
		Role:           ROLE_USER,
		Status:         STATUS_ACTIVE,
	}
	if err := user.Validate(); err != nil {
		t.Fatalf("Validate failed on valid user: %v", err)
	}

	user.Email = "not-an-email"
	if err := user.Validate(); err == nil {
		t.Fatalf("expected validation to fail for bad email")
	}

	user.Email = "jane@example.test"
	user.Role = "superadmin"
	if err := user.Validate(); err == nil {
		t.Fatalf("expected validation to fail for unknown role")
	}
}
