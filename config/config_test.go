package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.RegistrationCodeTTL != 10*time.Minute {
		t.Fatalf("expected 10m code ttl, got %s", cfg.RegistrationCodeTTL)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("expected 3s poll interval, got %s", cfg.PollInterval)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_TTL", "48h")
	t.Setenv("REGISTRATION_CODE_TTL", "5m")
	t.Setenv("TG_BOT_USERNAME", "proxEduBot")
	t.Setenv("ADMIN_ID", "555")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "testdb")

	cfg := Load()
	if cfg.AppPort != 9090 {
		t.Fatalf("expected APP_PORT override, got %d", cfg.AppPort)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Fatalf("expected memory driver, got %s", cfg.StorageDriver)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Fatalf("expected JWT_SECRET override, got %s", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 48*time.Hour {
		t.Fatalf("expected TOKEN_TTL 48h, got %s", cfg.TokenTTL)
	}
	if cfg.RegistrationCodeTTL != 5*time.Minute {
		t.Fatalf("expected REGISTRATION_CODE_TTL 5m, got %s", cfg.RegistrationCodeTTL)
	}
	if cfg.AdminID != 555 {
		t.Fatalf("expected ADMIN_ID 555, got %d", cfg.AdminID)
	}
	if cfg.BotURL() != "https://t.me/proxEduBot" {
		t.Fatalf("unexpected bot url %s", cfg.BotURL())
	}
	if cfg.PostgresURL() != "postgres://postgres:1234@db:5432/testdb?sslmode=disable" {
		t.Fatalf("unexpected postgres url %s", cfg.PostgresURL())
	}
}
