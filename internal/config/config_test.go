package config

import (
	"strings"
	"testing"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without DATABASE_URL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hms_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDev() {
		t.Errorf("env = %q, want development", cfg.Env)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("conns = %d/%d, want 20/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.JWTTTLHours != 24 {
		t.Errorf("ttl = %d, want 24", cfg.JWTTTLHours)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hms_test")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.IsDev() {
		t.Error("production config reports dev mode")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	prod := &Config{Env: "production", JWTTTLHours: 24}
	if err := prod.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("production without secret err = %v", err)
	}

	prod.JWTSecret = "too-short"
	if err := prod.Validate(); err == nil {
		t.Error("short secret accepted")
	}

	prod.JWTSecret = strings.Repeat("x", 32)
	if err := prod.Validate(); err != nil {
		t.Errorf("valid production config rejected: %v", err)
	}

	dev := &Config{Env: "development", JWTTTLHours: 24}
	if err := dev.Validate(); err != nil {
		t.Errorf("dev config without secret rejected: %v", err)
	}

	dev.JWTTTLHours = 0
	if err := dev.Validate(); err == nil {
		t.Error("zero TTL accepted")
	}
}
