package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BEDROCK_MODEL_ID", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BedrockModelID != "" {
		t.Fatalf("expected default bedrock model empty, got %s", cfg.BedrockModelID)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.ResetTokenTTL != time.Hour {
		t.Fatalf("expected 1h reset token ttl, got %s", cfg.ResetTokenTTL)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Fatalf("expected 10MB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.BotHistoryLimit != 10 {
		t.Fatalf("expected default history limit, got %d", cfg.BotHistoryLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("IG_VERIFY_TOKEN", "verify-me")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("ALLOWED_ORIGINS", "https://app.salon.example, https://admin.salon.example")
	t.Setenv("RATE_LIMIT_PER_MIN", "60")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.InstagramVerifyToken != "verify-me" {
		t.Fatalf("expected verify token override, got %s", cfg.InstagramVerifyToken)
	}
	if cfg.GeminiModel != "gemini-1.5-pro" {
		t.Fatalf("expected model override, got %s", cfg.GeminiModel)
	}
	if cfg.SessionTTL != 48*time.Hour {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.salon.example" {
		t.Fatalf("expected trimmed origins list, got %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitPerMin != 60 {
		t.Fatalf("expected rate limit override, got %d", cfg.RateLimitPerMin)
	}
}
