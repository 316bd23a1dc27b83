package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Instagram Graph API
	InstagramVerifyToken string
	InstagramAppSecret   string
	InstagramPageToken   string
	GraphAPIVersion      string

	// Gemini (primary sales model) and Bedrock (fallback)
	GeminiAPIKey    string
	GeminiModel     string
	AWSRegion       string
	AWSAccessKeyID  string
	AWSSecretKey    string
	BedrockModelID  string
	BotHistoryLimit int

	// Salon identity injected into the system prompt
	SalonName    string
	SalonAddress string
	SalonPhone   string
	SalonHours   string
	BookingURL   string

	// Admin auth
	AdminJWTSecret string
	SessionTTL     time.Duration
	ResetTokenTTL  time.Duration
	SeedAdminEmail string
	SeedAdminPass  string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Redis client cache
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	ClientCacheTTL time.Duration

	// Outbound email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// HTTP surface
	AllowedOrigins         []string
	RateLimitPerMin        int
	RateLimitBurst         int
	WebhookRateLimitPerMin int
	WebhookRateLimitBurst  int
	ShutdownTimeout        time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		InstagramVerifyToken: getEnv("IG_VERIFY_TOKEN", ""),
		InstagramAppSecret:   getEnv("IG_APP_SECRET", ""),
		InstagramPageToken:   getEnv("IG_PAGE_ACCESS_TOKEN", ""),
		GraphAPIVersion:      getEnv("GRAPH_API_VERSION", "v21.0"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		BedrockModelID:  getEnv("BEDROCK_MODEL_ID", ""),
		BotHistoryLimit: getEnvAsInt("BOT_HISTORY_LIMIT", 10),

		SalonName:    getEnv("SALON_NAME", "Beauty Salon"),
		SalonAddress: getEnv("SALON_ADDRESS", ""),
		SalonPhone:   getEnv("SALON_PHONE", ""),
		SalonHours:   getEnv("SALON_HOURS", ""),
		BookingURL:   getEnv("BOOKING_URL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		ResetTokenTTL:  getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		SeedAdminEmail: getEnv("SEED_ADMIN_EMAIL", "admin@salon.local"),
		SeedAdminPass:  getEnv("SEED_ADMIN_PASSWORD", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		ClientCacheTTL: getEnvAsDuration("CLIENT_CACHE_TTL", 5*time.Minute),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Beauty Salon"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		AllowedOrigins:         splitAndTrim(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitPerMin:        getEnvAsInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:         getEnvAsInt("RATE_LIMIT_BURST", 30),
		WebhookRateLimitPerMin: getEnvAsInt("WEBHOOK_RATE_LIMIT_PER_MIN", 10),
		WebhookRateLimitBurst:  getEnvAsInt("WEBHOOK_RATE_LIMIT_BURST", 10),
		ShutdownTimeout:        getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
