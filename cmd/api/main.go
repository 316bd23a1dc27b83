package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mlediamant/salon-crm/cmd/mainconfig"
	"github.com/mlediamant/salon-crm/internal/analytics"
	"github.com/mlediamant/salon-crm/internal/api/router"
	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/bot"
	"github.com/mlediamant/salon-crm/internal/botcfg"
	"github.com/mlediamant/salon-crm/internal/channels/instagram"
	"github.com/mlediamant/salon-crm/internal/chat"
	"github.com/mlediamant/salon-crm/internal/clients"
	appconfig "github.com/mlediamant/salon-crm/internal/config"
	"github.com/mlediamant/salon-crm/internal/http/handlers"
	"github.com/mlediamant/salon-crm/internal/notify"
	"github.com/mlediamant/salon-crm/internal/observability/metrics"
	"github.com/mlediamant/salon-crm/internal/services"
	"github.com/mlediamant/salon-crm/internal/statuses"
	"github.com/mlediamant/salon-crm/internal/store"
	"github.com/mlediamant/salon-crm/internal/users"
	"github.com/mlediamant/salon-crm/internal/ws"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-crm API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := store.OpenPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db, err := store.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql handle", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	var clientRepo clients.Repository = clients.NewPostgresRepository(pool)
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		clientRepo = clients.NewCachedRepository(clientRepo, clients.NewCache(rdb, cfg.ClientCacheTTL))
		logger.Info("client cache enabled", "addr", cfg.RedisAddr)
	}
	chatRepo := chat.NewPostgresRepository(pool)
	bookingRepo := bookings.NewPostgresRepository(pool)
	draftRepo := bookings.NewPostgresDraftRepository(pool)
	serviceRepo := services.NewPostgresRepository(pool)
	statusRepo := statuses.NewPostgresRepository(pool)
	settingsStore := botcfg.NewPostgresStore(pool)
	auditRepo := audit.NewPostgresRepository(pool)
	auditLog := audit.NewLogger(auditRepo, logger)

	usersSvc := users.NewService(users.NewPostgresRepository(pool), logger, cfg.SessionTTL, cfg.ResetTokenTTL)
	if err := usersSvc.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPass); err != nil {
		logger.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	llm, closeLLM, err := buildLLM(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to configure LLM", "error", err)
		os.Exit(1)
	}
	defer closeLLM()

	notifier := notify.NewService(buildEmailSender(cfg, awsCfg, logger), cfg.SalonName, cfg.PublicBaseURL, logger)

	metricsHandler, botMetrics := setupBotMetrics()

	hub := ws.NewHub(logger)
	igClient := instagram.NewClient(cfg.InstagramPageToken, cfg.GraphAPIVersion)

	if cfg.InstagramAppSecret == "" {
		logger.Warn("IG_APP_SECRET is not set, every webhook delivery will fail signature verification")
	}

	processor := bot.NewProcessor(
		clientRepo, chatRepo, bookingRepo, draftRepo, serviceRepo,
		settingsStore, llm, igClient, logger,
		bot.ProcessorConfig{
			Salon: bot.SalonInfo{
				Name:       cfg.SalonName,
				Address:    cfg.SalonAddress,
				Phone:      cfg.SalonPhone,
				Hours:      cfg.SalonHours,
				BookingURL: cfg.BookingURL,
			},
			ModelID:      cfg.GeminiModel,
			HistoryLimit: cfg.BotHistoryLimit,
		},
	).WithBroadcaster(hub).WithMetrics(botMetrics)

	analyticsSvc := analytics.NewService(db, logger)

	secureCookies := cfg.Env == "production"
	routerCfg := &router.Config{
		Logger:          logger,
		Webhook:         instagram.NewWebhookHandler(cfg.InstagramVerifyToken, cfg.InstagramAppSecret, processor),
		Hub:             hub,
		Auth:            handlers.NewAuthHandler(usersSvc, notifier, auditLog, secureCookies, logger),
		Clients:         handlers.NewClientsHandler(clientRepo, auditLog, logger),
		Chat:            handlers.NewChatHandler(clientRepo, chatRepo, igClient, hub, auditLog, logger),
		Bookings:        handlers.NewBookingsHandler(bookingRepo, clientRepo, auditLog, logger),
		Services:        handlers.NewServicesHandler(serviceRepo, auditLog, logger),
		Statuses:        handlers.NewStatusesHandler(statusRepo, auditLog, logger),
		Users:           handlers.NewUsersHandler(usersSvc, auditLog, logger),
		Dashboard:       handlers.NewDashboardHandler(analyticsSvc, logger),
		Exports:         handlers.NewExportsHandler(clientRepo, bookingRepo, analyticsSvc, cfg.SalonName, logger),
		Uploads:         handlers.NewUploadsHandler(clientRepo, chatRepo, auditLog, cfg.UploadDir, cfg.MaxUploadBytes, logger),
		BotSettings:     handlers.NewBotSettingsHandler(settingsStore, auditLog, logger),
		Activity:        handlers.NewActivityHandler(auditRepo, logger),
		Sessions:        usersSvc,
		AdminAuthSecret: cfg.AdminJWTSecret,

		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.AllowedOrigins,
		RateLimitPerSec:    float64(cfg.RateLimitPerMin) / 60,
		RateLimitBurst:     cfg.RateLimitBurst,

		WebhookRateLimitPerSec: float64(cfg.WebhookRateLimitPerMin) / 60,
		WebhookRateLimitBurst:  cfg.WebhookRateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLM assembles the reply-generation chain: Gemini as the primary
// model with Bedrock Claude as a fallback when both are configured. The
// returned func releases the Gemini client.
func buildLLM(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (bot.LLMClient, func(), error) {
	closer := func() {}

	var llm bot.LLMClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := bot.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, closer, fmt.Errorf("gemini client: %w", err)
		}
		closer = func() { _ = gemini.Close() }
		llm = gemini
	}
	if cfg.BedrockModelID != "" {
		bedrock := bot.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		if llm != nil {
			llm = bot.NewFallbackLLMClient(llm, bedrock, logger)
		} else {
			llm = bedrock
		}
	}
	if llm == nil {
		return nil, closer, errors.New("no LLM configured: set GEMINI_API_KEY or BEDROCK_MODEL_ID")
	}
	return llm, closer, nil
}

// buildEmailSender picks the outbound email provider. A nil return is
// fine: notify.NewService logs reset links instead of sending them.
func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
	case "ses":
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SalonName,
		}, logger); s != nil {
			return s
		}
	}
	return nil
}

func setupBotMetrics() (http.Handler, *metrics.BotMetrics) {
	reg := prometheus.NewRegistry()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBotMetrics(reg)
}
