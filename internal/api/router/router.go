package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mlediamant/salon-crm/internal/channels/instagram"
	"github.com/mlediamant/salon-crm/internal/http/handlers"
	httpmiddleware "github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/internal/ws"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	Webhook *instagram.WebhookHandler
	Hub     *ws.Hub

	Auth        *handlers.AuthHandler
	Clients     *handlers.ClientsHandler
	Chat        *handlers.ChatHandler
	Bookings    *handlers.BookingsHandler
	Services    *handlers.ServicesHandler
	Statuses    *handlers.StatusesHandler
	Users       *handlers.UsersHandler
	Dashboard   *handlers.DashboardHandler
	Exports     *handlers.ExportsHandler
	Uploads     *handlers.UploadsHandler
	BotSettings *handlers.BotSettingsHandler
	Activity    *handlers.ActivityHandler

	Sessions        httpmiddleware.SessionValidator
	AdminAuthSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second and burst for the admin API limiter.
	RateLimitPerSec float64
	RateLimitBurst  int

	// Separate, tighter limiter for inbound webhook deliveries.
	WebhookRateLimitPerSec float64
	WebhookRateLimitBurst  int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: webhook verification and delivery, health,
	// metrics.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.Webhook != nil {
			public.Get("/webhook", cfg.Webhook.HandleVerification)
			inbound := public
			if cfg.WebhookRateLimitPerSec > 0 {
				inbound = public.With(httpmiddleware.RateLimit(cfg.WebhookRateLimitPerSec, cfg.WebhookRateLimitBurst))
			}
			inbound.Post("/webhook", cfg.Webhook.HandleInbound)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Login is rate limited but not session gated.
	r.Group(func(auth chi.Router) {
		if cfg.RateLimitPerSec > 0 {
			auth.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
		}
		auth.Post("/admin/api/login", cfg.Auth.Login)
		auth.Post("/admin/api/logout", cfg.Auth.Logout)
		auth.Post("/admin/api/forgot-password", cfg.Auth.ForgotPassword)
		auth.Post("/admin/api/reset-password", cfg.Auth.ResetPassword)
	})

	// The admin surface accepts a session cookie or a bearer JWT.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.SessionOrAdminJWT(cfg.Sessions, cfg.AdminAuthSecret))
		if cfg.RateLimitPerSec > 0 {
			admin.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
		}

		if cfg.Hub != nil {
			admin.Get("/ws", cfg.Hub.HandleWS)
		}

		admin.Route("/api", func(api chi.Router) {
			api.Get("/me", cfg.Auth.Me)
			api.Post("/users/create", cfg.Auth.Register)

			api.Get("/stats", cfg.Dashboard.Stats)
			api.Get("/analytics", cfg.Dashboard.Analytics)
			api.Get("/funnel", cfg.Dashboard.Funnel)

			api.Get("/clients", cfg.Clients.List)
			api.Get("/clients/{clientID}", cfg.Clients.Get)
			api.Route("/client/{clientID}", func(r chi.Router) {
				r.Post("/update", cfg.Clients.Update)
				r.Post("/status", cfg.Clients.SetStatus)
				r.Post("/notes", cfg.Clients.SetNotes)
				r.Post("/pin", cfg.Clients.TogglePin)
			})

			api.Get("/unread-count", cfg.Chat.UnreadCount)
			api.Get("/chats-update", cfg.Chat.ChatsUpdate)
			api.Route("/chat", func(r chi.Router) {
				r.Post("/send", cfg.Chat.Send)
				r.Get("/messages/{clientID}", cfg.Chat.Messages)
				r.Post("/message/{clientID}/{messageID}/delete", cfg.Chat.Delete)
				if cfg.Uploads != nil {
					r.Post("/upload", cfg.Uploads.Upload)
					r.Post("/voice", cfg.Uploads.Voice)
				}
			})
			if cfg.Uploads != nil {
				api.Get("/uploads/{fileType}/{filename}", cfg.Uploads.Serve)
			}

			api.Get("/bookings", cfg.Bookings.List)
			api.Post("/bookings/create", cfg.Bookings.Create)
			api.Route("/bookings/{bookingID}", func(r chi.Router) {
				r.Post("/status", cfg.Bookings.SetStatus)
				r.Post("/notes", cfg.Bookings.SetNotes)
				r.Post("/update", cfg.Bookings.Update)
				r.Post("/delete", cfg.Bookings.Delete)
			})

			api.Get("/services", cfg.Services.List)
			api.Post("/services/create", cfg.Services.Create)
			api.Post("/services/{serviceID}/update", cfg.Services.Update)
			api.Post("/services/{serviceID}/delete", cfg.Services.Delete)

			api.Get("/statuses", cfg.Statuses.List)
			api.Post("/statuses/create", cfg.Statuses.Create)
			api.Post("/statuses/{statusKey}/delete", cfg.Statuses.Delete)

			api.Get("/users", cfg.Users.List)
			api.Post("/users/{userID}/update", cfg.Users.Update)
			api.Post("/users/{userID}/delete", cfg.Users.Delete)

			api.Get("/export/clients", cfg.Exports.Clients)
			api.Get("/export/bookings", cfg.Exports.Bookings)
			api.Get("/export/analytics", cfg.Exports.Analytics)

			if cfg.BotSettings != nil {
				api.Get("/bot-settings", cfg.BotSettings.Get)
				api.Post("/bot-settings", cfg.BotSettings.Save)
			}
			if cfg.Activity != nil {
				api.Get("/activity", cfg.Activity.List)
			}
		})
	})

	return r
}
