package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mlediamant/salon-crm/internal/analytics"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// DashboardHandler serves the stats, analytics and funnel endpoints.
type DashboardHandler struct {
	analytics *analytics.Service
	logger    *logging.Logger
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(svc *analytics.Service, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{analytics: svc, logger: logger}
}

// Stats returns the dashboard counters.
// GET /admin/api/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", "error", err)
		jsonError(w, "could not load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Analytics returns the report for a period. The window comes from
// ?period=7d|30d|90d or explicit ?date_from/?date_to (YYYY-MM-DD),
// defaulting to the last 30 days.
// GET /admin/api/analytics
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportWindow(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.analytics.Analytics(r.Context(), from, to)
	if err != nil {
		h.logger.Error("analytics report failed", "error", err)
		jsonError(w, "could not build report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Funnel returns the conversion funnel.
// GET /admin/api/funnel
func (h *DashboardHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	funnel, err := h.analytics.Funnel(r.Context())
	if err != nil {
		h.logger.Error("funnel failed", "error", err)
		jsonError(w, "could not build funnel", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, funnel)
}

type badWindowError string

func (e badWindowError) Error() string { return string(e) }

func reportWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := time.Now().UTC()

	if dateFrom := q.Get("date_from"); dateFrom != "" {
		from, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return time.Time{}, time.Time{}, badWindowError("date_from must be YYYY-MM-DD")
		}
		to := now
		if dateTo := q.Get("date_to"); dateTo != "" {
			to, err = time.Parse("2006-01-02", dateTo)
			if err != nil {
				return time.Time{}, time.Time{}, badWindowError("date_to must be YYYY-MM-DD")
			}
			to = to.AddDate(0, 0, 1)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, badWindowError("date_to is before date_from")
		}
		return from, to, nil
	}

	days := 30
	if period := q.Get("period"); period != "" {
		n, err := strconv.Atoi(strings.TrimSuffix(period, "d"))
		if err != nil || n <= 0 {
			return time.Time{}, time.Time{}, badWindowError("period must look like 7d, 30d or 90d")
		}
		days = n
	}
	return now.AddDate(0, 0, -days), now, nil
}
