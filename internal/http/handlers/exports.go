package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mlediamant/salon-crm/internal/analytics"
	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/clients"
	"github.com/mlediamant/salon-crm/internal/export"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// ExportsHandler streams CSV, Excel and PDF exports of the main
// listings. Every export carries exactly the rows the matching list
// endpoint would return.
type ExportsHandler struct {
	clients   clients.Repository
	bookings  bookings.Repository
	analytics *analytics.Service
	salonName string
	logger    *logging.Logger
}

// NewExportsHandler creates the exports handler.
func NewExportsHandler(clientRepo clients.Repository, bookingRepo bookings.Repository, analyticsSvc *analytics.Service, salonName string, logger *logging.Logger) *ExportsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExportsHandler{
		clients:   clientRepo,
		bookings:  bookingRepo,
		analytics: analyticsSvc,
		salonName: salonName,
		logger:    logger,
	}
}

const (
	formatCSV   = "csv"
	formatExcel = "excel"
	formatPDF   = "pdf"
)

// Clients exports the full client listing.
// GET /admin/api/export/clients?format=csv|excel|pdf
func (h *ExportsHandler) Clients(w http.ResponseWriter, r *http.Request) {
	rows, err := h.clients.List(r.Context(), clients.ListFilter{})
	if err != nil {
		h.logger.Error("export clients listing failed", "error", err)
		jsonError(w, "could not export clients", http.StatusInternalServerError)
		return
	}

	switch exportFormat(r) {
	case formatCSV:
		setAttachment(w, "clients", "csv", "text/csv; charset=utf-8")
		err = export.ClientsCSV(w, rows)
	case formatExcel:
		setAttachment(w, "clients", "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.ClientsExcel(w, rows)
	case formatPDF:
		setAttachment(w, "clients", "pdf", "application/pdf")
		err = export.ClientsPDF(w, h.salonName, rows)
	default:
		jsonError(w, "format must be csv, excel or pdf", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("export clients failed", "error", err)
	}
}

// Bookings exports the full booking listing.
// GET /admin/api/export/bookings?format=csv|excel|pdf
func (h *ExportsHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.bookings.List(r.Context(), bookings.ListFilter{})
	if err != nil {
		h.logger.Error("export bookings listing failed", "error", err)
		jsonError(w, "could not export bookings", http.StatusInternalServerError)
		return
	}

	switch exportFormat(r) {
	case formatCSV:
		setAttachment(w, "bookings", "csv", "text/csv; charset=utf-8")
		err = export.BookingsCSV(w, rows)
	case formatExcel:
		setAttachment(w, "bookings", "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.BookingsExcel(w, rows)
	case formatPDF:
		setAttachment(w, "bookings", "pdf", "application/pdf")
		err = export.BookingsPDF(w, h.salonName, rows)
	default:
		jsonError(w, "format must be csv, excel or pdf", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("export bookings failed", "error", err)
	}
}

// Analytics exports the report for the requested window as CSV.
// GET /admin/api/export/analytics
func (h *ExportsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportWindow(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.analytics.Analytics(r.Context(), from, to)
	if err != nil {
		h.logger.Error("export analytics report failed", "error", err)
		jsonError(w, "could not export analytics", http.StatusInternalServerError)
		return
	}

	setAttachment(w, "analytics", "csv", "text/csv; charset=utf-8")
	if err := export.AnalyticsCSV(w, report); err != nil {
		h.logger.Error("export analytics failed", "error", err)
	}
}

func exportFormat(r *http.Request) string {
	format := r.URL.Query().Get("format")
	if format == "" {
		return formatCSV
	}
	return format
}

func setAttachment(w http.ResponseWriter, name, ext, contentType string) {
	stamp := time.Now().Format("20060102_1504")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.%s", name, stamp, ext))
}
