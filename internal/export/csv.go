package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mlediamant/salon-crm/internal/analytics"
	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/clients"
)

// utf8BOM prefixes every CSV so Excel detects the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const timeLayout = "2006-01-02 15:04"

var clientHeaders = []string{"ID", "Name", "Username", "Phone", "Status", "Messages", "First Contact", "Last Contact", "LTV"}

var bookingHeaders = []string{"ID", "Client", "Phone", "Service", "Date", "Time", "Status", "Revenue", "Created"}

// ClientsCSV writes one row per client, preceded by a UTF-8 BOM.
func ClientsCSV(w io.Writer, rows []*clients.Client) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("export: write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(clientHeaders); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, c := range rows {
		record := []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Username,
			c.Phone,
			c.Status,
			strconv.Itoa(c.TotalMessages),
			c.FirstContact.Format(timeLayout),
			c.LastContact.Format(timeLayout),
			formatMoney(c.LifetimeValue),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BookingsCSV writes one row per booking, preceded by a UTF-8 BOM.
func BookingsCSV(w io.Writer, rows []*bookings.Booking) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("export: write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(bookingHeaders); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, b := range rows {
		record := []string{
			strconv.FormatInt(b.ID, 10),
			b.ClientName,
			b.ClientPhone,
			b.ServiceName,
			b.Date,
			b.Time,
			b.Status,
			formatMoney(b.Revenue),
			b.CreatedAt.Format(timeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AnalyticsCSV writes the period report as stacked sections, matching
// how the dashboard presents it.
func AnalyticsCSV(w io.Writer, report *analytics.Report) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("export: write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	write := func(record ...string) {
		// Collect the first error through cw.Error().
		_ = cw.Write(record)
	}

	write("Analytics Report")
	write("Period", report.From, report.To)
	write()

	write("Bookings by Day")
	write("Date", "Count")
	for _, d := range report.BookingsByDay {
		write(d.Date, strconv.Itoa(d.Count))
	}
	write()

	write("Service Statistics")
	write("Service", "Count", "Revenue")
	for _, s := range report.ServiceStats {
		write(s.ServiceName, strconv.Itoa(s.Count), formatMoney(s.Revenue))
	}
	write()

	write("Booking Statuses")
	write("Status", "Count")
	for _, s := range report.StatusStats {
		write(s.Status, strconv.Itoa(s.Count))
	}
	write()

	write("Average Response Time (minutes)", strconv.FormatFloat(report.AvgResponseMinutes, 'f', 2, 64))

	cw.Flush()
	return cw.Error()
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
