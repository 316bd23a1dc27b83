package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/clients"
)

// ClientsPDF renders an A4 client database report.
func ClientsPDF(w io.Writer, salonName string, rows []*clients.Client) error {
	pdf := newReport(salonName, "CLIENT DATABASE REPORT")

	var totalLTV float64
	var totalMessages int
	for _, c := range rows {
		totalLTV += c.LifetimeValue
		totalMessages += c.TotalMessages
	}
	avgMessages := 0
	if len(rows) > 0 {
		avgMessages = totalMessages / len(rows)
	}
	writeSummary(pdf, [][2]string{
		{"Total Clients", strconv.Itoa(len(rows))},
		{"LTV Total", formatMoney(totalLTV)},
		{"Avg Messages", strconv.Itoa(avgMessages)},
	})

	widths := []float64{12, 40, 30, 22, 18, 38, 20}
	writeTableHeader(pdf, widths, []string{"ID", "Name", "Phone", "Status", "Msgs", "Last Contact", "LTV"})
	pdf.SetFont("Helvetica", "", 9)
	for _, c := range rows {
		cells := []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Phone,
			c.Status,
			strconv.Itoa(c.TotalMessages),
			c.LastContact.Format(timeLayout),
			formatMoney(c.LifetimeValue),
		}
		writeTableRow(pdf, widths, cells)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

// BookingsPDF renders an A4 bookings report.
func BookingsPDF(w io.Writer, salonName string, rows []*bookings.Booking) error {
	pdf := newReport(salonName, "BOOKINGS REPORT")

	var revenue float64
	completed := 0
	for _, b := range rows {
		if b.Status == bookings.StatusCompleted {
			completed++
			revenue += b.Revenue
		}
	}
	writeSummary(pdf, [][2]string{
		{"Total Bookings", strconv.Itoa(len(rows))},
		{"Completed", strconv.Itoa(completed)},
		{"Revenue", formatMoney(revenue)},
	})

	widths := []float64{12, 36, 40, 24, 18, 22, 28}
	writeTableHeader(pdf, widths, []string{"ID", "Client", "Service", "Date", "Time", "Status", "Revenue"})
	pdf.SetFont("Helvetica", "", 9)
	for _, b := range rows {
		cells := []string{
			strconv.FormatInt(b.ID, 10),
			b.ClientName,
			b.ServiceName,
			b.Date,
			b.Time,
			b.Status,
			formatMoney(b.Revenue),
		}
		writeTableRow(pdf, widths, cells)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

func newReport(salonName, subtitle string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(102, 126, 234)
	pdf.CellFormat(0, 12, salonName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 7, subtitle, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Generated: "+time.Now().Format("January 2, 2006 at 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	return pdf
}

func writeSummary(pdf *fpdf.Fpdf, cells [][2]string) {
	width := 180.0 / float64(len(cells))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(102, 126, 234)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range cells {
		pdf.CellFormat(width, 9, c[0], "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(255, 255, 255)
	pdf.SetTextColor(31, 41, 55)
	for _, c := range cells {
		pdf.CellFormat(width, 9, c[1], "1", 0, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func writeTableHeader(pdf *fpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(102, 126, 234)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(31, 41, 55)
}

func writeTableRow(pdf *fpdf.Fpdf, widths []float64, cells []string) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}
