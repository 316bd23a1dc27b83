package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/clients"
)

// headerFill matches the dashboard accent color.
const headerFill = "667EEA"

// ClientsExcel writes an xlsx workbook with one styled sheet.
func ClientsExcel(w io.Writer, rows []*clients.Client) error {
	records := make([][]any, 0, len(rows))
	for _, c := range rows {
		records = append(records, []any{
			c.ID, c.Name, c.Username, c.Phone, c.Status,
			c.TotalMessages,
			c.FirstContact.Format(timeLayout),
			c.LastContact.Format(timeLayout),
			c.LifetimeValue,
		})
	}
	return writeWorkbook(w, "Clients", clientHeaders, records)
}

// BookingsExcel writes an xlsx workbook with one styled sheet.
func BookingsExcel(w io.Writer, rows []*bookings.Booking) error {
	records := make([][]any, 0, len(rows))
	for _, b := range rows {
		records = append(records, []any{
			b.ID, b.ClientName, b.ClientPhone, b.ServiceName,
			b.Date, b.Time, b.Status, b.Revenue,
			b.CreatedAt.Format(timeLayout),
		})
	}
	return writeWorkbook(w, "Bookings", bookingHeaders, records)
}

func writeWorkbook(w io.Writer, sheet string, headers []string, records [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("export: column name: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("export: apply style: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}

	for i, record := range records {
		cell := "A" + strconv.Itoa(i+2)
		rec := record
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
