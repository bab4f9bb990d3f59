// Package report builds spreadsheet exports of the invoice register.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/models"
)

const registerSheet = "Invoices"

var registerHeaders = []interface{}{
	"Invoice #", "Reservation", "Property", "Customer", "Email",
	"Issue Date", "Due Date", "Subtotal", "VAT", "Total", "Status", "Sent At",
}

// ExcelExporter renders the invoice register as an xlsx workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new register exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export builds a workbook with one row per invoice, newest first as given
func (e *ExcelExporter) Export(invoices []models.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), registerSheet)

	if err := f.SetSheetRow(registerSheet, "A1", &registerHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, invoice := range invoices {
		sentAt := ""
		if invoice.SentAt != nil {
			sentAt = invoice.SentAt.Format("2006-01-02 15:04")
		}
		row := []interface{}{
			invoice.InvoiceNumber,
			invoice.ReservationNumber,
			invoice.Property,
			invoice.CustomerName,
			invoice.CustomerEmail,
			invoice.Date.Format("2006-01-02"),
			invoice.DueDate.Format("2006-01-02"),
			invoice.Subtotal,
			invoice.Tax,
			invoice.Total,
			invoice.Status,
			sentAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// widen the text-heavy columns so the register is readable as exported
	if err := f.SetColWidth(registerSheet, "A", "A", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(registerSheet, "C", "E", 28); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Info("Invoice register exported", zap.Int("invoices", len(invoices)))
	return buf.Bytes(), nil
}

// Filename returns the download name for an export produced now
func Filename(stamp string) string {
	return fmt.Sprintf("invoice-register-%s.xlsx", stamp)
}
