// Package pdf renders invoices into A4 documents. Render is a pure function
// of the invoice and hotel records: the same input yields identical bytes.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/models"
	"github.com/hotelonline/veraclub-invoicer/pkg/utils"
)

// Defaults for company address fields absent from the hotel record
const (
	defaultCompanyName = "Veraclub Zanzibar LTD"
	defaultLocation    = "Kiwengwa-Zanzibar (Tanzania)"
	defaultPOBox       = "P.O Box 2529"
)

const (
	pageMargin = 15.0
	tableWidth = 180.0
	lineHeight = 5.0
)

// Column widths of the item table, in mm
var colWidths = [7]float64{63, 21.5, 21.5, 14.5, 21.5, 16, 22}

var colHeaders = [7]string{"Description", "Check-in", "Check-out", "Nights", "Rate/Night", "VAT", "Total"}

// Render lays out an invoice for the given property and returns the PDF bytes
func Render(inv *models.Invoice, h *hotel.Hotel) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	// Pin the metadata clock so output depends only on the input records
	doc.SetCreationDate(inv.Date)
	doc.SetTitle(fmt.Sprintf("Invoice %s", sanitize(inv.InvoiceNumber)), false)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	writeHeader(doc, inv, h)
	writeItemTable(doc, inv)
	writeTotals(doc, inv)
	writeNotes(doc, inv)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func writeHeader(doc *gofpdf.Fpdf, inv *models.Invoice, h *hotel.Hotel) {
	top := doc.GetY()

	// Company identity and banking details, left column
	doc.SetFont("Helvetica", "B", 18)
	doc.SetTextColor(17, 24, 39)
	doc.CellFormat(100, 8, sanitize(orDefault(h.CompanyName, defaultCompanyName)), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(79, 70, 229)
	doc.CellFormat(100, 7, sanitize(h.Name), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(55, 65, 81)
	for _, line := range []string{
		orDefault(h.Location, defaultLocation),
		orDefault(h.POBox, defaultPOBox),
		"TINN: " + h.TINNumber,
		"Reg No: " + h.RegistrationNumber,
		"Tel: " + h.Phone,
		"Account: " + h.AccountNumber,
		"Swift: " + h.SwiftCode,
	} {
		doc.CellFormat(100, lineHeight, sanitize(line), "", 1, "L", false, 0, "")
	}
	leftBottom := doc.GetY()

	// Invoice info box, right column
	infoX := pageMargin + 115
	doc.SetXY(infoX, top)
	doc.SetFillColor(248, 250, 252)
	doc.SetDrawColor(229, 231, 235)
	doc.Rect(infoX, top, 65, 46, "FD")

	doc.SetXY(infoX+4, top+3)
	writeInfoPair(doc, infoX+4, "INVOICE #", inv.InvoiceNumber)
	writeInfoPair(doc, infoX+4, "RESERVATION", inv.ReservationNumber)
	writeInfoPair(doc, infoX+4, "DATE", formatDate(inv.Date))
	writeInfoPair(doc, infoX+4, "DUE DATE", formatDate(inv.DueDate))

	doc.SetY(maxY(leftBottom, top+46) + 8)

	if inv.CustomerName != "" {
		doc.SetFont("Helvetica", "", 10)
		doc.SetTextColor(55, 65, 81)
		doc.CellFormat(tableWidth, lineHeight, sanitize("Billed to: "+inv.CustomerName), "", 1, "L", false, 0, "")
		doc.Ln(2)
	}
}

func writeInfoPair(doc *gofpdf.Fpdf, x float64, label, value string) {
	doc.SetX(x)
	doc.SetFont("Helvetica", "", 7)
	doc.SetTextColor(107, 114, 128)
	doc.CellFormat(57, 4, label, "", 1, "L", false, 0, "")
	doc.SetX(x)
	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(17, 24, 39)
	doc.CellFormat(57, 5, sanitize(value), "", 1, "L", false, 0, "")
	doc.Ln(1)
}

func writeItemTable(doc *gofpdf.Fpdf, inv *models.Invoice) {
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(248, 250, 252)
	doc.SetDrawColor(229, 231, 235)
	doc.SetTextColor(55, 65, 81)
	for i, header := range colHeaders {
		doc.CellFormat(colWidths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	vatLabel := fmt.Sprintf("%.0f%%", inv.VATRate*100)
	for _, item := range inv.Items {
		writeItemRow(doc, item, vatLabel)
	}
}

// writeItemRow prints one row, letting the description wrap and stretching
// the remaining cells to the row height
func writeItemRow(doc *gofpdf.Fpdf, item models.LineItem, vatLabel string) {
	desc := sanitize(item.Description)
	lines := doc.SplitText(desc, colWidths[0]-2)
	rowH := maxY(float64(len(lines))*lineHeight+2, 8)

	x := pageMargin
	y := doc.GetY()

	// break the table manually so a row never straddles two pages
	_, pageH := doc.GetPageSize()
	if y+rowH > pageH-pageMargin {
		doc.AddPage()
		y = doc.GetY()
	}

	doc.Rect(x, y, colWidths[0], rowH, "D")
	doc.SetXY(x+1, y+1)
	doc.MultiCell(colWidths[0]-2, lineHeight, desc, "", "L", false)

	cells := [6]string{
		formatDate(item.CheckIn),
		formatDate(item.CheckOut),
		fmt.Sprintf("%d", item.Nights),
		formatMoney(item.RatePerNight),
		vatLabel,
		formatMoney(item.Total),
	}
	cx := x + colWidths[0]
	for i, cell := range cells {
		doc.SetXY(cx, y)
		doc.CellFormat(colWidths[i+1], rowH, cell, "1", 0, "L", false, 0, "")
		cx += colWidths[i+1]
	}

	doc.SetXY(x, y+rowH)
}

func writeTotals(doc *gofpdf.Fpdf, inv *models.Invoice) {
	doc.Ln(8)
	boxX := pageMargin + tableWidth - 80
	boxY := doc.GetY()
	doc.SetFillColor(248, 250, 252)
	doc.SetDrawColor(229, 231, 235)
	doc.Rect(boxX, boxY, 80, 34, "FD")

	doc.SetXY(boxX+6, boxY+5)
	writeTotalRow(doc, boxX+6, "Subtotal:", formatMoney(inv.Subtotal), 11, false)
	writeTotalRow(doc, boxX+6, fmt.Sprintf("VAT (%.0f%%):", inv.VATRate*100), formatMoney(inv.Tax), 11, false)
	doc.SetDrawColor(229, 231, 235)
	doc.Line(boxX+6, doc.GetY()+2, boxX+74, doc.GetY()+2)
	doc.SetY(doc.GetY() + 4)
	writeTotalRow(doc, boxX+6, "Total:", formatMoney(inv.Total), 13, true)

	doc.SetY(boxY + 34 + 6)
}

func writeTotalRow(doc *gofpdf.Fpdf, x float64, label, value string, size float64, accent bool) {
	doc.SetX(x)
	doc.SetFont("Helvetica", "B", size)
	doc.SetTextColor(17, 24, 39)
	doc.CellFormat(34, 7, label, "", 0, "L", false, 0, "")
	if accent {
		doc.SetTextColor(79, 70, 229)
	}
	doc.CellFormat(34, 7, value, "", 1, "R", false, 0, "")
}

func writeNotes(doc *gofpdf.Fpdf, inv *models.Invoice) {
	if inv.Notes == "" {
		return
	}
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(107, 114, 128)
	doc.MultiCell(tableWidth, lineHeight, sanitize(inv.Notes), "", "L", false)
}

func sanitize(s string) string {
	return utils.SanitizeASCII(s)
}

// formatMoney renders a currency value with exactly two decimal places
func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// formatDate renders a date as day/month/year; zero dates render empty
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func maxY(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
