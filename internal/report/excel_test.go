package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/models"
)

func sampleInvoices() []models.Invoice {
	sentAt := time.Date(2024, 1, 21, 9, 30, 0, 0, time.UTC)
	return []models.Invoice{
		{
			InvoiceNumber:     "INV-1705752000000",
			ReservationNumber: "618",
			Property:          "Sunset Beach",
			CustomerName:      "Hosteda Hotel Srl",
			CustomerEmail:     "booking@hostedahotel.com",
			Date:              time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			DueDate:           time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC),
			Subtotal:          1500,
			Tax:               225,
			Total:             1725,
			Status:            models.InvoiceStatusSent,
			SentAt:            &sentAt,
		},
		{
			InvoiceNumber:     "INV-1705752000001",
			ReservationNumber: "619",
			Property:          "Zanzibar Village",
			CustomerName:      "Jane Traveller",
			Date:              time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			DueDate:           time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC),
			Subtotal:          800,
			Tax:               120,
			Total:             920,
			Status:            models.InvoiceStatusDraft,
		},
	}
}

func TestExport_RegisterContents(t *testing.T) {
	data, err := NewExcelExporter(zap.NewNop()).Export(sampleInvoices())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Invoice #", rows[0][0])
	assert.Equal(t, "Total", rows[0][9])

	assert.Equal(t, "INV-1705752000000", rows[1][0])
	assert.Equal(t, "618", rows[1][1])
	assert.Equal(t, "Sunset Beach", rows[1][2])
	assert.Equal(t, "2024-01-20", rows[1][5])
	assert.Equal(t, "2024-02-19", rows[1][6])
	assert.Equal(t, "1725", rows[1][9])
	assert.Equal(t, "sent", rows[1][10])
	assert.Equal(t, "2024-01-21 09:30", rows[1][11])

	assert.Equal(t, "draft", rows[2][10])
}

func TestExport_EmptyRegister(t *testing.T) {
	data, err := NewExcelExporter(zap.NewNop()).Export(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Invoice #", rows[0][0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice-register-2024-01-20.xlsx", Filename("2024-01-20"))
}
