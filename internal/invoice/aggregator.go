package invoice

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelonline/veraclub-invoicer/internal/booking"
	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/models"
)

// CustomerMeta carries invoice header fields resolved from the booking
type CustomerMeta struct {
	Name  string
	Email string
	Notes string
}

// Aggregator assembles complete invoices from normalized line items
type Aggregator struct {
	dueDays int
	vatRate float64
	now     func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// NewAggregator creates an aggregator; dueDays is the payment term in
// calendar days, vatRate the fixed tax rate carried onto the invoice
func NewAggregator(dueDays int, vatRate float64) *Aggregator {
	return &Aggregator{dueDays: dueDays, vatRate: vatRate, now: time.Now}
}

// Aggregate builds the invoice record for a reservation. Fails with
// ErrNoBillableBookings when the item sequence is empty.
func (a *Aggregator) Aggregate(items []models.LineItem, meta CustomerMeta, h *hotel.Hotel, reservationNumber string) (*models.Invoice, error) {
	if len(items) == 0 {
		return nil, booking.ErrNoBillableBookings
	}

	var subtotal, tax, total decimal.Decimal
	for _, item := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Subtotal))
		tax = tax.Add(decimal.NewFromFloat(item.Tax))
		total = total.Add(decimal.NewFromFloat(item.Total))
	}

	now := a.now()
	date := now.Truncate(24 * time.Hour)

	return &models.Invoice{
		ID:                uuid.NewString(),
		InvoiceNumber:     a.nextInvoiceNumber(now),
		ReservationNumber: reservationNumber,
		HotelID:           h.ID,
		CustomerName:      meta.Name,
		CustomerEmail:     meta.Email,
		Property:          h.Name,
		Date:              date,
		DueDate:           date.AddDate(0, 0, a.dueDays),
		Items:             items,
		Subtotal:          booking.RoundToHalf(subtotal).InexactFloat64(),
		Tax:               booking.RoundToHalf(tax).InexactFloat64(),
		Total:             booking.RoundToHalf(total).InexactFloat64(),
		VATRate:           a.vatRate,
		Notes:             meta.Notes,
		Status:            models.InvoiceStatusDraft,
		CreatedAt:         now,
	}, nil
}

// nextInvoiceNumber issues a millisecond-timestamp number, bumped forward
// when two invoices land on the same millisecond
func (a *Aggregator) nextInvoiceNumber(now time.Time) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp := now.UnixMilli()
	if stamp <= a.lastStamp {
		stamp = a.lastStamp + 1
	}
	a.lastStamp = stamp

	return "INV-" + strconv.FormatInt(stamp, 10)
}
