package booking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/models"
	"github.com/hotelonline/veraclub-invoicer/pkg/utils"
)

// Normalizer turns raw booking transactions into invoice line items
type Normalizer struct {
	vatRate decimal.Decimal
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer with the given VAT rate (e.g. 0.15)
func NewNormalizer(vatRate float64, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		vatRate: decimal.NewFromFloat(vatRate),
		logger:  logger,
	}
}

// RoundToHalf rounds a value to the nearest 0.5 unit
func RoundToHalf(d decimal.Decimal) decimal.Decimal {
	two := decimal.NewFromInt(2)
	return d.Mul(two).Round(0).Div(two)
}

// Normalize derives line items from every transaction of every reservation.
// Cancelled and unpriced transactions are skipped; a billable transaction
// with a stay shorter than one night fails the whole normalization.
func (n *Normalizer) Normalize(resp *models.BookingResponse) ([]models.LineItem, error) {
	if resp == nil || len(resp.Reservations.Reservation) == 0 {
		return nil, ErrNoReservations
	}

	var items []models.LineItem
	for _, reservation := range resp.Reservations.Reservation {
		for _, tran := range reservation.BookingTran {
			rate := resolveRate(tran)
			if rate.LessThanOrEqual(decimal.Zero) || tran.Status == models.StatusCancelled {
				n.logger.Debug("Skipping non-billable transaction",
					zap.String("status", tran.Status),
					zap.String("rate", rate.String()))
				continue
			}

			item, err := n.buildItem(tran, rate)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	return items, nil
}

func (n *Normalizer) buildItem(tran models.BookingTran, rate decimal.Decimal) (models.LineItem, error) {
	checkIn, err := parseStayDate(tran.Start)
	if err != nil {
		return models.LineItem{}, fmt.Errorf("check-in %q: %w", tran.Start, ErrInvalidDateRange)
	}
	checkOut, err := parseStayDate(tran.End)
	if err != nil {
		return models.LineItem{}, fmt.Errorf("check-out %q: %w", tran.End, ErrInvalidDateRange)
	}

	nights := nightsBetween(checkIn, checkOut)
	if nights < 1 {
		return models.LineItem{}, fmt.Errorf("stay %s to %s: %w", tran.Start, tran.End, ErrInvalidDateRange)
	}

	// Each stage is rounded to the half unit independently
	subtotal := RoundToHalf(rate.Mul(decimal.NewFromInt(int64(nights))))
	tax := RoundToHalf(subtotal.Mul(n.vatRate))
	total := RoundToHalf(subtotal.Mul(decimal.NewFromInt(1).Add(n.vatRate)))

	return models.LineItem{
		Description:  buildDescription(tran),
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Nights:       nights,
		RatePerNight: RoundToHalf(rate).InexactFloat64(),
		Subtotal:     subtotal.InexactFloat64(),
		Tax:          tax.InexactFloat64(),
		Total:        total.InexactFloat64(),
	}, nil
}

// resolveRate reads the nightly pre-tax rate, preferring the nested rental
// info over the transaction-level field. Missing or unparseable rates
// resolve to zero so the transaction is filtered out.
func resolveRate(tran models.BookingTran) decimal.Decimal {
	raw := tran.RentPreTax
	if len(tran.RentalInfo) > 0 && tran.RentalInfo[0].RentPreTax != "" {
		raw = tran.RentalInfo[0].RentPreTax
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// nightsBetween counts whole nights, rounding partial days up
func nightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

var stayDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseStayDate(s string) (time.Time, error) {
	for _, layout := range stayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// buildDescription joins room, guest and voucher details, dropping empty parts
func buildDescription(tran models.BookingTran) string {
	var parts []string

	if tran.RoomTypeName != "" || tran.RoomName != "" {
		parts = append(parts, utils.CollapseSpaces(
			fmt.Sprintf("%s (Room %s)", tran.RoomTypeName, tran.RoomName)))
	}

	guests := []string{formatGuest(models.Guest{
		Salutation: tran.Salutation,
		FirstName:  tran.FirstName,
		LastName:   tran.LastName,
	})}
	for _, sharer := range tran.Sharer {
		guests = append(guests, formatGuest(sharer))
	}
	if joined := strings.Join(nonEmpty(guests), ", "); joined != "" {
		parts = append(parts, joined)
	}

	if tran.VoucherNo != "" {
		parts = append(parts, "Voucher: "+tran.VoucherNo)
	}

	return strings.Join(parts, ", ")
}

func formatGuest(g models.Guest) string {
	return utils.CollapseSpaces(strings.Join([]string{g.Salutation, g.FirstName, g.LastName}, " "))
}

func nonEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// CustomerMeta extracts invoice header fields from the first reservation
func CustomerMeta(resp *models.BookingResponse) (name, email, notes string) {
	if resp == nil || len(resp.Reservations.Reservation) == 0 {
		return "", "", ""
	}
	first := resp.Reservations.Reservation[0]
	name = first.BookedBy
	email = first.Email
	if len(first.BookingTran) > 0 && first.BookingTran[0].PackageName != "" {
		notes = "Package: " + first.BookingTran[0].PackageName
	}
	return name, email, notes
}
