package invoice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/booking"
	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/hotelapi"
	"github.com/hotelonline/veraclub-invoicer/internal/models"
	"github.com/hotelonline/veraclub-invoicer/internal/pdf"
)

// BookingFetcher looks up reservations at the upstream API
type BookingFetcher interface {
	FetchBookings(ctx context.Context, token string, req hotelapi.BookingRequest) (*models.BookingResponse, error)
}

// Dispatcher emails a rendered invoice to the configured recipients
type Dispatcher interface {
	SendInvoice(ctx context.Context, token string, invoice *models.Invoice, pdfData []byte) error
}

// InvoiceStore persists generated invoices
type InvoiceStore interface {
	Create(invoice *models.Invoice) error
}

// PDFStore keeps rendered documents for preview and download
type PDFStore interface {
	SavePDF(invoiceNumber string, data []byte) (string, error)
}

// Service runs the full generation pipeline: booking lookup, normalization,
// aggregation, rendering, persistence and dispatch.
type Service struct {
	bookings   BookingFetcher
	normalizer *booking.Normalizer
	aggregator *Aggregator
	dispatcher Dispatcher
	invoices   InvoiceStore
	files      PDFStore
	hotels     *hotel.Directory
	logger     *zap.Logger
}

// NewService creates the invoice generation service
func NewService(
	bookings BookingFetcher,
	normalizer *booking.Normalizer,
	aggregator *Aggregator,
	dispatcher Dispatcher,
	invoices InvoiceStore,
	files PDFStore,
	hotels *hotel.Directory,
	logger *zap.Logger,
) *Service {
	return &Service{
		bookings:   bookings,
		normalizer: normalizer,
		aggregator: aggregator,
		dispatcher: dispatcher,
		invoices:   invoices,
		files:      files,
		hotels:     hotels,
		logger:     logger,
	}
}

// Result is the outcome of one generation run. EmailWarning is set when the
// invoice was generated but the email leg failed; the invoice itself is
// still persisted and downloadable.
type Result struct {
	Invoice      *models.Invoice `json:"invoice"`
	EmailWarning string          `json:"emailWarning,omitempty"`
}

// Generate produces, stores and dispatches an invoice for one reservation
func (s *Service) Generate(ctx context.Context, token, hotelID, reservationNumber string) (*Result, error) {
	h, err := s.hotels.ByID(hotelID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generating invoice",
		zap.String("hotel", h.Name),
		zap.String("reservation", reservationNumber))

	resp, err := s.bookings.FetchBookings(ctx, token, hotelapi.BookingRequest{
		HotelID:   h.UpstreamHotelID,
		AuthKey:   h.AuthKey,
		BookingID: reservationNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("booking lookup failed: %w", err)
	}

	items, err := s.normalizer.Normalize(resp)
	if err != nil {
		return nil, err
	}

	name, email, notes := booking.CustomerMeta(resp)
	inv, err := s.aggregator.Aggregate(items, CustomerMeta{Name: name, Email: email, Notes: notes}, h, reservationNumber)
	if err != nil {
		return nil, err
	}

	document, err := pdf.Render(inv, h)
	if err != nil {
		return nil, err
	}

	path, err := s.files.SavePDF(inv.InvoiceNumber, document)
	if err != nil {
		return nil, err
	}
	inv.PDFPath = path

	if err := s.invoices.Create(inv); err != nil {
		return nil, err
	}

	result := &Result{Invoice: inv}
	if err := s.dispatcher.SendInvoice(ctx, token, inv, document); err != nil {
		// Generation succeeded; surface the delivery failure as a warning
		s.logger.Warn("Invoice generated but email dispatch failed",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Error(err))
		result.EmailWarning = err.Error()
	} else {
		inv.Status = models.InvoiceStatusSent
	}

	s.logger.Info("Invoice generated",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Float64("total", inv.Total),
		zap.Int("items", len(inv.Items)))
	return result, nil
}
