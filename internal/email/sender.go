// Package email dispatches rendered invoices to the configured recipient
// list through the upstream delivery API.
package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/hotelapi"
	"github.com/hotelonline/veraclub-invoicer/internal/models"
)

// ErrNoRecipients is returned before any send when the list is empty
var ErrNoRecipients = errors.New("no email recipients configured")

// DeliveryError reports the recipient whose send failed. Dispatch is
// fail-fast: recipients after the failed one are not attempted.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver invoice to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// EmailAPI is the upstream delivery surface used by the sender
type EmailAPI interface {
	SendEmail(ctx context.Context, token string, msg hotelapi.EmailMessage) error
}

// RecipientLister supplies the configured notification addresses
type RecipientLister interface {
	List() ([]string, error)
}

// SentRecorder persists the dispatch timestamp on the invoice record
type SentRecorder interface {
	MarkSent(id string, sentAt time.Time) error
}

// Sender emails invoice PDFs, one recipient at a time
type Sender struct {
	api        EmailAPI
	recipients RecipientLister
	recorder   SentRecorder
	logger     *zap.Logger
}

// NewSender creates a new invoice sender
func NewSender(api EmailAPI, recipients RecipientLister, recorder SentRecorder, logger *zap.Logger) *Sender {
	return &Sender{
		api:        api,
		recipients: recipients,
		recorder:   recorder,
		logger:     logger,
	}
}

// SendInvoice emails the rendered document to every configured recipient,
// sequentially and in list order
func (s *Sender) SendInvoice(ctx context.Context, token string, invoice *models.Invoice, pdfData []byte) error {
	recipients, err := s.recipients.List()
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	attachment := hotelapi.EmailAttachment{
		Filename:    fmt.Sprintf("invoice-%s.pdf", invoice.InvoiceNumber),
		Content:     base64.StdEncoding.EncodeToString(pdfData),
		Encoding:    "base64",
		ContentType: "application/pdf",
	}

	for _, recipient := range recipients {
		s.logger.Info("Sending invoice email",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("recipient", recipient))

		msg := hotelapi.EmailMessage{
			To:          recipient,
			Subject:     fmt.Sprintf("Invoice #%s from %s", invoice.InvoiceNumber, invoice.Property),
			Text:        fmt.Sprintf("Please find attached your Invoice #%s.", invoice.InvoiceNumber),
			Attachments: []hotelapi.EmailAttachment{attachment},
		}

		if err := s.api.SendEmail(ctx, token, msg); err != nil {
			s.logger.Error("Invoice email failed",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.String("recipient", recipient),
				zap.Error(err))
			return &DeliveryError{Recipient: recipient, Err: err}
		}
	}

	if s.recorder != nil {
		if err := s.recorder.MarkSent(invoice.ID, time.Now()); err != nil {
			// The emails went out; a failed status write is not fatal
			s.logger.Error("Failed to record invoice dispatch",
				zap.String("invoice_id", invoice.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("Invoice emailed to all recipients",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("recipients", len(recipients)))
	return nil
}
