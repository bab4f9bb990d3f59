package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/booking"
	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/hotelapi"
	"github.com/hotelonline/veraclub-invoicer/internal/invoice"
	"github.com/hotelonline/veraclub-invoicer/internal/models"
	"github.com/hotelonline/veraclub-invoicer/internal/recipient"
	"github.com/hotelonline/veraclub-invoicer/internal/report"
)

// UpstreamAPI is the slice of the property-management API the gateway proxies
type UpstreamAPI interface {
	Login(ctx context.Context, req hotelapi.LoginRequest) (*hotelapi.LoginResponse, error)
	FetchBookings(ctx context.Context, token string, req hotelapi.BookingRequest) (*models.BookingResponse, error)
	SendEmail(ctx context.Context, token string, msg hotelapi.EmailMessage) error
}

// InvoiceGenerator runs the one-call generation pipeline
type InvoiceGenerator interface {
	Generate(ctx context.Context, token, hotelID, reservationNumber string) (*invoice.Result, error)
}

// InvoiceReader serves the persisted invoice register
type InvoiceReader interface {
	List(limit, offset int) ([]models.Invoice, error)
	GetByID(id string) (*models.Invoice, error)
}

// PDFReader loads stored invoice documents for download
type PDFReader interface {
	ReadPDF(path string) ([]byte, error)
}

// RecipientStore manages the notification address list
type RecipientStore interface {
	List() ([]string, error)
	Add(email string) error
	AddBulk(emails []string) ([]string, []recipient.Rejection, error)
	Remove(email string) error
	Update(oldEmail, newEmail string) error
	ReplaceAll(emails []string) ([]string, error)
}

// RegisterExporter renders the invoice register as a spreadsheet
type RegisterExporter interface {
	Export(invoices []models.Invoice) ([]byte, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	upstream   UpstreamAPI
	generator  InvoiceGenerator
	invoices   InvoiceReader
	files      PDFReader
	recipients RecipientStore
	exporter   RegisterExporter
	hotels     *hotel.Directory
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	upstream UpstreamAPI,
	generator InvoiceGenerator,
	invoices InvoiceReader,
	files PDFReader,
	recipients RecipientStore,
	exporter RegisterExporter,
	hotels *hotel.Directory,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		upstream:   upstream,
		generator:  generator,
		invoices:   invoices,
		files:      files,
		recipients: recipients,
		exporter:   exporter,
		hotels:     hotels,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// BookingLookupRequest identifies one reservation at one managed property
type BookingLookupRequest struct {
	Hotel     string `json:"hotel" binding:"required"`
	BookingID string `json:"bookingId" binding:"required"`
}

// AddRecipientRequest adds a single notification address
type AddRecipientRequest struct {
	Email string `json:"email" binding:"required"`
}

// BulkRecipientRequest adds several notification addresses at once
type BulkRecipientRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

// UpdateRecipientRequest replaces one address with another
type UpdateRecipientRequest struct {
	OldEmail string `json:"oldEmail" binding:"required"`
	NewEmail string `json:"newEmail" binding:"required"`
}

// ListInvoicesRequest represents query parameters for listing invoices
type ListInvoicesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Login handles POST /auth/login, exchanging credentials at the upstream API
func (h *Handlers) Login(c *gin.Context) {
	var req hotelapi.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	resp, err := h.upstream.Login(c.Request.Context(), req)
	if err != nil {
		h.upstreamError(c, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// ListHotels handles GET /hotels
func (h *Handlers) ListHotels(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.hotels.All()})
}

// FetchBookings handles POST /ezee/bookings. The property's upstream
// credentials are resolved server side; the client only names the property.
func (h *Handlers) FetchBookings(c *gin.Context) {
	var req BookingLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "hotel and bookingId are required")
		return
	}

	prop, err := h.hotels.ByID(req.Hotel)
	if err != nil {
		h.fail(c, http.StatusNotFound, err.Error())
		return
	}

	resp, err := h.upstream.FetchBookings(c.Request.Context(), sessionToken(c), hotelapi.BookingRequest{
		HotelID:   prop.UpstreamHotelID,
		AuthKey:   prop.AuthKey,
		BookingID: req.BookingID,
	})
	if err != nil {
		h.upstreamError(c, "booking lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// SendEmail handles POST /email/send, forwarding one message upstream
func (h *Handlers) SendEmail(c *gin.Context) {
	var msg hotelapi.EmailMessage
	if err := c.ShouldBindJSON(&msg); err != nil || msg.To == "" {
		h.fail(c, http.StatusBadRequest, "invalid email payload")
		return
	}

	if err := h.upstream.SendEmail(c.Request.Context(), sessionToken(c), msg); err != nil {
		h.upstreamError(c, "email send failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"status": "sent"}})
}

// GetEmailSettings handles GET /settings/emails. This is the legacy settings
// surface: the whole list as one newline-separated text document.
func (h *Handlers) GetEmailSettings(c *gin.Context) {
	emails, err := h.recipients.List()
	if err != nil {
		h.logger.Error("Failed to list recipients", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load email settings")
		return
	}
	c.String(http.StatusOK, strings.Join(emails, "\n"))
}

// UpdateEmailSettings handles POST /settings/emails, replacing the whole list
func (h *Handlers) UpdateEmailSettings(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	saved, err := h.recipients.ReplaceAll(splitEmailList(string(body)))
	if err != nil {
		if errors.Is(err, recipient.ErrInvalidEmail) {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to replace recipients", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to save email settings")
		return
	}

	c.String(http.StatusOK, strings.Join(saved, "\n"))
}

// ListRecipients handles GET /veraclub/emails
func (h *Handlers) ListRecipients(c *gin.Context) {
	emails, err := h.recipients.List()
	if err != nil {
		h.logger.Error("Failed to list recipients", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to load recipients")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"emails": emails}})
}

// AddRecipient handles POST /veraclub/emails
func (h *Handlers) AddRecipient(c *gin.Context) {
	var req AddRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.recipients.Add(req.Email); err != nil {
		h.recipientError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"email": strings.TrimSpace(req.Email)}})
}

// AddRecipientsBulk handles POST /veraclub/emails/bulk. Valid addresses are
// stored; invalid ones come back itemized so the operator can fix them.
func (h *Handlers) AddRecipientsBulk(c *gin.Context) {
	var req BulkRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "emails array is required")
		return
	}

	added, rejected, err := h.recipients.AddBulk(req.Emails)
	if err != nil {
		h.logger.Error("Bulk recipient add failed", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to add recipients")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"added":    added,
		"rejected": rejected,
	}})
}

// UpdateRecipient handles PUT /veraclub/emails
func (h *Handlers) UpdateRecipient(c *gin.Context) {
	var req UpdateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "oldEmail and newEmail are required")
		return
	}

	if err := h.recipients.Update(req.OldEmail, req.NewEmail); err != nil {
		h.recipientError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"email": strings.TrimSpace(req.NewEmail)}})
}

// RemoveRecipient handles DELETE /veraclub/emails/:email
func (h *Handlers) RemoveRecipient(c *gin.Context) {
	if err := h.recipients.Remove(c.Param("email")); err != nil {
		h.recipientError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// GenerateInvoice handles POST /invoices/generate
func (h *Handlers) GenerateInvoice(c *gin.Context) {
	var req BookingLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "hotel and bookingId are required")
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), sessionToken(c), req.Hotel, req.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNoReservations),
			errors.Is(err, booking.ErrNoBillableBookings):
			h.fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, booking.ErrInvalidDateRange):
			h.fail(c, http.StatusUnprocessableEntity, err.Error())
		default:
			h.upstreamError(c, "invoice generation failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ListInvoices handles GET /invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	invoices, err := h.invoices.List(req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: invoices})
}

// GetInvoice handles GET /invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	inv, err := h.invoices.GetByID(c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get invoice", zap.String("id", c.Param("id")), zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to retrieve invoice")
		return
	}
	if inv == nil {
		h.fail(c, http.StatusNotFound, "invoice not found")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// DownloadInvoicePDF handles GET /invoices/:id/pdf
func (h *Handlers) DownloadInvoicePDF(c *gin.Context) {
	inv, err := h.invoices.GetByID(c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get invoice", zap.String("id", c.Param("id")), zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to retrieve invoice")
		return
	}
	if inv == nil || inv.PDFPath == "" {
		h.fail(c, http.StatusNotFound, "invoice document not found")
		return
	}

	data, err := h.files.ReadPDF(inv.PDFPath)
	if err != nil {
		h.logger.Error("Failed to read invoice PDF",
			zap.String("path", inv.PDFPath),
			zap.Error(err))
		h.fail(c, http.StatusNotFound, "invoice document not found")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-`+inv.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportInvoices handles GET /invoices/export
func (h *Handlers) ExportInvoices(c *gin.Context) {
	invoices, err := h.invoices.List(1000, 0)
	if err != nil {
		h.logger.Error("Failed to list invoices for export", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to export invoices")
		return
	}

	data, err := h.exporter.Export(invoices)
	if err != nil {
		h.logger.Error("Failed to build invoice register", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "failed to export invoices")
		return
	}

	filename := report.Filename(time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// upstreamError forwards the upstream status code when one is available
func (h *Handlers) upstreamError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))

	var apiErr *hotelapi.APIError
	if errors.As(err, &apiErr) {
		h.fail(c, apiErr.StatusCode, msg+": "+apiErr.Body)
		return
	}
	h.fail(c, http.StatusBadGateway, msg+": "+err.Error())
}

func (h *Handlers) recipientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipient.ErrInvalidEmail):
		h.fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, recipient.ErrNotFound):
		h.fail(c, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Recipient operation failed", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "recipient operation failed")
	}
}

// splitEmailList parses the legacy settings body: addresses separated by
// newlines or commas, blanks ignored
func splitEmailList(body string) []string {
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	var emails []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			emails = append(emails, f)
		}
	}
	return emails
}
