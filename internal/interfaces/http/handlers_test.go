package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/booking"
	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/hotelapi"
	"github.com/hotelonline/veraclub-invoicer/internal/invoice"
	"github.com/hotelonline/veraclub-invoicer/internal/models"
	"github.com/hotelonline/veraclub-invoicer/internal/recipient"
)

type fakeUpstream struct {
	loginErr   error
	bookingReq hotelapi.BookingRequest
	sentEmail  *hotelapi.EmailMessage
}

func (f *fakeUpstream) Login(_ context.Context, req hotelapi.LoginRequest) (*hotelapi.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &hotelapi.LoginResponse{Token: "tok-" + req.Email}, nil
}

func (f *fakeUpstream) FetchBookings(_ context.Context, _ string, req hotelapi.BookingRequest) (*models.BookingResponse, error) {
	f.bookingReq = req
	return &models.BookingResponse{}, nil
}

func (f *fakeUpstream) SendEmail(_ context.Context, _ string, msg hotelapi.EmailMessage) error {
	f.sentEmail = &msg
	return nil
}

type fakeGenerator struct {
	result    *invoice.Result
	err       error
	lastHotel string
	lastToken string
}

func (f *fakeGenerator) Generate(_ context.Context, token, hotelID, _ string) (*invoice.Result, error) {
	f.lastToken = token
	f.lastHotel = hotelID
	return f.result, f.err
}

type fakeInvoices struct {
	invoices []models.Invoice
}

func (f *fakeInvoices) List(limit, offset int) ([]models.Invoice, error) {
	if offset >= len(f.invoices) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.invoices) {
		end = len(f.invoices)
	}
	return f.invoices[offset:end], nil
}

func (f *fakeInvoices) GetByID(id string) (*models.Invoice, error) {
	for i := range f.invoices {
		if f.invoices[i].ID == id {
			return &f.invoices[i], nil
		}
	}
	return nil, nil
}

type fakeFiles struct {
	data map[string][]byte
}

func (f *fakeFiles) ReadPDF(path string) ([]byte, error) {
	if d, ok := f.data[path]; ok {
		return d, nil
	}
	return nil, assert.AnError
}

type fakeRecipientStore struct {
	emails []string
}

func (f *fakeRecipientStore) List() ([]string, error) { return f.emails, nil }

func (f *fakeRecipientStore) Add(email string) error {
	if !strings.Contains(email, "@") {
		return recipient.ErrInvalidEmail
	}
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeRecipientStore) AddBulk(emails []string) ([]string, []recipient.Rejection, error) {
	var added []string
	var rejected []recipient.Rejection
	for _, e := range emails {
		if strings.Contains(e, "@") {
			f.emails = append(f.emails, e)
			added = append(added, e)
		} else {
			rejected = append(rejected, recipient.Rejection{Email: e, Error: "Invalid email format"})
		}
	}
	return added, rejected, nil
}

func (f *fakeRecipientStore) Remove(email string) error {
	for i, e := range f.emails {
		if e == email {
			f.emails = append(f.emails[:i], f.emails[i+1:]...)
			return nil
		}
	}
	return recipient.ErrNotFound
}

func (f *fakeRecipientStore) Update(oldEmail, newEmail string) error {
	if err := f.Remove(oldEmail); err != nil {
		return err
	}
	return f.Add(newEmail)
}

func (f *fakeRecipientStore) ReplaceAll(emails []string) ([]string, error) {
	for _, e := range emails {
		if !strings.Contains(e, "@") {
			return nil, recipient.ErrInvalidEmail
		}
	}
	f.emails = emails
	return emails, nil
}

type fakeExporter struct{}

func (fakeExporter) Export(_ []models.Invoice) ([]byte, error) {
	return []byte("PK\x03\x04 fake workbook"), nil
}

type testEnv struct {
	server     *Server
	upstream   *fakeUpstream
	generator  *fakeGenerator
	invoices   *fakeInvoices
	files      *fakeFiles
	recipients *fakeRecipientStore
}

func newTestEnv() *testEnv {
	env := &testEnv{
		upstream:   &fakeUpstream{},
		generator:  &fakeGenerator{},
		invoices:   &fakeInvoices{},
		files:      &fakeFiles{data: map[string][]byte{}},
		recipients: &fakeRecipientStore{},
	}
	handlers := NewHandlers(
		env.upstream, env.generator, env.invoices, env.files,
		env.recipients, fakeExporter{}, hotel.NewDirectory(), zap.NewNop(),
	)
	env.server = NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, handlers, zap.NewNop())
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv()

	for _, path := range []string{"/hotels", "/invoices", "/veraclub/emails"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/auth/login", "",
		hotelapi.LoginRequest{Email: "staff@veraclub.example", Password: "secret"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tok-staff@veraclub.example")
}

func TestLoginForwardsUpstreamStatus(t *testing.T) {
	env := newTestEnv()
	env.upstream.loginErr = &hotelapi.APIError{StatusCode: 401, Body: "bad credentials"}

	w := env.do(t, http.MethodPost, "/auth/login", "",
		hotelapi.LoginRequest{Email: "x@y.example", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "bad credentials")
}

func TestFetchBookingsResolvesCredentials(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/ezee/bookings", "tok",
		BookingLookupRequest{Hotel: "sunset-beach", BookingID: "618"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "38711", env.upstream.bookingReq.HotelID)
	assert.NotEmpty(t, env.upstream.bookingReq.AuthKey)
	assert.Equal(t, "618", env.upstream.bookingReq.BookingID)
}

func TestFetchBookingsUnknownHotel(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/ezee/bookings", "tok",
		BookingLookupRequest{Hotel: "atlantis", BookingID: "618"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendEmailProxy(t *testing.T) {
	env := newTestEnv()
	msg := hotelapi.EmailMessage{To: "a@veraclub.example", Subject: "Hi", Text: "Hello"}
	w := env.do(t, http.MethodPost, "/email/send", "tok", msg)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.upstream.sentEmail)
	assert.Equal(t, "a@veraclub.example", env.upstream.sentEmail.To)
}

func TestGenerateInvoice(t *testing.T) {
	env := newTestEnv()
	env.generator.result = &invoice.Result{
		Invoice: &models.Invoice{InvoiceNumber: "INV-1", Total: 1725},
	}

	w := env.do(t, http.MethodPost, "/invoices/generate", "tok-123",
		BookingLookupRequest{Hotel: "sunset-beach", BookingID: "618"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-123", env.generator.lastToken)
	assert.Equal(t, "sunset-beach", env.generator.lastHotel)
	assert.Contains(t, w.Body.String(), "INV-1")
}

func TestGenerateInvoiceNoBillableBookings(t *testing.T) {
	env := newTestEnv()
	env.generator.err = booking.ErrNoBillableBookings

	w := env.do(t, http.MethodPost, "/invoices/generate", "tok",
		BookingLookupRequest{Hotel: "sunset-beach", BookingID: "618"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipientCRUD(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/veraclub/emails", "tok",
		AddRecipientRequest{Email: "a@veraclub.example"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/veraclub/emails", "tok",
		AddRecipientRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/veraclub/emails", "tok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@veraclub.example")

	w = env.do(t, http.MethodPut, "/veraclub/emails", "tok",
		UpdateRecipientRequest{OldEmail: "a@veraclub.example", NewEmail: "b@veraclub.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"b@veraclub.example"}, env.recipients.emails)

	w = env.do(t, http.MethodDelete, "/veraclub/emails/b@veraclub.example", "tok", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/veraclub/emails/b@veraclub.example", "tok", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipientBulkAdd(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/veraclub/emails/bulk", "tok",
		BulkRecipientRequest{Emails: []string{"a@veraclub.example", "nope", "b@veraclub.example"}})

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"added"`)
	assert.Contains(t, body, "Invalid email format")
	assert.Len(t, env.recipients.emails, 2)
}

func TestLegacyEmailSettings(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/settings/emails",
		strings.NewReader("a@veraclub.example\nb@veraclub.example, c@veraclub.example\n"))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		[]string{"a@veraclub.example", "b@veraclub.example", "c@veraclub.example"},
		env.recipients.emails)

	get := env.do(t, http.MethodGet, "/settings/emails", "tok", nil)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "a@veraclub.example\nb@veraclub.example\nc@veraclub.example", get.Body.String())
}

func TestGetInvoiceNotFound(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/invoices/missing", "tok", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadInvoicePDF(t *testing.T) {
	env := newTestEnv()
	env.invoices.invoices = []models.Invoice{{
		ID:            "inv-1",
		InvoiceNumber: "INV-1705752000000",
		PDFPath:       "generated_invoices/invoice-INV-1705752000000.pdf",
		Date:          time.Now(),
	}}
	env.files.data[env.invoices.invoices[0].PDFPath] = []byte("%PDF-1.4 data")

	w := env.do(t, http.MethodGet, "/invoices/inv-1/pdf", "tok", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-INV-1705752000000.pdf")
	assert.Equal(t, "%PDF-1.4 data", w.Body.String())
}

func TestExportInvoices(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/invoices/export", "tok", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-register-")
}
