// Package hotelapi talks to the upstream property-management API that serves
// authentication, booking lookups and email delivery.
package hotelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/models"
)

// Config holds upstream client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the upstream API client. The bearer token is passed per call:
// the gateway forwards the operator's session token rather than holding
// credentials of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new upstream API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// APIError carries a non-2xx upstream response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// LoginRequest is the credential payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the user record
type LoginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// BookingRequest identifies one reservation at one property
type BookingRequest struct {
	HotelID   string `json:"hotelId"`
	AuthKey   string `json:"authKey"`
	BookingID string `json:"bookingId"`
}

// EmailAttachment is one base64-encoded attachment of an outbound email
type EmailAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	ContentType string `json:"contentType"`
}

// EmailMessage is the payload for POST /email/send
type EmailMessage struct {
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text"`
	Attachments []EmailAttachment `json:"attachments,omitempty"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchBookings looks up a reservation and parses it into the typed schema
func (c *Client) FetchBookings(ctx context.Context, token string, req BookingRequest) (*models.BookingResponse, error) {
	var resp models.BookingResponse
	if err := c.post(ctx, "/ezee/bookings", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendEmail submits one email to the delivery API
func (c *Client) SendEmail(ctx context.Context, token string, msg EmailMessage) error {
	return c.post(ctx, "/email/send", token, msg, nil)
}

func (c *Client) post(ctx context.Context, path, token string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Upstream request failed",
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Upstream request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode upstream response: %w", err)
		}
	}
	return nil
}
