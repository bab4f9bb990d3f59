// Package http is the gateway's HTTP surface. It is a thin adapter: handlers
// translate requests into service calls and wrap results in the standard
// response envelope.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given handlers
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: handlers,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(corsMiddleware())
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)
	s.router.POST("/auth/login", h.Login)

	// Everything else requires the operator's upstream session token
	protected := s.router.Group("/", authMiddleware())
	{
		protected.GET("/hotels", h.ListHotels)
		protected.POST("/ezee/bookings", h.FetchBookings)
		protected.POST("/email/send", h.SendEmail)

		protected.GET("/settings/emails", h.GetEmailSettings)
		protected.POST("/settings/emails", h.UpdateEmailSettings)

		recipients := protected.Group("/veraclub/emails")
		{
			recipients.GET("", h.ListRecipients)
			recipients.POST("", h.AddRecipient)
			recipients.POST("/bulk", h.AddRecipientsBulk)
			recipients.PUT("", h.UpdateRecipient)
			recipients.DELETE("/:email", h.RemoveRecipient)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.POST("/generate", h.GenerateInvoice)
			invoices.GET("", h.ListInvoices)
			invoices.GET("/export", h.ExportInvoices)
			invoices.GET("/:id", h.GetInvoice)
			invoices.GET("/:id/pdf", h.DownloadInvoicePDF)
		}
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
