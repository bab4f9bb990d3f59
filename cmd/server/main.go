package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hotelonline/veraclub-invoicer/internal/booking"
	"github.com/hotelonline/veraclub-invoicer/internal/config"
	"github.com/hotelonline/veraclub-invoicer/internal/email"
	"github.com/hotelonline/veraclub-invoicer/internal/hotel"
	"github.com/hotelonline/veraclub-invoicer/internal/hotelapi"
	httpserver "github.com/hotelonline/veraclub-invoicer/internal/interfaces/http"
	"github.com/hotelonline/veraclub-invoicer/internal/invoice"
	"github.com/hotelonline/veraclub-invoicer/internal/recipient"
	"github.com/hotelonline/veraclub-invoicer/internal/report"
	"github.com/hotelonline/veraclub-invoicer/internal/repository"
	"github.com/hotelonline/veraclub-invoicer/internal/storage"
	"github.com/hotelonline/veraclub-invoicer/pkg/database"
	"github.com/hotelonline/veraclub-invoicer/pkg/utils"
)

func main() {
	// Local development keeps secrets in .env; absence is fine in production
	if _, err := os.Stat(".env"); err == nil {
		if err := gotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Veraclub invoice gateway",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	fileStore, err := storage.NewFileStore(cfg.Invoice.OutputDir, logger)
	if err != nil {
		logger.Fatal("Failed to create invoice output directory", zap.Error(err))
	}

	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	recipientRepo := repository.NewRecipientRepository(db, logger)
	recipientStore := recipient.NewStore(recipientRepo, logger)

	upstream := hotelapi.NewClient(hotelapi.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, logger)

	hotels := hotel.NewDirectory()
	sender := email.NewSender(upstream, recipientStore, invoiceRepo, logger)

	generator := invoice.NewService(
		upstream,
		booking.NewNormalizer(cfg.Invoice.VATRate, logger),
		invoice.NewAggregator(cfg.Invoice.DueDays, cfg.Invoice.VATRate),
		sender,
		invoiceRepo,
		fileStore,
		hotels,
		logger,
	)

	handlers := httpserver.NewHandlers(
		upstream,
		generator,
		invoiceRepo,
		fileStore,
		recipientStore,
		report.NewExcelExporter(logger),
		hotels,
		logger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
