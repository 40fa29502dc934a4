package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "drivehub-backend/internal/api/http"
	"drivehub-backend/internal/config"
	"drivehub-backend/internal/logger"
	"drivehub-backend/internal/payment"
	"drivehub-backend/internal/repository/postgres"
	"drivehub-backend/internal/security"
	"drivehub-backend/internal/service"
	"drivehub-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting DriveHub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Photo Storage
	var photoStorage storage.PhotoStorage
	if cfg.Storage.Type == "" || cfg.Storage.Type == "mock" {
		logger.Info("Using mock photo storage (local filesystem)", "photo_dir", cfg.Storage.PhotoDir)
		photoStorage, err = storage.NewMockPhotoStorage(cfg.Storage.PhotoDir)
		if err != nil {
			logger.Error("Failed to initialize mock photo storage", "error", err)
			log.Fatalf("Failed to initialize mock photo storage: %v", err)
		}
	} else {
		logger.Error("Unsupported storage type", "type", cfg.Storage.Type)
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}

	// Initialize Payment Provider
	var provider payment.Provider
	if cfg.Payment.Provider == "" || cfg.Payment.Provider == "mock" {
		logger.Info("Using mock payment provider", "base_url", cfg.Payment.BaseURL)
		provider = payment.NewMockProvider(cfg.Payment.BaseURL, cfg.Payment.WebhookKey)
	} else {
		logger.Error("Unsupported payment provider", "provider", cfg.Payment.Provider)
		log.Fatalf("Payment provider '%s' not yet implemented", cfg.Payment.Provider)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.CarRepository,
		store.ContractRepository,
		store.LedgerRepository,
		store.UserRepository,
		store.TrackingRepository,
		store.JobRepository,
		store.NotificationRepository,
		emailSvc,
		cfg.Platform.AccountID,
	)
	extensionSvc := service.NewExtensionService(
		store.BookingRepository,
		store.CarRepository,
		store.ContractRepository,
		store.UserRepository,
		store.JobRepository,
		store.NotificationRepository,
		photoStorage,
		emailSvc,
	)
	paymentSvc := service.NewPaymentService(
		store.BookingRepository,
		store.CarRepository,
		store.UserRepository,
		store.LedgerRepository,
		store.SettlementRepository,
		store.NotificationRepository,
		provider,
		emailSvc,
		cfg.Platform.AccountID,
	)
	trackingSvc := service.NewTrackingService(store.BookingRepository, store.CarRepository, store.TrackingRepository)
	ledgerSvc := service.NewLedgerService(store.LedgerRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Build the route table
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Bookings:      bookingSvc,
		Extensions:    extensionSvc,
		Payments:      paymentSvc,
		Tracking:      trackingSvc,
		Ledger:        ledgerSvc,
		Notifications: noteSvc,
		Provider:      provider,
		Photos:        photoStorage,
		Tokens:        tokenManager,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
