package common

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"recytoken-up-go/internal/api"
	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/database"
	"recytoken-up-go/internal/events"
	"recytoken-up-go/internal/formance"
	"recytoken-up-go/internal/geocode"
	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/marketplace"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/payments"
	"recytoken-up-go/internal/postgres"
	"recytoken-up-go/internal/prime"
	"recytoken-up-go/internal/seed"
	"recytoken-up-go/internal/store"

	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services is every component a command needs, wired from configuration
type Services struct {
	Backend     store.Backend
	Database    *database.Service
	Store       *store.EntityStore
	Ledger      ledger.Recorder
	Payments    payments.Processor
	Geocoder    geocode.Geocoder
	Billing     *billing.Service
	Marketplace *marketplace.Service
	Console     *api.Console

	closePublisher func()
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeStorage opens the configured snapshot backend. The returned
// database service is nil unless the backend is SQLite.
func InitializeStorage(ctx context.Context, cfg *models.Config) (store.Backend, *database.Service, error) {
	switch cfg.Storage.Backend {
	case models.BackendPostgres:
		backend, err := postgres.Connect(ctx, cfg.Storage.PostgresURL, cfg.Database.PingTimeout)
		if err != nil {
			return nil, nil, err
		}
		return backend, nil, nil
	case models.BackendSQLite, "":
		dbService, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return dbService, dbService, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	backend, dbService, err := InitializeStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, closePublisher := events.NewPublisher(cfg.Kafka)
	entityStore := store.NewEntityStore(backend, publisher)

	snapshot, err := seed.Load(cfg.Seed.File, time.Now())
	if err != nil {
		closePublisher()
		backend.Close()
		return nil, fmt.Errorf("unable to load seed data: %w", err)
	}
	if err := entityStore.Load(ctx, snapshot); err != nil {
		closePublisher()
		backend.Close()
		return nil, err
	}

	recorder := initializeLedger(ctx, cfg.Formance)
	processor := initializePayments(cfg.Prime)
	geocoder := initializeGeocoder(cfg.Geocoder)

	billingService := billing.NewService(entityStore, processor)
	marketplaceService := marketplace.NewService(entityStore, processor, recorder)

	return &Services{
		Backend:     backend,
		Database:    dbService,
		Store:       entityStore,
		Ledger:      recorder,
		Payments:    processor,
		Geocoder:    geocoder,
		Billing:     billingService,
		Marketplace: marketplaceService,
		Console: api.NewConsole(api.Deps{
			Store:       entityStore,
			Backend:     backend,
			Marketplace: marketplaceService,
			Billing:     billingService,
			Ledger:      recorder,
			Geocoder:    geocoder,
		}),
		closePublisher: closePublisher,
	}, nil
}

func (cs *Services) Close() {
	if cs.closePublisher != nil {
		cs.closePublisher()
	}
	if cs.Backend != nil {
		cs.Backend.Close()
	}
}

// initializeLedger falls back to the in-memory ledger when Formance is not
// configured or unreachable.
func initializeLedger(ctx context.Context, cfg models.FormanceConfig) ledger.Recorder {
	if cfg.StackURL == "" {
		zap.L().Info("Using simulated token ledger")
		return ledger.NewSimulated()
	}
	recorder, err := formance.NewRecorder(ctx, cfg)
	if err != nil {
		zap.L().Warn("Formance unavailable, using simulated token ledger", zap.Error(err))
		return ledger.NewSimulated()
	}
	zap.L().Info("Using Formance token ledger",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))
	return recorder
}

func initializePayments(cfg models.PrimeConfig) payments.Processor {
	simulated := payments.NewSimulated()
	if !cfg.Enabled() {
		zap.L().Info("Using simulated payment processor")
		return simulated
	}

	zap.L().Info("Loading Prime API credentials")
	primeService, err := prime.NewService(&credentials.Credentials{
		AccessKey:  cfg.AccessKey,
		Passphrase: cfg.Passphrase,
		SigningKey: cfg.SigningKey,
	})
	if err != nil {
		zap.L().Warn("Prime unavailable, using simulated payment processor", zap.Error(err))
		return simulated
	}
	return prime.NewProcessor(primeService, simulated)
}

func initializeGeocoder(cfg models.GeocoderConfig) geocode.Geocoder {
	if cfg.URL == "" {
		return geocode.NewSimulated()
	}
	httpClient, err := prime.NewHttpClient()
	if err != nil {
		zap.L().Warn("Unable to build geocoder http client, using simulated geocoder", zap.Error(err))
		return geocode.NewSimulated()
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	return geocode.NewNominatim(cfg.URL, cfg.UserAgent, &httpClient, cfg.Timeout)
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
