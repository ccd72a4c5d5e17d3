// internal/app.go
package app

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	router "monetrax-ledger/internal/api"
	"monetrax-ledger/internal/api/handler"
	"monetrax-ledger/internal/config"
	"monetrax-ledger/internal/identity"
	"monetrax-ledger/internal/repository"
	"monetrax-ledger/internal/repository/filestore"
	"monetrax-ledger/internal/repository/memory"
	"monetrax-ledger/internal/repository/postgres"
	"monetrax-ledger/internal/repository/walstore"
	"monetrax-ledger/internal/service"
	"monetrax-ledger/internal/util"
	"monetrax-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *zap.Logger
	DB     *sqlx.DB // only set for the postgres driver

	// Storage
	Store *repository.LedgerStore

	// Services
	Identity      identity.Provider
	LedgerService service.LedgerService
	Flusher       *service.Flusher

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components and signs the local
// identity in.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	app.Config = cfg

	// 2. Initialize Logger
	if err := util.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.",
		zap.String("store_driver", cfg.StoreDriver))

	// 3. Open the persistence store
	kv, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	app.Store = repository.NewLedgerStore(kv)

	// 4. Initialize Services
	app.Identity = identity.NewProvider(app.Store, app.Logger)
	app.LedgerService = service.NewLedgerService(app.Store, app.Identity, app.Logger, service.Options{
		RetentionCap: cfg.RetentionCap,
		ImportLimit:  cfg.ImportLimit,
	})
	app.Flusher = service.NewFlusher(app.LedgerService, cfg.FlushInterval, app.Logger)
	app.LedgerService.SignIn(ctx)
	app.Logger.Info("Services initialized.")

	// 5. Initialize HTTP Handlers and Router
	ledgerHandler := handler.NewLedgerHandler(app.LedgerService, cfg.Currency, app.Logger)
	app.HTTPHandler = router.NewRouter(ledgerHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// openStore selects the backend named by the configuration. Local media that
// cannot be opened fall back to an in-memory store so the session still works.
func (app *Application) openStore(ctx context.Context) (repository.KVStore, error) {
	cfg := app.Config
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewKVStore(), nil

	case config.DriverPostgres:
		database, err := db.NewPostgresDB(ctx, cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to database")
		}
		store := postgres.NewKVStore(database)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = database.Close()
			return nil, errors.Wrap(err, "failed to prepare database schema")
		}
		app.DB = database
		app.Logger.Info("Database connection established.")
		return store, nil

	case config.DriverWAL:
		store, err := walstore.Open(cfg.StorePath)
		if err != nil {
			app.Logger.Warn("WAL store unavailable, keeping ledger in memory", zap.Error(err))
			return memory.NewKVStore(), nil
		}
		return store, nil

	default:
		store, err := filestore.Open(cfg.StorePath)
		if err != nil {
			if util.IsError(err, util.ErrCorrupted) {
				app.Logger.Error("ledger file is corrupted, starting from empty storage", zap.Error(err))
			} else {
				app.Logger.Warn("ledger file unavailable, keeping ledger in memory", zap.Error(err))
			}
			return memory.NewKVStore(), nil
		}
		app.Logger.Info("Ledger file opened.", zap.String("path", store.Path()))
		return store, nil
	}
}

// Shutdown flushes the session and releases storage.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.LedgerService != nil {
		if err := app.LedgerService.Flush(ctx); err != nil {
			app.Logger.Error("Final ledger flush failed", zap.Error(err))
		}
	}
	if app.Store != nil {
		// Store.Close closes the postgres pool as well
		if err := app.Store.Close(); err != nil {
			app.Logger.Error("Failed to close ledger store", zap.Error(err))
			return errors.Wrap(err, "failed to close ledger store")
		}
		app.Logger.Info("Ledger store closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
