package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexora/account-api/internal/config"
	"github.com/nexora/account-api/internal/confirm"
	"github.com/nexora/account-api/internal/messaging"
	"github.com/nexora/account-api/internal/platform/postgres"
	"github.com/nexora/account-api/internal/service"
	"github.com/nexora/account-api/internal/service/auth"
	"github.com/nexora/account-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	accountStore store.AccountStore
	roleStore    store.RoleStore

	tokenService   auth.TokenService
	accountService service.AccountService

	redisClient *redis.Client
	publisher   *messaging.KafkaPublisher
	dispatcher  *messaging.Dispatcher
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies like configuration, logger and the
// database connection must be established before it runs.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("Token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	app.accountStore = postgres.NewAccountStore(db, logger)
	app.roleStore = postgres.NewRoleStore(db, logger)

	app.redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := app.redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	confirmTTL := time.Duration(cfg.Auth.ConfirmationTTLMinutes) * time.Minute
	confirmations := confirm.NewRedisGenerator(app.redisClient, confirmTTL, logger)

	app.publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, logger)
	app.dispatcher = messaging.NewDispatcher(app.publisher, messaging.DispatcherConfig{
		QueueSize:   cfg.Kafka.QueueSize,
		WorkerCount: cfg.Kafka.WorkerCount,
	}, logger)

	app.accountService = service.NewAccountService(
		db,
		app.accountStore,
		app.roleStore,
		app.tokenService,
		hasher,
		hasher,
		confirmations,
		app.dispatcher,
		cfg.Auth.DefaultRole,
		logger,
	)

	// Without a seeded admin no account could ever reach the
	// role-granting endpoints.
	if err := app.accountService.EnsureAdminAccount(ctx,
		cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
		return nil, fmt.Errorf("failed to provision bootstrap admin: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Drain queued notifications before closing the producer.
	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
