package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/applicant"
	applicantPostgres "github.com/edi-app/edi-intake/internal/applicant/postgres"
	"github.com/edi-app/edi-intake/internal/auth"
	"github.com/edi-app/edi-intake/internal/core/events"
	"github.com/edi-app/edi-intake/internal/identity"
	identityPostgres "github.com/edi-app/edi-intake/internal/identity/postgres"
	"github.com/edi-app/edi-intake/internal/policy"
	"github.com/edi-app/edi-intake/internal/sequence"
	sequencePostgres "github.com/edi-app/edi-intake/internal/sequence/postgres"
	"github.com/edi-app/edi-intake/internal/transport"
	"github.com/edi-app/edi-intake/internal/transport/rest"
	"github.com/edi-app/edi-intake/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	logger.Init(os.Getenv("APP_ENV"))

	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if sqlDB, dbErr := deps.GormDB.DB(); dbErr == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.LoggerWrapper()

	gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}

	// The sequence store speaks sqlx over the same pool.
	seqDB := sqlx.NewDb(sqlDB, "pgx")

	eventBus := events.NewEventBus(log)
	registerAuditSubscribers(eventBus)

	engine := policy.NewEngine()

	seqService := sequence.NewService(sequencePostgres.NewSequenceStore(seqDB), sequence.ApplicantCounter, log)
	ensureCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := seqService.EnsureCounter(ensureCtx); err != nil {
		return nil, fmt.Errorf("failed to ensure sequence counter: %w", err)
	}

	base := transport.NewBaseHandler(log)

	identityService := identity.NewService(identityPostgres.NewUserRepository(gormDB), eventBus, log)
	identityHandler := identity.NewHandler(base, identityService)

	applicantService := applicant.NewService(applicantPostgres.NewApplicantRepository(gormDB), seqService, engine, eventBus, log)
	applicantHandler := applicant.NewHandler(base, applicantService)

	verifier := auth.NewVerifier(config.Security.TokenSecret)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, verifier, identityHandler, applicantHandler, log)

	return &Dependencies{
		Config: config,
		GormDB: gormDB,
		Router: router,
		Logger: log,
	}, nil
}

// registerAuditSubscribers writes an audit line for every domain event. The
// bus runs handlers asynchronously, so a slow sink never holds up a request.
// The context logger carries the trace id of the originating request.
func registerAuditSubscribers(eventBus *events.EventBus) {
	audit := func(ctx context.Context, event events.Event) error {
		logger.From(ctx).Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	eventBus.Subscribe(events.EventTypeApplicantCreated, audit)
	eventBus.Subscribe(events.EventTypeApplicantUpdated, audit)
	eventBus.Subscribe(events.EventTypeApplicantDeleted, audit)
	eventBus.Subscribe(events.EventTypeUserCreated, audit)
}

// initDB opens the gorm handle the repositories share and configures the
// underlying pool. TranslateError turns driver duplicate-key errors into
// gorm.ErrDuplicatedKey so the repositories can map them portably.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.Source), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access db pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, nil
}
