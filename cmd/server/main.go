package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"serverless-workflow/backend/internal/api"
	"serverless-workflow/backend/internal/auth"
	"serverless-workflow/backend/internal/catalog"
	"serverless-workflow/backend/internal/config"
	"serverless-workflow/backend/internal/events"
	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/internal/mcp"
	"serverless-workflow/backend/internal/provider"
	"serverless-workflow/backend/internal/repository"
	"serverless-workflow/backend/internal/services"
	"serverless-workflow/backend/internal/tls"
	"serverless-workflow/backend/pkg/models"
)

const serviceName = "swf-backend"

// store is an entity store that can hand out per-provider connections
type store interface {
	repository.EntityStore
	Connection(provider string) catalog.Connection
}

type startStopper interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

func main() {
	ctx := context.Background()

	configFile := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Configuration loading failed: %v", err)
	}

	logger := logging.NewWithLevel(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logger.Info("Configuration loaded",
		"config_file", viper.ConfigFileUsed(),
		"swf_service", cfg.SWF.ServiceURL(),
		"definitions", cfg.SWF.WorkflowService.Path,
		"auth", cfg.Auth.Enable,
	)

	entityStore, closeStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize entity store", logging.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	broker, err := initBroker(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize event broker", logging.Error(err))
		os.Exit(1)
	}

	prov, err := provider.New(provider.Options{
		Reader:     provider.NewHTTPReader(nil),
		ServiceURL: cfg.SWF.ServiceURL(),
		Env:        cfg.SWF.Environment(),
		Owner:      cfg.SWF.Owner(),
		Mode:       provider.ParametersMode(cfg.Sync.ParametersMode),
		Logger:     logger,
	})
	if err != nil {
		logger.Error("Failed to create entity provider", logging.Error(err))
		os.Exit(1)
	}
	if err := prov.Connect(ctx, entityStore.Connection(prov.ProviderName())); err != nil {
		logger.Error("Failed to connect entity provider", logging.Error(err))
		os.Exit(1)
	}
	broker.Subscribe(prov)

	if lifecycle, ok := broker.(startStopper); ok {
		if err := lifecycle.Start(ctx); err != nil {
			logger.Error("Failed to start event broker", logging.Error(err))
			os.Exit(1)
		}
		defer func() {
			if err := lifecycle.Stop(context.Background()); err != nil {
				logger.Error("Event broker stop error", logging.Error(err))
			}
		}()
	}

	scheduler := provider.NewScheduler(broker, logger)
	if cfg.Sync.Schedule != "" {
		if _, err := scheduler.Schedule(cfg.Sync.Schedule); err != nil {
			logger.Error("Invalid sync schedule", "schedule", cfg.Sync.Schedule, logging.Error(err))
			os.Exit(1)
		}
	}
	scheduler.Start()
	if err := scheduler.Refresh(ctx, "startup"); err != nil {
		logger.Warn("Initial template refresh failed", logging.Error(err))
	}

	workflows := services.NewWorkflowService(
		cfg.SWF.ServiceURL(), cfg.SWF.WorkflowService.Path, broker, logger,
	)
	tasks := services.NewScaffolderClient(services.NewStaticDiscovery(cfg.Backend.BaseURL))

	logger.Info("Service layer initialized")

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(serviceName))

	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize auth", logging.Error(err))
		os.Exit(1)
	}
	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	apiGroup := e.Group("/api/" + models.PluginID)
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	api.RegisterHandlers(apiGroup, &api.Server{
		Workflows: workflows,
		Tasks:     tasks,
		Templates: entityStore,
		Refresher: scheduler,
		Provider:  prov.ProviderName(),
		Logger:    logger,
	})

	health := api.NewHandler(map[string]api.Pinger{"store": entityStore})
	e.GET("/health", health.HandleHealth)

	logger.Info("REST API handlers mounted")

	mcpServer := mcp.NewServer(workflows, scheduler)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	e.GET("/openapi.yaml", api.SpecHandler(cfg.Auth.Issuer))
	e.GET("/docs", api.SwaggerHandler(cfg.Auth.ClientID))
	e.GET("/docs/oauth2-redirect.html", api.OAuth2RedirectHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.TLS.Enable && len(cfg.TLS.Hostnames) > 0 {
		created, err := tls.EnsureCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames)
		if err != nil {
			logger.Error("Failed to generate self-signed cert", logging.Error(err))
			os.Exit(1)
		}
		if created {
			logger.Info("Generated self-signed certificate", "cert_file", cfg.TLS.CertFile)
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", logging.Error(err))
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", logging.Error(err))
			if err := server.Close(); err != nil {
				logger.Error("Server close error", logging.Error(err))
			}
		}
	}

	select {
	case <-scheduler.Stop().Done():
	case <-time.After(10 * time.Second):
		logger.Warn("Timed out waiting for running refreshes")
	}
	logger.Info("Server stopped gracefully")
}

// initStore returns the postgres store when a database is enabled and the
// in-memory store otherwise.
func initStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (store, func(), error) {
	if !cfg.DB.Enable {
		logger.Info("Database disabled, keeping templates in memory")
		return repository.NewMemoryEntityStore(), func() {}, nil
	}

	logger.Debug("Initializing database connection")
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := repository.NewPostgresEntityStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Info("Database connected")
	return s, pool.Close, nil
}

func initBroker(_ context.Context, cfg *config.Config, logger *logging.Logger) (events.Broker, error) {
	if !cfg.NATS.Enable {
		return events.NewLocalBroker(logger), nil
	}
	if cfg.NATS.URL == "" {
		return nil, errors.New("nats enabled without url")
	}
	return events.NewNATSBroker(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger), nil
}
