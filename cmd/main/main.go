package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/config"
	"gitlab.com/renewalhq/api/call-provider-service/internal/events"
	"gitlab.com/renewalhq/api/call-provider-service/internal/httpapi"
	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
	"gitlab.com/renewalhq/api/call-provider-service/internal/provider"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/internal/usecase"
	"gitlab.com/renewalhq/api/call-provider-service/internal/vault"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	observer.InitMetrics(cfg.Metrics.Enabled)

	logger.Log.Info("Starting call provider service",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	if cfg.Database.PostgresDSN == "" {
		logger.Log.Fatal("postgres DSN is required")
	}
	repo, err := storage.NewPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	callVault, err := vault.New(cfg.Encryption.CallKey)
	if err != nil {
		logger.Log.Fatal("Failed to initialize call credential vault", zap.Error(err))
	}
	botVault, err := vault.New(cfg.Encryption.BotCallingKey)
	if err != nil {
		logger.Log.Fatal("Failed to initialize bot credential vault", zap.Error(err))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		jsPublisher, err := events.NewJetStreamPublisher(cfg.NATS)
		if err != nil {
			logger.Log.Fatal("Failed to initialize JetStream publisher", zap.Error(err))
		}
		publisher = jsPublisher
	}

	callRegistry := provider.NewCallRegistry(repo, callVault, cfg.Vendors.HealthCheckTimeout)
	botRegistry := provider.NewBotRegistry(repo, botVault, cfg.Vendors.HealthCheckTimeout)

	providerService := usecase.NewProviderService(repo, repo, callVault, botVault)
	usageService := usecase.NewUsageService(repo, repo, repo, publisher)
	settingsService := usecase.NewSettingsService(repo, repo)
	dispatchService := usecase.NewDispatchService(
		repo, repo, repo, callRegistry, botRegistry,
		usageService, settingsService, publisher,
	)
	healthService, err := usecase.NewHealthService(
		repo, repo, repo, callRegistry, botRegistry,
		publisher, cfg.WorkerPools.HealthCheck,
	)
	if err != nil {
		logger.Log.Fatal("Failed to initialize health service", zap.Error(err))
	}

	if cfg.Environment == "production" || cfg.Environment == "live" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := httpapi.NewHandlers(
		providerService, healthService, usageService,
		settingsService, dispatchService, repo,
	)
	router := httpapi.NewRouter(handlers)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Log.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("API server failed", zap.Error(err))
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Log.Info("Metrics server listening", zap.Int("port", cfg.Metrics.Port))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", 30*time.Second))

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Error stopping API server", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Error stopping metrics server", zap.Error(err))
		}
	}

	healthService.Stop()
	publisher.Close()

	if err := repo.Close(shutdownCtx); err != nil {
		logger.Log.Error("Failed to close PostgreSQL connection", zap.Error(err))
	}

	logger.Log.Info("Call provider service shutdown complete")
}
