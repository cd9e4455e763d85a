package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/festivalfriend/lineup-server/internal/api"
	"github.com/festivalfriend/lineup-server/internal/classify"
	"github.com/festivalfriend/lineup-server/internal/config"
	"github.com/festivalfriend/lineup-server/internal/ingest"
	"github.com/festivalfriend/lineup-server/internal/jobs"
	"github.com/festivalfriend/lineup-server/internal/scrape"
	"github.com/festivalfriend/lineup-server/internal/service"
	"github.com/festivalfriend/lineup-server/internal/sources"
	"github.com/festivalfriend/lineup-server/internal/status"
	"github.com/festivalfriend/lineup-server/internal/store"
	pkgsync "github.com/festivalfriend/lineup-server/internal/sync"
	"github.com/festivalfriend/lineup-server/internal/sync/coordinator"
	"github.com/festivalfriend/lineup-server/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lineup API server",
	Long: `Start the lineup API server to serve the artist catalog.

The server requires a configuration file (--config) that specifies:
- Festival lineup sources (web pages or roster files) and sync policies
- MusicBrainz classification settings
- Telemetry settings

See examples/ directory for sample configurations.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	serverRequestTimeout   = 30 * time.Second // Listing endpoints may trigger a catalog reload
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 35 * time.Second // Must be > serverRequestTimeout to let middleware handle timeout
	serverIdleTimeout      = 60 * time.Second
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}

	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

// newClassifier builds the MusicBrainz-backed classifier from configuration
func newClassifier(cfg *config.Config) classify.Classifier {
	var opts []classify.MBOption
	if mb := cfg.MusicBrainz; mb != nil {
		if mb.Endpoint != "" {
			opts = append(opts, classify.WithEndpoint(mb.Endpoint))
		}
		if mb.RequestInterval != "" {
			// Validated at config load time.
			if interval, err := time.ParseDuration(mb.RequestInterval); err == nil {
				opts = append(opts, classify.WithRequestInterval(interval))
			}
		}
	}
	return classify.NewClassifier(classify.NewMusicBrainzClient(opts...))
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	address := viper.GetString("address")

	slog.Info("Starting lineup API server", "address", address)

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"catalog", cfg.GetCatalogName(),
		"festival_count", len(cfg.Festivals))

	// Initialize telemetry (no-op providers when disabled)
	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	catalogMetrics, err := telemetry.NewCatalogMetrics(tel.MeterProvider())
	if err != nil {
		slog.Warn("Failed to create catalog metrics", "error", err)
	}
	syncMetrics, err := telemetry.NewSyncMetrics(tel.MeterProvider())
	if err != nil {
		slog.Warn("Failed to create sync metrics", "error", err)
	}

	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	catalogStore := store.NewFileStore(dataDir)
	classifier := newClassifier(cfg)

	// Background sync for configured festivals
	sourceHandlerFactory := sources.NewSourceHandlerFactory()
	syncManager := pkgsync.NewDefaultSyncManager(sourceHandlerFactory, catalogStore, classifier)
	statusPersistence := status.NewFileStatusPersistence(dataDir)
	syncCoordinator := coordinator.New(syncManager, statusPersistence, cfg,
		coordinator.WithSyncMetrics(syncMetrics),
		coordinator.WithCatalogMetrics(catalogMetrics),
	)

	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()
	go func() {
		if err := syncCoordinator.Start(syncCtx); err != nil {
			slog.Error("Sync coordinator failed", "error", err)
		}
	}()

	// Catalog read service over the synced store
	svc, err := service.New(ctx, catalogStore)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}

	// Ad-hoc ingestion through the API
	tracker := jobs.NewTracker()
	ingestor := ingest.New(scrape.NewDefaultScraper(), classifier, catalogStore, tracker,
		ingest.WithCatalogChangeHook(svc.Invalidate))

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(serverRequestTimeout),
		api.LoggingMiddleware,
		telemetry.TracingMiddleware(tel.TracerProvider()),
	}
	if metricsMw, err := telemetry.MetricsMiddleware(tel.MeterProvider()); err != nil {
		slog.Warn("Failed to create metrics middleware", "error", err)
	} else {
		middlewares = append(middlewares, metricsMw)
	}

	router := api.NewServer(svc, ingestor, tracker, api.WithMiddlewares(middlewares...))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	if err := syncCoordinator.Stop(); err != nil {
		slog.Error("Failed to stop sync coordinator", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}
