package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/application/service"
	"github.com/damon-houk/freight-forecast-service/internal/config"
	domainservice "github.com/damon-houk/freight-forecast-service/internal/domain/service"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/cache"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/dataset"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/db"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/forecast"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/handler"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/logger"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/metrics"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/storage"
	"github.com/damon-houk/freight-forecast-service/internal/infrastructure/worker"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("%v, using %s", err, level)
	}
	appLogger := logger.NewJSONLogger(os.Stdout, level)
	logger.SetDefaultLogger(appLogger)

	appLogger.Info("Starting freight forecast service", map[string]interface{}{
		"addr":       cfg.Server.Addr,
		"upload_dir": cfg.Storage.UploadDir,
		"workers":    cfg.Forecast.WorkerCount,
	})

	// Setup BadgerDB catalog
	if err := os.MkdirAll(cfg.Storage.CatalogDir, 0755); err != nil {
		appLogger.Fatal("Failed to create catalog directory", map[string]interface{}{"error": err.Error()})
	}
	badgerDB, err := db.OpenBadger(cfg.Storage.CatalogDir)
	if err != nil {
		appLogger.Fatal("Failed to open catalog", map[string]interface{}{"error": err.Error()})
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			appLogger.Error("Error closing catalog", map[string]interface{}{"error": err.Error()})
		}
	}()

	m := metrics.New()

	// Initialize repositories
	files := storage.NewLocalFileStore(cfg.Storage.UploadDir)
	catalog := db.NewBadgerUploadRepository(badgerDB)
	datasetCache := cache.NewDatasetCache(cfg.Storage.DatasetCacheTTL)
	loader := dataset.NewLoader(files, catalog, datasetCache, m, appLogger)

	pool := worker.NewPool(cfg.Forecast.WorkerCount)
	defer pool.Close()

	models := []domainservice.Forecaster{
		forecast.NewSARIMAX(),
		forecast.NewGradientBoosting(),
		forecast.NewNeuralProphet(),
	}

	// Initialize services
	uploadService := service.NewUploadService(files, catalog, m, appLogger)
	analysisService := service.NewAnalysisService(loader, appLogger)
	forecastService := service.NewForecastService(loader, models, pool, cfg.Forecast.Timeout, m, appLogger)

	limiter := rate.NewLimiter(rate.Limit(cfg.Forecast.RateLimit), cfg.Forecast.RateBurst)

	router := handler.NewRouter(appLogger, m, cfg.Server.CORSOrigin,
		handler.NewHealthHandler(appLogger),
		handler.NewUploadHandler(uploadService, cfg.Server.MaxMultipartMemory, appLogger),
		handler.NewAnalysisHandler(analysisService, appLogger),
		handler.NewForecastHandler(forecastService, limiter, appLogger),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanExpired(ctx, datasetCache, cfg.Storage.DatasetCacheTTL, appLogger)

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server listening", map[string]interface{}{"addr": cfg.Server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Error("Server failed", map[string]interface{}{"error": err.Error()})
		}
	case <-ctx.Done():
		appLogger.Info("Shutting down", map[string]interface{}{"timeout": cfg.Server.ShutdownTimeout.String()})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// cleanExpired drops stale parsed datasets until ctx is done
func cleanExpired(ctx context.Context, c *cache.DatasetCache, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.CleanExpired(); n > 0 {
				log.Debug("Expired datasets evicted", map[string]interface{}{"count": n})
			}
		}
	}
}
