// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/sellerdash/backend-go/internal/api"
	"github.com/andresuchdata/sellerdash/backend-go/internal/cache"
	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/sellerdash/backend-go/internal/service"
	"github.com/andresuchdata/sellerdash/backend-go/internal/storage"
	"github.com/andresuchdata/sellerdash/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	settingsCache, err := cache.NewSettingsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, settings cache disabled")
		settingsCache = cache.NewNoopSettingsCache()
	}

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Object storage unavailable, upload archiving disabled")
		archive = storage.Noop{}
	}

	opts, err := service.EngineOptions(cfg.Import)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid import configuration")
	}

	orderRepo := postgres.NewOrderRepository(db)
	engine := importer.NewEngine(orderRepo, opts)
	importService := service.NewImportService(engine, postgres.NewImportRunRepository(db), archive, cfg.Import.ParseWorkers)
	orderService := service.NewOrderService(orderRepo)
	shippingService := service.NewShippingService(postgres.NewShippingRepository(db))
	settingsService := service.NewSettingsService(postgres.NewSettingsRepository(db), settingsCache)

	router := api.NewRouter(&api.Services{
		Imports:  importService,
		Orders:   orderService,
		Shipping: shippingService,
		Settings: settingsService,
		DB:       db,
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
