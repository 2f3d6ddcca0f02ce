package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/sellerdash/backend-go/internal/config"
	"github.com/andresuchdata/sellerdash/backend-go/internal/drive"
	"github.com/andresuchdata/sellerdash/backend-go/internal/importer"
	"github.com/andresuchdata/sellerdash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/sellerdash/backend-go/internal/service"
	"github.com/andresuchdata/sellerdash/backend-go/internal/storage"
	"github.com/andresuchdata/sellerdash/backend-go/pkg/logger"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.LogLevel)
	ctx := context.Background()

	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	opts, err := service.EngineOptions(cfg.Import)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid import configuration")
	}

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Object storage unavailable, upload archiving disabled")
		archive = storage.Noop{}
	}

	engine := importer.NewEngine(postgres.NewOrderRepository(db), opts)
	importService := service.NewImportService(engine, postgres.NewImportRunRepository(db), archive, cfg.Import.ParseWorkers)
	syncer := drive.NewSyncer(drive.NewDownloader(driveService, cfg.Drive.DownloadsPerSec), importService, cfg.Drive.FolderID)

	r := mux.NewRouter()
	drive.NewHandler(driveService, syncer).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Drive.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	logger.Log.Info().Str("addr", addr).Msg("Drive sync server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatal().Err(err).Msg("Drive sync server stopped")
	}
}
