package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"github.com/thetechguyfromvietnam/tax-info/internal/config"
	"github.com/thetechguyfromvietnam/tax-info/internal/lookup"
	"github.com/thetechguyfromvietnam/tax-info/internal/server"
	"github.com/thetechguyfromvietnam/tax-info/internal/sheets"
	"github.com/thetechguyfromvietnam/tax-info/internal/store"
	"github.com/thetechguyfromvietnam/tax-info/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// A local .env is optional; deployed environments set real env vars.
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting tax info service",
		zap.Int("port", cfg.Server.Port),
		zap.Bool("read_only_storage", cfg.Storage.ReadOnly))

	// Persistence: a read-only deploy target gets the no-op store; the
	// record then survives only through the spreadsheet sync.
	var recordStore store.Store
	if cfg.Storage.ReadOnly {
		recordStore = store.NewNoopStore()
	} else {
		recordStore = store.NewFileStore(cfg.Storage.FilePath, logger)
	}

	// Spreadsheet sync: prefer the webhook; fall back to a local workbook
	// when only a workbook path is configured. An unconfigured webhook
	// client reports "not configured" per submission.
	var syncer sheets.Syncer
	switch {
	case cfg.Sheets.WebhookURL != "":
		syncer = sheets.NewClient(cfg.Sheets.WebhookURL, cfg.Sheets.Timeout, cfg.Sheets.MaxAttempts, logger)
	case cfg.Sheets.WorkbookPath != "":
		syncer = sheets.NewWorkbook(cfg.Sheets.WorkbookPath, logger)
	default:
		syncer = sheets.NewClient("", cfg.Sheets.Timeout, cfg.Sheets.MaxAttempts, logger)
	}

	resolver := lookup.NewResolver(logger,
		lookup.NewCustomSource(cfg.Lookup.CustomAPIURL, cfg.Lookup.Timeout, logger),
		lookup.NewRegistrySource(cfg.Lookup.RegistryEndpoint, cfg.Lookup.Timeout, logger),
		lookup.NewStaticSource(),
	)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := server.NewHandler(recordStore, resolver, syncer, logger)
	router := server.NewRouter(handler, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
