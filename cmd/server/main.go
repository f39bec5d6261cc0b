package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/sentenceflash/internal/api"
	"github.com/vytor/sentenceflash/internal/auth"
	"github.com/vytor/sentenceflash/internal/config"
	"github.com/vytor/sentenceflash/internal/db"
	"github.com/vytor/sentenceflash/internal/logger"
	"github.com/vytor/sentenceflash/internal/repository/cached"
	"github.com/vytor/sentenceflash/internal/repository/sqlite"
	"github.com/vytor/sentenceflash/internal/sheets"
	"github.com/vytor/sentenceflash/internal/training"
	"github.com/vytor/sentenceflash/internal/workbook"
	"github.com/vytor/sentenceflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("SentenceFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("source=%s", cfg.Source)
	log.Debug("default_sheet=%s", cfg.DefaultSheet)
	log.Debug("load_worker_count=%d", cfg.LoadWorkerCount)
	log.Debug("load_queue_size=%d", cfg.LoadQueueSize)
	log.Debug("columns: source=%s target=%s note=%v", cfg.ColumnSource, cfg.ColumnTarget, cfg.ColumnNote)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	var (
		client   sheets.ClientInterface
		identity auth.IdentityProvider
	)
	switch cfg.Source {
	case config.SourceWorkbook:
		log.Info("serving workbooks from %s", cfg.WorkbookDir)
		client = workbook.NewSource(cfg.WorkbookDir)
		identity = auth.LocalIdentity{}
	default:
		google := auth.NewGoogleIdentity(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		client = sheets.New(google, sheets.WithAPIKey(cfg.GoogleAPIKey))
		identity = google
	}

	gate := auth.NewGate(identity)
	gate.Subscribe(func(s auth.State) {
		if s == auth.StateRequested {
			log.Warn("sign-in required: open /auth/signin")
		}
	})

	loadPool := worker.NewPool(cfg.LoadWorkerCount, cfg.LoadQueueSize)
	repo := cached.NewSpreadsheetRepository(sqlite.NewCacheStore(database.DB), client)
	machine := training.NewMachine(repo, loadPool, gate,
		training.WithSheetName(cfg.DefaultSheet),
		training.WithColumns(training.Columns{
			Section: cfg.ColumnSection,
			Num:     cfg.ColumnNum,
			Source:  cfg.ColumnSource,
			Target:  cfg.ColumnTarget,
			Grammar: cfg.ColumnGrammar,
			Note:    cfg.ColumnNote,
		}),
		training.WithLogger(log),
	)

	srv := &api.Server{
		Spreadsheets: repo,
		Training:     machine,
		Gate:         gate,
		DB:           database,
	}

	ctx, cancel := context.WithCancel(context.Background())
	loadPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping load pool")
	cancel()
	loadPool.Stop()

	log.Info("===========================================")
	log.Info("SentenceFlash Server Stopped")
	log.Info("===========================================")
}
