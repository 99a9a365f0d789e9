package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/assetflow/assetflow/internal/config"
	"github.com/assetflow/assetflow/internal/metrics"
	"github.com/assetflow/assetflow/internal/repository/mongodb"
	"github.com/assetflow/assetflow/internal/repository/relational"
	"github.com/assetflow/assetflow/internal/repository/sheets"
	"github.com/assetflow/assetflow/internal/scheduler"
	"github.com/assetflow/assetflow/internal/server/handlers"
	"github.com/assetflow/assetflow/internal/server/router"
	"github.com/assetflow/assetflow/internal/service/batches"
	"github.com/assetflow/assetflow/internal/service/importer"
	"github.com/assetflow/assetflow/internal/service/ingest"
	"github.com/assetflow/assetflow/internal/service/notify"
	"github.com/assetflow/assetflow/internal/service/review"
	"github.com/assetflow/assetflow/internal/spreadsheet"
	whatsappclient "github.com/assetflow/assetflow/pkg/clients/whatsapp"
	"github.com/assetflow/assetflow/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := relational.Open(cfg.Database, baseLogger.Named("gorm"))
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := relational.Close(db); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := relational.Migrate(ctx, db); err != nil {
			baseLogger.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	repos := relational.NewRepositories()
	m := metrics.New()

	pipeline := importer.NewPipeline(db, importer.Repositories{
		Vendors:   repos.Vendors,
		Assets:    repos.Assets,
		Movements: repos.Movements,
		Costings:  repos.Costings,
	}, spreadsheet.NewExtractor(nil, baseLogger.Named("extractor")), cfg.Import.BatchSize, baseLogger.Named("svc.importer"))

	lifecycle := batches.NewService(db, batches.Repositories{
		Vendors:   repos.Vendors,
		Assets:    repos.Assets,
		Movements: repos.Movements,
		Costings:  repos.Costings,
		Batches:   repos.Batches,
	}, baseLogger.Named("svc.batches"))

	opts := ingest.Options{
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Metrics:        m,
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		opts.Source = sheetsRepo
	} else {
		baseLogger.Warn("google sheets credentials missing, sheet import disabled")
	}

	var reports handlers.ReportFinder
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		opts.Archive = mongoRepo
		reports = mongoRepo
	}

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		opts.Notifier = notify.NewWhatsAppNotifier(whatsClient, cfg.WhatsApp.NotifyTo, baseLogger.Named("svc.notify"))
		baseLogger.Info("whatsapp import summaries enabled")
	}

	imports := ingest.NewService(pipeline, lifecycle, opts, baseLogger.Named("svc.ingest"))
	reviewSvc := review.NewService(db, repos.Costings, repos.Movements, baseLogger.Named("svc.review"))

	engine := router.New(router.Handlers{
		Imports: handlers.NewImportHandler(imports, lifecycle, reports, baseLogger.Named("handlers.imports")),
		Review:  handlers.NewReviewHandler(reviewSvc, baseLogger.Named("handlers.review")),
	}, m, cfg.Server.MaxUploadBytes, baseLogger.Named("router"))

	if cfg.Sheets.SyncCron != "" {
		sched, err := scheduler.NewScheduler(cfg.Sheets, imports, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
