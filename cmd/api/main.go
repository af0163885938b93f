package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/application/intake"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/application/syncer"
	"github.com/sangkips/quotecrm/internal/config"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/database"
	"github.com/sangkips/quotecrm/internal/infrastructure/metrics"
	"github.com/sangkips/quotecrm/internal/infrastructure/notify"
	"github.com/sangkips/quotecrm/internal/infrastructure/realtime"
	"github.com/sangkips/quotecrm/internal/infrastructure/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/storage"
	"github.com/sangkips/quotecrm/internal/presentation/http/handler"
	"github.com/sangkips/quotecrm/internal/presentation/http/routes"
	"github.com/sangkips/quotecrm/pkg/utils"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		fatal(logger, "failed to run migrations", err)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.App.Namespace, cfg.JWT.ExpiryHours)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.App.Namespace)
	}

	// Repositories
	settingsRepo := repository.NewSettingsRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	clientRepo := repository.NewClientRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Live collections, optionally fanned out across instances over Redis
	hub := realtime.NewHub(logger)
	feeds := realtime.NewFeeds(hub, settingsRepo, templateRepo, inquiryRepo, realtime.WithLogger(logger))
	if cfg.Redis.Enabled() {
		rdb, err := realtime.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, change notices stay local", "error", err)
		} else {
			defer rdb.Close()
			bridge := realtime.NewRedisBridge(rdb, cfg.App.Namespace, logger)
			hub.SetPublisher(bridge)
			go func() {
				if err := bridge.Run(ctx, hub); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("redis bridge stopped", "error", err)
				}
			}()
		}
	}

	relay, err := notify.NewRelay(cfg.Notify, cfg.SMTP)
	if err != nil {
		fatal(logger, "invalid notification relay", err)
	}
	dispatcher := notify.NewDispatcher(relay, cfg.Notify.HTTPTimeout, logger, m)

	var archive service.Archiver
	if cfg.S3.Enabled() {
		s3Archive, err := storage.NewS3Archive(ctx, cfg.S3, cfg.App.Namespace)
		if err != nil {
			logger.Warn("quote archiving disabled", "error", err)
		} else {
			archive = s3Archive
		}
	}

	// Services
	bus := editor.NewBus()
	quoteEditor := editor.New(settingsRepo, quoteRepo, bus,
		editor.WithLogger(logger),
		editor.WithNotifier(hub))

	settingsService := service.NewSettingsService(settingsRepo, hub)
	templateService := service.NewTemplateService(templateRepo, hub, m, logger)
	quoteService := service.NewQuoteService(quoteRepo, bus, hub)
	inquiryService := service.NewInquiryService(inquiryRepo, bus, hub)
	clientService := service.NewClientService(clientRepo, quoteEditor, hub)
	dashboardService := service.NewDashboardService(analyticsRepo, inquiryRepo)
	documentService := service.NewDocumentService(quoteService, settingsService, quoteEditor, archive)
	exportService := service.NewExportService(quoteRepo, inquiryRepo)

	newController := func() *syncer.Controller {
		return syncer.New(feeds, templateRepo,
			syncer.WithLogger(logger),
			syncer.WithMetrics(m),
			syncer.WithNotifier(hub))
	}

	handlers := &routes.Handlers{
		Settings:  handler.NewSettingsHandler(settingsService),
		Template:  handler.NewTemplateHandler(templateService),
		Quote:     handler.NewQuoteHandler(quoteService, documentService),
		Inquiry:   handler.NewInquiryHandler(inquiryService),
		Client:    handler.NewClientHandler(clientService),
		Editor:    handler.NewEditorHandler(quoteEditor, templateService, clientService, documentService),
		Dashboard: handler.NewDashboardHandler(dashboardService, exportService),
		Sync:      handler.NewSyncHandler(newController),
		Public: handler.NewPublicHandler(settingsService, templateService, intake.Deps{
			Store:      inquiryRepo,
			Dispatcher: dispatcher,
			Notifier:   hub,
			Logger:     logger,
			Metrics:    m,
		}),
	}

	router, stopLimiters := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          logger,
		Metrics:         m,
	})

	go purgeIdempotencyKeys(ctx, idempotencyRepo, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "name", cfg.App.Name, "port", cfg.App.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server failed", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	stopLimiters()
	dispatcher.Wait()
}

func newLogger(app config.AppConfig) *slog.Logger {
	level := slog.LevelInfo
	if app.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if app.Env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.Purge(ctx, now)
			if err != nil {
				logger.Warn("purging idempotency keys failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("purged idempotency keys", "count", n)
			}
		}
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
