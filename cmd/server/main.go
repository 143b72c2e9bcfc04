package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/config"
	"github.com/mamadbah2/fishledger/internal/repository"
	"github.com/mamadbah2/fishledger/internal/repository/memory"
	"github.com/mamadbah2/fishledger/internal/repository/mongodb"
	"github.com/mamadbah2/fishledger/internal/repository/sheets"
	"github.com/mamadbah2/fishledger/internal/scheduler"
	"github.com/mamadbah2/fishledger/internal/server/handlers"
	"github.com/mamadbah2/fishledger/internal/server/router"
	commandsvc "github.com/mamadbah2/fishledger/internal/service/commands"
	duesvc "github.com/mamadbah2/fishledger/internal/service/dues"
	loadingsvc "github.com/mamadbah2/fishledger/internal/service/loadings"
	reportingsvc "github.com/mamadbah2/fishledger/internal/service/reporting"
	stocksvc "github.com/mamadbah2/fishledger/internal/service/stock"
	whatsappsvc "github.com/mamadbah2/fishledger/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/fishledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/fishledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)

	store, err := openStore(cfg)
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()
	baseLogger.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	policy := cfg.Ledger.Policy()
	stockSvc := stocksvc.NewService(store, policy, logger.Named(baseLogger, "svc.stock"))
	loadingSvc := loadingsvc.NewService(store, stockSvc, policy, logger.Named(baseLogger, "svc.loadings"))
	dueSvc := duesvc.NewService(store, logger.Named(baseLogger, "svc.dues"))

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewSnapshotExporter(sheetsRepo)
	} else {
		baseLogger.Warn("google sheets not configured, snapshot export disabled")
	}
	reportingSvc := reportingsvc.NewService(stockSvc, dueSvc, store, exporter, logger.Named(baseLogger, "svc.reporting"))

	var (
		messagingSvc   whatsappsvc.MessagingService
		notifier       scheduler.Notifier
		webhookHandler *handlers.WebhookHandler
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(whatsappclient.Options{
			BaseURL:       cfg.WhatsApp.BaseURL,
			APIVersion:    cfg.WhatsApp.APIVersion,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		})
		commandDispatcher := commandsvc.NewService(stockSvc, dueSvc, logger.Named(baseLogger, "svc.commands"))
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp.VerifyToken, whatsClient, commandDispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp not configured, operator commands and digests disabled")
	}

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if messagingSvc != nil {
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, sched, logger.Named(baseLogger, "handlers.whatsapp"))
	}

	ledgerHandler := handlers.NewLedgerHandler(loadingSvc, stockSvc, dueSvc, reportingSvc, logger.Named(baseLogger, "handlers.ledger"))
	engine := router.New(ledgerHandler, webhookHandler, logger.Named(baseLogger, "router"))

	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		return memory.NewStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
