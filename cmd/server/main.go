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

	"github.com/mamadbah2/eggledger/internal/auth"
	"github.com/mamadbah2/eggledger/internal/config"
	"github.com/mamadbah2/eggledger/internal/repository/memory"
	"github.com/mamadbah2/eggledger/internal/repository/mongodb"
	"github.com/mamadbah2/eggledger/internal/repository/sheets"
	"github.com/mamadbah2/eggledger/internal/scheduler"
	"github.com/mamadbah2/eggledger/internal/server/handlers"
	"github.com/mamadbah2/eggledger/internal/server/router"
	"github.com/mamadbah2/eggledger/internal/service/bookkeeping"
	reportingsvc "github.com/mamadbah2/eggledger/internal/service/reporting"
	whatsappclient "github.com/mamadbah2/eggledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/eggledger/pkg/logger"
)

type ledgerStore interface {
	bookkeeping.TransactionStore
	bookkeeping.SettingsStore
	reportingsvc.ReportStore
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.Error(err))
	}

	var store ledgerStore
	switch cfg.Store.Driver {
	case config.StoreMongoDB:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB, logger.Named(baseLogger, "repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	default:
		baseLogger.Warn("using in-memory store, data is lost on restart")
		store = memory.New(time.Now)
	}

	var mirror bookkeeping.Mirror
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		mirror = sheets.NewMirror(sheetsRepo)
		baseLogger.Info("google sheets mirror enabled")
	}

	scheme, err := auth.SchemeByName(cfg.Auth.PasswordScheme)
	if err != nil {
		baseLogger.Fatal("invalid password scheme", zap.Error(err))
	}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, time.Now)

	ledgerSvc := bookkeeping.NewService(bookkeeping.Dependencies{
		Transactions: store,
		Settings:     store,
		Scheme:       scheme,
		Tokens:       tokens,
		Mirror:       mirror,
		UnitCosts:    cfg.Ledger.UnitCosts,
		Location:     location,
	}, logger.Named(baseLogger, "svc.bookkeeping"))

	if err := ledgerSvc.SeedSecrets(context.Background(), cfg.Auth.DefaultAdminPassword, cfg.Auth.DefaultSubAdminPassword); err != nil {
		baseLogger.Fatal("failed to seed secrets", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(ledgerSvc, store, logger.Named(baseLogger, "svc.reporting"))

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(whatsappclient.Options{
			BaseURL:       cfg.WhatsApp.BaseURL,
			APIVersion:    cfg.WhatsApp.APIVersion,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		})
		notifier = whatsappclient.NewNotifier(whatsClient, cfg.WhatsApp.ReportRecipient)
		baseLogger.Info("whatsapp report delivery enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, daily reports are stored but not sent")
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc, sched, logger.Named(baseLogger, "handlers.ledger"))
	engine := router.New(ledgerHandler, tokens, cfg.Server.AllowedOrigins, logger.Named(baseLogger, "router"))

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
