package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/metrics"
	"github.com/mamadbah2/stockledger/internal/repository"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/repository/sheets"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/router"
	authsvc "github.com/mamadbah2/stockledger/internal/service/auth"
	invoicesvc "github.com/mamadbah2/stockledger/internal/service/invoice"
	ledgersvc "github.com/mamadbah2/stockledger/internal/service/ledger"
	logssvc "github.com/mamadbah2/stockledger/internal/service/logs"
	warehousesvc "github.com/mamadbah2/stockledger/internal/service/warehouse"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store repository.Store
	switch cfg.Store.Driver {
	case config.DriverMemory:
		baseLogger.Warn("using in-memory store, data is lost on restart")
		store = memory.NewRepository()
	default:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	}

	m := metrics.New()
	ledgerOpts := []ledgersvc.Option{
		ledgersvc.WithTimeout(cfg.Ledger.RequestTimeout),
		ledgersvc.WithMetrics(m),
		ledgersvc.WithObserver(m),
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		ledgerOpts = append(ledgerOpts, ledgersvc.WithObserver(sheets.NewLogMirror(sheetsRepo, cfg.Sheets.LogRange, baseLogger.Named("repo.sheets.mirror"))))
		baseLogger.Info("google sheets log mirror enabled")
	} else {
		baseLogger.Info("google sheets credentials missing, log mirror disabled")
	}

	ledgerSvc := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"), ledgerOpts...)
	paginator := logssvc.NewPaginator(store, cfg.Ledger.PageSize, cfg.Ledger.MaxPageSize, baseLogger.Named("svc.logs"))
	warehouseSvc := warehousesvc.NewService(store, baseLogger.Named("svc.warehouse"))
	authSvc := authsvc.NewService(cfg.Auth, baseLogger.Named("svc.auth"))
	formatter := invoicesvc.NewFormatter(cfg.Invoice)

	watcher := scheduler.NewWatcher(warehouseSvc, cfg.Watch.PollSchedule, baseLogger.Named("scheduler"))
	if err := watcher.Start(); err != nil {
		baseLogger.Fatal("failed to start warehouse watcher", zap.Error(err))
	}
	defer watcher.Stop()

	warehouseHandler := handlers.NewWarehouseHandler(warehouseSvc, watcher, baseLogger.Named("handlers.warehouse"))
	engine := router.New(handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Stock:     handlers.NewStockHandler(ledgerSvc, warehouseSvc, baseLogger.Named("handlers.stock")),
		Logs:      handlers.NewLogsHandler(paginator, formatter, baseLogger.Named("handlers.logs")),
		Warehouse: warehouseHandler,
	}, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
	}, baseLogger.Named("router"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// No WriteTimeout: /api/v1/warehouse/stream keeps the response open until
	// the client leaves or the server shuts down.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.RegisterOnShutdown(warehouseHandler.Close)

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
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
