package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/folio-erp/folio-erp/internal/app"
	"github.com/folio-erp/folio-erp/internal/balance"
	"github.com/folio-erp/folio-erp/internal/invoices"
	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/masterdata"
	"github.com/folio-erp/folio-erp/internal/observability"
	"github.com/folio-erp/folio-erp/internal/orders"
	"github.com/folio-erp/folio-erp/internal/platform/cache"
	"github.com/folio-erp/folio-erp/internal/platform/db"
	"github.com/folio-erp/folio-erp/internal/reports"
	"github.com/folio-erp/folio-erp/internal/shared"
	"github.com/folio-erp/folio-erp/internal/stock"
	"github.com/folio-erp/folio-erp/internal/tenant"
	"github.com/folio-erp/folio-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	validate := validator.New()
	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	seq := shared.NewSequenceGenerator(pool)

	ledgerRepo := ledger.NewRepository(pool)
	engine := ledger.NewEngine()
	ledgerService := ledger.NewService(ledgerRepo, engine, auditLogger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, validate)

	tenantRepo := tenant.NewRepository(pool)
	tenantService := tenant.NewService(tenantRepo, ledgerService)
	tenantHandler := tenant.NewHandler(logger, tenantService, validate)

	masterRepo := masterdata.NewRepository(pool)
	masterService := masterdata.NewService(masterRepo, seq)
	masterHandler := masterdata.NewHandler(logger, masterService, validate)

	stockRepo := stock.NewRepository(pool)
	stockHandler := stock.NewHandler(logger, stockRepo)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, seq)
	ordersHandler := orders.NewHandler(logger, ordersService, validate)

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, masterRepo, engine, seq, auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoicesService, validate)

	balanceRepo := balance.NewRepository(pool)
	balanceService := balance.NewService(balanceRepo, invoicesRepo, ledgerRepo)
	balanceHandler := balance.NewHandler(logger, balanceService)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, redisClient, cfg.ReportCacheTTL, logger)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Metrics:           metrics,
		TenantMiddleware:  tenant.Middleware(logger, tenantService),
		TenantHandler:     tenantHandler,
		LedgerHandler:     ledgerHandler,
		MasterdataHandler: masterHandler,
		StockHandler:      stockHandler,
		OrdersHandler:     ordersHandler,
		InvoicesHandler:   invoicesHandler,
		BalanceHandler:    balanceHandler,
		ReportsHandler:    reportsHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
