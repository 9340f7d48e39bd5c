package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/bps-logistics/backoffice/internal/app"
	"github.com/bps-logistics/backoffice/internal/booking"
	"github.com/bps-logistics/backoffice/internal/delivery"
	"github.com/bps-logistics/backoffice/internal/invoice"
	"github.com/bps-logistics/backoffice/internal/masterdata/customers"
	"github.com/bps-logistics/backoffice/internal/masterdata/stations"
	"github.com/bps-logistics/backoffice/internal/notify"
	"github.com/bps-logistics/backoffice/internal/platform/cache"
	"github.com/bps-logistics/backoffice/internal/platform/db"
	"github.com/bps-logistics/backoffice/internal/quotation"
	"github.com/bps-logistics/backoffice/internal/reports"
	"github.com/bps-logistics/backoffice/internal/sequence"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

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

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	numbers := sequence.NewGenerator(sequence.NewPostgresStore(pool))

	stationService := stations.NewService(stations.NewRepository(pool))
	stationHandler := stations.NewHandler(logger, stationService)

	customerService := customers.NewService(customers.NewRepository(pool))
	customerHandler := customers.NewHandler(logger, customerService)

	bookingService := booking.NewService(booking.NewRepository(pool), stationService, numbers)
	bookingService.SetNotifier(notify.NewEnqueuer(asynqClient, logger))
	bookingHandler := booking.NewHandler(logger, bookingService)

	quotationService := quotation.NewService(quotation.NewRepository(pool), stationService, numbers, bookingService)
	quotationHandler := quotation.NewHandler(logger, quotationService)

	deliveryService := delivery.NewService(delivery.NewRepository(pool), stationService, bookingService)
	deliveryHandler := delivery.NewHandler(logger, deliveryService)

	invoiceService := invoice.NewService(invoice.NewRepository(pool), bookingService, stationService, numbers)
	invoiceHandler := invoice.NewHandler(logger, invoiceService)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache)
	reportHandler := reports.NewHandler(logger, reportService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		BookingHandler:   bookingHandler,
		QuotationHandler: quotationHandler,
		DeliveryHandler:  deliveryHandler,
		InvoiceHandler:   invoiceHandler,
		StationHandler:   stationHandler,
		CustomerHandler:  customerHandler,
		ReportHandler:    reportHandler,
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
