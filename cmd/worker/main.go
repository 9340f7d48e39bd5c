package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bps-logistics/backoffice/internal/app"
	"github.com/bps-logistics/backoffice/internal/booking"
	"github.com/bps-logistics/backoffice/internal/masterdata/stations"
	"github.com/bps-logistics/backoffice/internal/notify"
	"github.com/bps-logistics/backoffice/internal/platform/db"
	"github.com/bps-logistics/backoffice/internal/quotation"
	"github.com/bps-logistics/backoffice/internal/sequence"
	"github.com/bps-logistics/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	numbers := sequence.NewGenerator(sequence.NewPostgresStore(pool))
	stationService := stations.NewService(stations.NewRepository(pool))
	bookingService := booking.NewService(booking.NewRepository(pool), stationService, numbers)
	quotationService := quotation.NewService(quotation.NewRepository(pool), stationService, numbers, bookingService)

	purgeHandler := jobs.NewRetentionPurgeHandler(logger, map[string]jobs.Purger{
		"bookings":   bookingService,
		"quotations": quotationService,
	})

	purgeTask, err := jobs.NewRetentionPurgeTask(jobs.RetentionPurgePayload{
		RetentionHours: int(cfg.RetentionWindow.Hours()),
	})
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: notify.TaskTypeEmail, Handler: notify.EmailHandler(logger)},
			{Type: notify.TaskTypeWhatsApp, Handler: notify.WhatsAppHandler(logger)},
			{Type: jobs.TaskTypeRetentionPurge, Handler: purgeHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
