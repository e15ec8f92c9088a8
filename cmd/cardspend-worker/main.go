package main

import (
	"context"
	"errors"
	"os"

	"cardspend/internal/amqp"
	"cardspend/internal/cli"
	"cardspend/internal/log"
	"cardspend/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info().Msg("Starting cardspend-worker")

	if !cfg.AMQPEnabled() {
		logger.Fatal().Msg("AMQP_URL is required by the worker")
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	exporter, err := cli.NewExporter(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize statement exporter")
	}

	eventWorker := worker.NewEventWorker(repo, exporter, logger)

	scheduler := worker.NewScheduler(logger)
	if exporter != nil {
		if err := scheduler.AddJob(cfg.ExportSchedule, worker.ExportJob{Worker: eventWorker}); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.ExportSchedule).Msg("Failed to schedule statement export")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize AMQP client")
	}
	defer client.Close()

	err = client.Consume(ctx, eventWorker.HandleEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Event consumption failed")
		os.Exit(1)
	}
	logger.Info().Str(log.FieldOperation, log.OpShutdown).Msg("Worker stopped")
}
