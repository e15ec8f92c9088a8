package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cardspend/internal/amqp"
	"cardspend/internal/cli"
	apphttp "cardspend/internal/http"
	"cardspend/internal/log"
	"cardspend/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The services treat a nil interface as "events disabled"; never hand them
	// a typed nil client.
	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Events are best effort, the API keeps serving without them
			logger.Error().Err(err).Msg("Failed to connect to AMQP, lifecycle events disabled")
		} else {
			defer client.Close()
			publisher = client
			logger.Info().Str("exchange", cfg.AMQPExchange).Msg("AMQP publisher ready")
		}
	} else {
		logger.Info().Msg("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.New(repo, publisher, logger, services.Options{StatementAttempts: cfg.StatementCreateAttempts})

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		JWTSecret:          cfg.JWTSecret,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequestTimeout:     cfg.RequestTimeout,
		AllowedOrigins:     cfg.AllowedOrigins,
	}, svc, repo, logger)
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Bool("auth", cfg.JWTSecret != "").Msg("Starting cardspend server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
	logger.Info().Msg("Server stopped gracefully")
}
