package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/router"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// External clients are built here (composition root) and shared by the
	// HTTP services and the worker pool.
	webhook := infra.NewWebhookClient(cfg.AlertWebhookURL, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	if !webhook.Configurado() {
		log.Warn().Msg("ALERT_WEBHOOK_URL not set, follow-up alerts will not be delivered")
	}
	mailer := infra.NewMailer(cfg)
	storage := infra.NewStorage(ctx, cfg)
	dispatcher := worker.NewDispatcher(rdb)

	app := router.New(ctx, cfg, db, rdb, router.Infra{
		Webhook:    webhook,
		Storage:    storage,
		Dispatcher: dispatcher,
	})

	// Async jobs: alert webhooks and e-mail copies
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
		worker.QueueAlertas: worker.NewAlertaWorker(app.Alertas),
		worker.QueueEmail:   worker.NewEmailWorker(mailer),
	})
	worker.StartAlertaCron(ctx, worker.AlertaCronConfig{
		Alertas:  app.Alertas,
		Cola:     dispatcher,
		CB:       webhook.Breaker(),
		Interval: cfg.AlertCronInterval,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     app.Engine,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: the auth event stream is long-lived
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("propuestas backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel() // stops workers, cron and limiter purges

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
