package worker

// Periodic sweep that finds proposals whose alert is due and not yet sent,
// and queues one notification job per proposal. The circuit breaker of the
// webhook client gates the sweep so a downed endpoint is not hammered.

import (
	"context"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultAlertaInterval = time.Hour

// AlertasPendientes is satisfied by service.AlertaService.
type AlertasPendientes interface {
	Pendientes(ctx context.Context) ([]uuid.UUID, error)
}

// ColaAlertas is satisfied by *Dispatcher.
type ColaAlertas interface {
	EnqueueAlerta(ctx context.Context, propuestaID uuid.UUID) error
}

// AlertaCronConfig holds all dependencies for the alert sweep.
type AlertaCronConfig struct {
	Alertas  AlertasPendientes
	Cola     ColaAlertas
	CB       *infra.CircuitBreaker // optional
	Interval time.Duration
}

// StartAlertaCron runs one sweep right away, then one per Interval, until
// ctx is cancelled.
func StartAlertaCron(ctx context.Context, cfg AlertaCronConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultAlertaInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("alerta_cron: started")
		procesarAlertas(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alerta_cron: shutting down")
				return
			case <-ticker.C:
				procesarAlertas(ctx, cfg)
			}
		}
	}()
}

// procesarAlertas queues the due alerts and returns how many were queued.
func procesarAlertas(ctx context.Context, cfg AlertaCronConfig) int {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("alerta_cron: circuit breaker is open, skipping tick")
		return 0
	}

	ids, err := cfg.Alertas.Pendientes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alerta_cron: failed to list pending alerts")
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	encoladas := 0
	for _, id := range ids {
		if err := cfg.Cola.EnqueueAlerta(ctx, id); err != nil {
			log.Warn().Err(err).Str("propuesta_id", id.String()).Msg("alerta_cron: enqueue failed")
			continue
		}
		encoladas++
	}
	log.Info().Int("pendientes", len(ids)).Int("encoladas", encoladas).Msg("alerta_cron: alerts queued")
	return encoladas
}
