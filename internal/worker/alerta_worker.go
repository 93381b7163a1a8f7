package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notificador sends the alert of one proposal. Satisfied by
// service.AlertaService.
type Notificador interface {
	NotificarPropuesta(ctx context.Context, id uuid.UUID) (*dto.NotificarResponse, error)
}

// AlertaWorker processes QueueAlertas. Outcomes that make the job moot
// (alert gone, already sent, another sender holds the lock) end it quietly;
// only delivery and storage failures are retried.
type AlertaWorker struct {
	svc Notificador
}

func NewAlertaWorker(svc Notificador) *AlertaWorker {
	return &AlertaWorker{svc: svc}
}

func (w *AlertaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job dto.AlertaJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("alerta_worker: invalid payload: %w", err)
	}
	id, err := uuid.Parse(job.PropuestaID)
	if err != nil {
		return fmt.Errorf("alerta_worker: invalid propuesta_id %q", job.PropuestaID)
	}

	return withRetry(ctx, maxAttempts, func(attempt int) error {
		resp, err := w.svc.NotificarPropuesta(ctx, id)
		switch {
		case err == nil:
			log.Info().Str("propuesta_id", job.PropuestaID).Str("tipo", resp.Tipo).Msg("alerta_worker: webhook sent")
			return nil
		case terminal(err):
			log.Debug().Err(err).Str("propuesta_id", job.PropuestaID).Msg("alerta_worker: nothing to send")
			return nil
		default:
			log.Warn().Err(err).Int("attempt", attempt+1).Str("propuesta_id", job.PropuestaID).
				Msg("alerta_worker: notification failed, retrying")
			return err
		}
	})
}

func terminal(err error) bool {
	return errors.Is(err, service.ErrSinAlerta) ||
		errors.Is(err, service.ErrYaNotificada) ||
		errors.Is(err, service.ErrNotificacionEnCurso) ||
		errors.Is(err, service.ErrPropuestaNoEncontrada)
}
