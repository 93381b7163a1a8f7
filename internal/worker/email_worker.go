package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"

	"github.com/rs/zerolog/log"
)

// Enviador delivers one mail. Satisfied by *infra.Mailer.
type Enviador interface {
	Configurado() bool
	Enviar(to []string, subject, body, attachPath string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer Enviador
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Enviador) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one mail. Jobs without recipients, or arriving while SMTP is
// not configured, are dropped.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job dto.CorreoJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if len(job.Para) == 0 {
		log.Warn().Str("asunto", job.Asunto).Msg("email_worker: no recipients, skipping")
		return nil
	}
	if !w.mailer.Configurado() {
		log.Warn().Strs("to", job.Para).Msg("email_worker: SMTP not configured, dropping mail")
		return nil
	}

	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		if err := w.mailer.Enviar(job.Para, job.Asunto, job.Cuerpo, job.Adjunto); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Strs("to", job.Para).Msg("email_worker: send failed")
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Strs("to", job.Para).Str("asunto", job.Asunto).Msg("email_worker: mail sent")
	return nil
}
