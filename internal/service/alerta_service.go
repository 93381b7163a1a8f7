package service

import (
	"context"
	"fmt"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/alerta"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notificador posts alert payloads to the automation webhook.
type Notificador interface {
	Configurado() bool
	Enviar(ctx context.Context, payload infra.AlertaPayload) error
}

// Encolador pushes async jobs; the worker dispatcher implements it.
type Encolador interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

type AlertaService interface {
	Listar(ctx context.Context, a Actor) (*dto.AlertaListResponse, error)
	Notificar(ctx context.Context, a Actor, id uuid.UUID) (*dto.NotificarResponse, error)

	// Pendientes lists the proposals alerting right now whose alert was not
	// notified yet. The cron enqueues one job per id.
	Pendientes(ctx context.Context) ([]uuid.UUID, error)
	// NotificarPropuesta is the worker entry point; it runs without a caller.
	NotificarPropuesta(ctx context.Context, id uuid.UUID) (*dto.NotificarResponse, error)
}

type alertaService struct {
	repo      repository.PropuestaRepository
	followUps repository.FollowUpRepository
	webhook   Notificador
	locker    repository.Locker
	cola      Encolador
	correo    []string
	idioma    i18n.Idioma
	lockTTL   time.Duration
	now       func() time.Time
}

func NewAlertaService(
	repo repository.PropuestaRepository,
	followUps repository.FollowUpRepository,
	webhook Notificador,
	locker repository.Locker,
	cola Encolador,
	cfg *config.Config,
) AlertaService {
	return &alertaService{
		repo:      repo,
		followUps: followUps,
		webhook:   webhook,
		locker:    locker,
		cola:      cola,
		correo:    cfg.AlertEmailRecipients(),
		idioma:    i18n.Parse(cfg.DefaultLang),
		lockTTL:   time.Minute,
		now:       time.Now,
	}
}

// Listar is the alert dashboard: every visible proposal alerting today.
func (s *alertaService) Listar(ctx context.Context, a Actor) (*dto.AlertaListResponse, error) {
	propuestas, err := s.repo.ListByEstados(ctx, alerta.Elegibles(), a.alcance())
	if err != nil {
		return nil, err
	}
	fus, err := s.followUpsDe(ctx, propuestas)
	if err != nil {
		log.Warn().Err(err).Msg("follow-ups unavailable, alert dashboard empty")
		return &dto.AlertaListResponse{Data: []dto.AlertaItem{}}, nil
	}

	hoy := s.now()
	data := make([]dto.AlertaItem, 0)
	for i := range propuestas {
		p := &propuestas[i]
		r := alerta.Evaluar(p, fus[p.ID], hoy)
		if !r.Alerta {
			continue
		}
		data = append(data, dto.AlertaItem{
			Propuesta:  listItem(p, r, a.Idioma),
			Alerta:     *alertaInfo(r, a.Idioma),
			Notificada: alerta.Enviada(p, r.Tipo),
		})
	}
	return &dto.AlertaListResponse{Data: data, Total: len(data)}, nil
}

func (s *alertaService) Notificar(ctx context.Context, a Actor, id uuid.UUID) (*dto.NotificarResponse, error) {
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	return s.notificar(ctx, p, a.Idioma)
}

func (s *alertaService) NotificarPropuesta(ctx context.Context, id uuid.UUID) (*dto.NotificarResponse, error) {
	return s.Notificar(ctx, Actor{Admin: true, Idioma: s.idioma}, id)
}

func (s *alertaService) Pendientes(ctx context.Context) ([]uuid.UUID, error) {
	propuestas, err := s.repo.ListByEstados(ctx, alerta.Elegibles(), nil)
	if err != nil {
		return nil, err
	}
	fus, err := s.followUpsDe(ctx, propuestas)
	if err != nil {
		return nil, err
	}
	hoy := s.now()
	var ids []uuid.UUID
	for i := range propuestas {
		p := &propuestas[i]
		r := alerta.Evaluar(p, fus[p.ID], hoy)
		if r.Alerta && alerta.Enviada(p, r.Tipo) == nil {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// notificar sends the webhook for the current alert of p at most once per
// alert kind. The flag is claimed with a conditional update before posting
// and released again if the receiver did not confirm. A short Redis lock
// serializes senders of the same alert.
//
// Unlike the read views, a follow-up load failure aborts here: deciding
// without them could alert a proposal that a planned contact silences.
func (s *alertaService) notificar(ctx context.Context, p *model.Propuesta, lang i18n.Idioma) (*dto.NotificarResponse, error) {
	fus, err := s.followUps.ListByPropuesta(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("follow-ups de %d: %w", p.NumeroPropuesta, err)
	}
	r := alerta.Evaluar(p, fus, s.now())
	if !r.Alerta {
		return nil, ErrSinAlerta
	}
	if alerta.Enviada(p, r.Tipo) != nil {
		return nil, ErrYaNotificada
	}

	if s.locker != nil {
		clave := fmt.Sprintf("alerta:%s:%s", p.ID, r.Tipo)
		ok, err := s.locker.Adquirir(ctx, clave, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotificacionEnCurso
		}
		defer func() {
			if err := s.locker.Liberar(context.WithoutCancel(ctx), clave); err != nil {
				log.Warn().Err(err).Str("lock", clave).Msg("alert lock not released, it will expire")
			}
		}()
	}

	// claim the flag before posting; a sender that loaded p before another
	// one stamped it loses here instead of sending twice
	columna := alerta.Columna(r.Tipo)
	// postgres keeps microseconds; the release matches on this value
	marca := s.now().Truncate(time.Microsecond)
	marcada, err := s.repo.MarcarAlertaEnviada(ctx, p.ID, columna, marca)
	if err != nil {
		return nil, err
	}
	if !marcada {
		return nil, ErrYaNotificada
	}

	payload := infra.AlertaPayload{
		NumeroPropuesta:   p.NumeroPropuesta,
		NombreCliente:     p.NombreCliente,
		NombreComercial:   p.NombreComercial,
		NombreResponsable: deref(p.NombreResponsable),
		TipoAlerta:        string(r.Tipo),
	}
	if err := s.webhook.Enviar(ctx, payload); err != nil {
		log.Error().Err(err).Int("numero", p.NumeroPropuesta).Str("tipo", string(r.Tipo)).Msg("alert webhook failed")
		if uerr := s.repo.DesmarcarAlerta(context.WithoutCancel(ctx), p.ID, columna, marca); uerr != nil {
			log.Error().Err(uerr).Int("numero", p.NumeroPropuesta).Str("tipo", string(r.Tipo)).Msg("alert claim not released, alert stays silenced")
		}
		return nil, fmt.Errorf("%w: %v", ErrNotificacionFallida, err)
	}
	log.Info().Int("numero", p.NumeroPropuesta).Str("tipo", string(r.Tipo)).Msg("alert notified")

	motivo := alerta.Motivo(lang, r)
	s.copiaCorreo(ctx, p, motivo, lang)
	return &dto.NotificarResponse{Enviada: true, Tipo: string(r.Tipo), Detalle: motivo}, nil
}

// copiaCorreo queues the optional e-mail copy. It never fails the notify.
func (s *alertaService) copiaCorreo(ctx context.Context, p *model.Propuesta, motivo string, lang i18n.Idioma) {
	if s.cola == nil || len(s.correo) == 0 {
		return
	}
	job := dto.CorreoJob{
		Para:   s.correo,
		Asunto: i18n.T(lang, "correo_alerta_asunto", p.NumeroPropuesta, p.NombreCliente),
		Cuerpo: i18n.T(lang, "correo_alerta_cuerpo", p.NumeroPropuesta, p.NombreCliente, p.NombreComercial, motivo),
	}
	if err := s.cola.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Int("numero", p.NumeroPropuesta).Msg("alert e-mail copy not queued")
	}
}

func (s *alertaService) followUpsDe(ctx context.Context, propuestas []model.Propuesta) (map[uuid.UUID][]model.FollowUp, error) {
	if len(propuestas) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(propuestas))
	for _, p := range propuestas {
		ids = append(ids, p.ID)
	}
	return s.followUps.ListByPropuestas(ctx, ids)
}
