package service

import (
	"context"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/alerta"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type FollowUpService interface {
	Listar(ctx context.Context, a Actor, propuestaID uuid.UUID) ([]dto.FollowUpResponse, error)
	Crear(ctx context.Context, a Actor, propuestaID uuid.UUID, req dto.CrearFollowUpRequest) (*dto.FollowUpResponse, error)
}

type followUpService struct {
	repo       repository.FollowUpRepository
	propuestas repository.PropuestaRepository
	now        func() time.Time
}

func NewFollowUpService(repo repository.FollowUpRepository, propuestas repository.PropuestaRepository) FollowUpService {
	return &followUpService{repo: repo, propuestas: propuestas, now: time.Now}
}

// Listar returns the follow-ups of a proposal, oldest first. A failing store
// yields an empty list.
func (s *followUpService) Listar(ctx context.Context, a Actor, propuestaID uuid.UUID) ([]dto.FollowUpResponse, error) {
	if _, err := cargar(ctx, s.propuestas, a, propuestaID); err != nil {
		return nil, err
	}
	fus, err := s.repo.ListByPropuesta(ctx, propuestaID)
	if err != nil {
		log.Warn().Err(err).Str("propuesta_id", propuestaID.String()).Msg("follow-ups unavailable")
		return []dto.FollowUpResponse{}, nil
	}
	out := make([]dto.FollowUpResponse, 0, len(fus))
	for _, fu := range fus {
		out = append(out, followUpResponse(fu))
	}
	return out, nil
}

// Crear records a contact. Planning a new future date re-arms the follow-up
// alert: its idempotency flag is cleared in the same transaction.
func (s *followUpService) Crear(ctx context.Context, a Actor, propuestaID uuid.UUID, req dto.CrearFollowUpRequest) (*dto.FollowUpResponse, error) {
	p, err := cargar(ctx, s.propuestas, a, propuestaID)
	if err != nil {
		return nil, err
	}

	fu := &model.FollowUp{
		ID:             uuid.New(),
		PropuestaID:    p.ID,
		FechaRealizado: alerta.Dia(req.FechaRealizado),
		Notas:          req.Notas,
		FotoURL1:       req.FotoURL1,
		FotoURL2:       req.FotoURL2,
		CreatedBy:      a.Nombre,
		CreatedAt:      s.now(),
	}
	clausulas := []string{i18n.T(a.Idioma, "hist_follow_up", fu.FechaRealizado.Format(formatoFecha))}
	if req.FechaFuturoFollowUp != nil {
		futuro := alerta.Dia(*req.FechaFuturoFollowUp)
		fu.FechaFuturoFollowUp = &futuro
		clausulas = append(clausulas, i18n.T(a.Idioma, "hist_follow_up_futuro", futuro.Format(formatoFecha)))
	}
	if req.Notas != nil {
		clausulas = append(clausulas, strings.TrimSpace(*req.Notas))
	}
	entrada := historial.Nueva(historial.TipoFollowUp, historial.Clausulas(clausulas...), a.Nombre, s.now())

	err = runTx(ctx, s.propuestas.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, fu); err != nil {
			return err
		}
		if fu.FechaFuturoFollowUp != nil {
			if err := s.propuestas.LimpiarAlerta(ctx, tx, p.ID, alerta.Columna(alerta.TipoFollowUpFuturo)); err != nil {
				return err
			}
		}
		return s.propuestas.AgregarHistorial(ctx, tx, p.ID, nil, entrada)
	})
	if err != nil {
		return nil, err
	}

	resp := followUpResponse(*fu)
	return &resp, nil
}
