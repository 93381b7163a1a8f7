package service

import (
	"context"
	"errors"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/alerta"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EstadoService drives status changes. A change is either applied at once or,
// when its target needs data the caller has not sent yet, parked as a pending
// transition that is later confirmed with the capture or cancelled.
type EstadoService interface {
	Catalogo(lang i18n.Idioma) []dto.EstadoCatalogoItem

	Iniciar(ctx context.Context, a Actor, id uuid.UUID, req dto.IniciarTransicionRequest) (*dto.TransicionResponse, error)
	Confirmar(ctx context.Context, a Actor, token string, req dto.ConfirmarTransicionRequest) (*dto.PropuestaResponse, error)
	Cancelar(ctx context.Context, a Actor, token string) (*dto.PropuestaResponse, error)

	// Solicitar applies a transition in one step; a missing capture is a
	// validation error.
	Solicitar(ctx context.Context, a Actor, id uuid.UUID, destino string, captura *workflow.Captura) (*dto.PropuestaResponse, error)
}

type estadoService struct {
	repo        repository.PropuestaRepository
	articulos   repository.ArticuloRepository
	capturas    repository.CapturaRepository
	followUps   repository.FollowUpRepository
	proveedores repository.ProveedorRepository
	pendientes  repository.TransicionStore
	ttl         time.Duration
	vista       *presentador
	now         func() time.Time
}

func NewEstadoService(
	repo repository.PropuestaRepository,
	articulos repository.ArticuloRepository,
	capturas repository.CapturaRepository,
	followUps repository.FollowUpRepository,
	proveedores repository.ProveedorRepository,
	pendientes repository.TransicionStore,
	cfg *config.Config,
) EstadoService {
	ttl := cfg.PendingTransitionTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	s := &estadoService{
		repo:        repo,
		articulos:   articulos,
		capturas:    capturas,
		followUps:   followUps,
		proveedores: proveedores,
		pendientes:  pendientes,
		ttl:         ttl,
		now:         time.Now,
	}
	s.vista = &presentador{followUps: followUps, now: func() time.Time { return s.now() }}
	return s
}

func (s *estadoService) Catalogo(lang i18n.Idioma) []dto.EstadoCatalogoItem {
	out := make([]dto.EstadoCatalogoItem, 0, len(estado.Todos()))
	for _, e := range estado.Todos() {
		item := dto.EstadoCatalogoItem{EstadoInfo: estadoInfo(e, lang), Siguientes: []string{}}
		for _, sig := range e.Siguientes() {
			item.Siguientes = append(item.Siguientes, string(sig))
		}
		out = append(out, item)
	}
	return out
}

// ── Two-step flow ─────────────────────────────────────────────────────────────

func (s *estadoService) Iniciar(ctx context.Context, a Actor, id uuid.UUID, req dto.IniciarTransicionRequest) (*dto.TransicionResponse, error) {
	destino, err := estado.Parse(req.Destino)
	if err != nil {
		return nil, err
	}
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Validar(p.Estado, destino, p.Historial); err != nil {
		return nil, err
	}

	if req.Captura != nil || !workflow.RequiereCaptura(destino, p.Articulos) {
		resp, err := s.aplicar(ctx, a, p, destino, req.Captura)
		if err != nil {
			return nil, err
		}
		return &dto.TransicionResponse{Propuesta: resp}, nil
	}

	ahora := s.now()
	t := &repository.TransicionPendiente{
		Token:       uuid.NewString(),
		PropuestaID: p.ID,
		UsuarioID:   a.UsuarioID,
		De:          p.Estado,
		A:           destino,
		Creada:      ahora,
		Expira:      ahora.Add(s.ttl),
	}
	if err := s.pendientes.Guardar(ctx, t, s.ttl); err != nil {
		return nil, err
	}
	log.Debug().Str("propuesta_id", p.ID.String()).Str("a", string(destino)).Msg("transicion pendiente de captura")

	return &dto.TransicionResponse{Pendiente: &dto.TransicionPendienteResponse{
		Token:       t.Token,
		PropuestaID: p.ID.String(),
		De:          estadoInfo(t.De, a.Idioma),
		A:           estadoInfo(t.A, a.Idioma),
		ExpiraEn:    t.Expira,
		Contexto:    s.contexto(ctx, p, destino, a.Idioma),
	}}, nil
}

// Confirmar commits a pending transition. When only the capture is wrong the
// token survives so the form can be corrected and resent; any other outcome
// consumes it.
func (s *estadoService) Confirmar(ctx context.Context, a Actor, token string, req dto.ConfirmarTransicionRequest) (*dto.PropuestaResponse, error) {
	t, err := s.pendiente(ctx, a, token)
	if err != nil {
		return nil, err
	}
	p, err := cargar(ctx, s.repo, a, t.PropuestaID)
	if err != nil {
		s.descartar(ctx, token)
		return nil, err
	}
	if p.Estado != t.De {
		s.descartar(ctx, token)
		return nil, repository.ErrConflicto
	}

	resp, err := s.aplicar(ctx, a, p, t.A, req.Captura)
	if err != nil && errors.Is(err, workflow.ErrCapturaInvalida) {
		return nil, err
	}
	s.descartar(ctx, token)
	return resp, err
}

// Cancelar drops a pending transition. The proposal is not touched.
func (s *estadoService) Cancelar(ctx context.Context, a Actor, token string) (*dto.PropuestaResponse, error) {
	t, err := s.pendiente(ctx, a, token)
	if err != nil {
		return nil, err
	}
	s.descartar(ctx, token)
	p, err := cargar(ctx, s.repo, a, t.PropuestaID)
	if err != nil {
		return nil, err
	}
	return s.vista.detalle(ctx, p, a.Idioma), nil
}

func (s *estadoService) Solicitar(ctx context.Context, a Actor, id uuid.UUID, destino string, captura *workflow.Captura) (*dto.PropuestaResponse, error) {
	e, err := estado.Parse(destino)
	if err != nil {
		return nil, err
	}
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	return s.aplicar(ctx, a, p, e, captura)
}

func (s *estadoService) pendiente(ctx context.Context, a Actor, token string) (*repository.TransicionPendiente, error) {
	t, err := s.pendientes.Obtener(ctx, token)
	if err != nil {
		return nil, err
	}
	if t.UsuarioID != a.UsuarioID {
		return nil, ErrTransicionAjena
	}
	return t, nil
}

func (s *estadoService) descartar(ctx context.Context, token string) {
	if err := s.pendientes.Eliminar(ctx, token); err != nil {
		log.Warn().Err(err).Msg("pending transition not deleted, it will expire")
	}
}

// contexto gathers what the capture form of destino shows.
func (s *estadoService) contexto(ctx context.Context, p *model.Propuesta, destino estado.Estado, lang i18n.Idioma) dto.ContextoCaptura {
	c := dto.ContextoCaptura{Articulos: articulosResponse(p.Articulos)}
	switch destino {
	case estado.EncomendaEnCurso:
		c.Proveedores = s.nombresProveedores(ctx, p)
	case estado.Rejeitada:
		for _, m := range workflow.MotivosRechazo {
			c.Motivos = append(c.Motivos, dto.MotivoOption{Codigo: m, Etiqueta: i18n.T(lang, "motivo_"+m)})
		}
	}
	return c
}

// nombresProveedores merges the suppliers already on the items with the
// supplier catalog. The catalog is optional.
func (s *estadoService) nombresProveedores(ctx context.Context, p *model.Propuesta) []string {
	nombres := proveedoresDe(p.Articulos)
	if s.proveedores == nil {
		return nombres
	}
	catalogo, err := s.proveedores.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("supplier catalog unavailable")
		return nombres
	}
	vistos := make(map[string]bool, len(nombres))
	for _, n := range nombres {
		vistos[n] = true
	}
	for _, pr := range catalogo {
		if !vistos[pr.Nombre] {
			vistos[pr.Nombre] = true
			nombres = append(nombres, pr.Nombre)
		}
	}
	return nombres
}

// ── Commit ────────────────────────────────────────────────────────────────────
// Every write of the plan runs in one transaction guarded by the status the
// proposal was read in. A concurrent change makes the status update match no
// row and the whole transaction rolls back with ErrConflicto.

func (s *estadoService) aplicar(ctx context.Context, a Actor, p *model.Propuesta, destino estado.Estado, captura *workflow.Captura) (*dto.PropuestaResponse, error) {
	ahora := s.now()
	plan, err := workflow.Planificar(p, workflow.Peticion{
		Destino: destino,
		Captura: captura,
		Actor:   a.Nombre,
		Idioma:  a.Idioma,
		Ahora:   ahora,
	})
	if err != nil {
		return nil, err
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AplicarTransicion(ctx, tx, p.ID, plan.De, plan.A, plan.Campos, plan.Entrada); err != nil {
			return err
		}
		if plan.Amostra != nil {
			if err := s.capturas.CreateAmostra(ctx, tx, plan.Amostra); err != nil {
				return err
			}
		}
		if plan.Dossier != nil {
			if err := s.capturas.CreateDossier(ctx, tx, plan.Dossier); err != nil {
				return err
			}
		}
		if plan.Solicitud != nil {
			if err := s.capturas.ReemplazarSolicitud(ctx, tx, plan.Solicitud); err != nil {
				return err
			}
		}
		if len(plan.Registros) > 0 {
			if err := s.capturas.CreateRegistros(ctx, tx, plan.Registros); err != nil {
				return err
			}
		}
		if len(plan.Encomendados) > 0 {
			if err := s.articulos.MarcarEncomendados(ctx, tx, p.ID, encomiendas(plan.Encomendados)); err != nil {
				return err
			}
		}
		if len(plan.Adjudicados) > 0 {
			if err := s.articulos.MarcarAdjudicados(ctx, tx, p.ID, plan.Adjudicados); err != nil {
				return err
			}
		}
		if plan.SembrarFollowUp {
			return s.sembrarFollowUp(ctx, tx, p.ID, a.Nombre, ahora)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflicto) {
			log.Warn().Str("propuesta_id", p.ID.String()).Str("de", string(plan.De)).Msg("transicion en conflicto")
		}
		return nil, err
	}

	log.Info().
		Int("numero", p.NumeroPropuesta).
		Str("de", string(plan.De)).
		Str("a", string(plan.A)).
		Str("actor", a.Nombre).
		Msg("estado actualizado")

	actualizada, err := cargar(ctx, s.repo, a, p.ID)
	if err != nil {
		return nil, err
	}
	return s.vista.detalle(ctx, actualizada, a.Idioma), nil
}

func (s *estadoService) sembrarFollowUp(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, actor string, ahora time.Time) error {
	n, err := s.followUps.Count(ctx, tx, propuestaID)
	if err != nil || n > 0 {
		return err
	}
	return s.followUps.Create(ctx, tx, &model.FollowUp{
		ID:             uuid.New(),
		PropuestaID:    propuestaID,
		FechaRealizado: alerta.Dia(ahora),
		CreatedBy:      actor,
	})
}

func encomiendas(in []workflow.ArticuloEncomendado) []repository.Encomienda {
	out := make([]repository.Encomienda, 0, len(in))
	for _, e := range in {
		proveedor, cantidad := e.Proveedor, e.Cantidad
		out = append(out, repository.Encomienda{
			ArticuloID:      e.ArticuloID,
			Proveedor:       &proveedor,
			NumeroEncomenda: e.NumeroEncomenda,
			FechaEncomenda:  e.FechaEncomenda,
			Cantidad:        &cantidad,
		})
	}
	return out
}
