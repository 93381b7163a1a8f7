package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/alerta"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	formatoFecha = "2006-01-02"
	limiteExport = 5000
)

type PropuestaService interface {
	Crear(ctx context.Context, a Actor, req dto.CrearPropuestaRequest) (*dto.PropuestaResponse, error)
	Listar(ctx context.Context, a Actor, filter dto.PropuestaFilter) (*dto.PropuestaListResponse, error)
	Obtener(ctx context.Context, a Actor, id uuid.UUID) (*dto.PropuestaResponse, error)
	Actualizar(ctx context.Context, a Actor, id uuid.UUID, req dto.ActualizarPropuestaRequest) (*dto.PropuestaResponse, error)
	Comentar(ctx context.Context, a Actor, id uuid.UUID, req dto.ComentarioRequest) (*dto.PropuestaResponse, error)
	Eliminar(ctx context.Context, a Actor, id uuid.UUID) error

	MarcarEncomendados(ctx context.Context, a Actor, id uuid.UUID, req dto.MarcarEncomendadosRequest) (*dto.PropuestaResponse, error)
	FijarFechaEntrega(ctx context.Context, a Actor, id uuid.UUID, req dto.FechaEntregaRequest) (*dto.PropuestaResponse, error)

	ExportarXLSX(ctx context.Context, a Actor, filter dto.PropuestaFilter) (*excelize.File, error)
	ResumenPDF(ctx context.Context, a Actor, id uuid.UUID) (string, error)
}

type propuestaService struct {
	repo      repository.PropuestaRepository
	articulos repository.ArticuloRepository
	capturas  repository.CapturaRepository
	followUps repository.FollowUpRepository
	productos repository.ProductoRepository
	pdfPath   string
	vista     *presentador
	now       func() time.Time
}

func NewPropuestaService(
	repo repository.PropuestaRepository,
	articulos repository.ArticuloRepository,
	capturas repository.CapturaRepository,
	followUps repository.FollowUpRepository,
	productos repository.ProductoRepository,
	cfg *config.Config,
) PropuestaService {
	s := &propuestaService{
		repo:      repo,
		articulos: articulos,
		capturas:  capturas,
		followUps: followUps,
		productos: productos,
		pdfPath:   cfg.PDFStoragePath,
		now:       time.Now,
	}
	s.vista = &presentador{followUps: followUps, now: func() time.Time { return s.now() }}
	return s
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// New proposals start in the initial status with an empty log, owned by the
// caller. The number comes from a sequence inside the same transaction.

func (s *propuestaService) Crear(ctx context.Context, a Actor, req dto.CrearPropuestaRequest) (*dto.PropuestaResponse, error) {
	ahora := s.now()
	comercialID := a.UsuarioID
	p := &model.Propuesta{
		ID:                uuid.New(),
		NombreCliente:     strings.TrimSpace(req.NombreCliente),
		NombreComercial:   strings.TrimSpace(req.NombreComercial),
		ComercialID:       &comercialID,
		FechaPropuesta:    ahora,
		Estado:            estado.Inicial,
		Historial:         model.Historial{},
		Comentarios:       req.Comentarios,
		NumeroCliente:     req.NumeroCliente,
		TipoCliente:       req.TipoCliente,
		Pais:              req.Pais,
		NombreResponsable: req.NombreResponsable,
		AreaNegocio:       req.AreaNegocio,
	}
	if p.NombreComercial == "" {
		p.NombreComercial = a.Nombre
	}
	if req.FechaPropuesta != nil {
		p.FechaPropuesta = *req.FechaPropuesta
	}

	items := make([]model.ArticuloPropuesta, 0, len(req.Articulos))
	for _, in := range req.Articulos {
		item, err := s.articulo(ctx, p.ID, in)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return fmt.Errorf("numero de propuesta: %w", err)
		}
		p.NumeroPropuesta = num
		if err := s.repo.Create(ctx, tx, p); err != nil {
			return err
		}
		return s.articulos.CreateBatch(ctx, tx, items)
	})
	if txErr != nil {
		return nil, txErr
	}
	p.Articulos = items

	log.Info().Int("numero", p.NumeroPropuesta).Str("cliente", p.NombreCliente).Msg("propuesta creada")
	return s.vista.detalle(ctx, p, a.Idioma), nil
}

// articulo builds a line item. A known PHC code links the catalog product and
// fills the supplier when the caller left it empty.
func (s *propuestaService) articulo(ctx context.Context, propuestaID uuid.UUID, in dto.ArticuloInput) (model.ArticuloPropuesta, error) {
	item := model.ArticuloPropuesta{
		ID:                   uuid.New(),
		PropuestaID:          propuestaID,
		CodigoProducto:       in.CodigoProducto,
		Referencia:           in.Referencia,
		Designacion:          strings.TrimSpace(in.Designacion),
		Cantidad:             in.Cantidad,
		PrecioUnitario:       in.PrecioUnitario,
		Personalizado:        in.Personalizado,
		NotasPersonalizacion: in.NotasPersonalizacion,
		Proveedor:            in.Proveedor,
	}
	if in.ProductoID != nil {
		pid, err := uuid.Parse(*in.ProductoID)
		if err != nil {
			return item, fmt.Errorf("producto_id inválido: %w", err)
		}
		item.ProductoID = &pid
	}
	if in.CodigoProducto == nil || *in.CodigoProducto == "" || s.productos == nil {
		return item, nil
	}
	prod, err := s.productos.FindByCodigo(ctx, *in.CodigoProducto)
	if err != nil {
		if !isNotFound(err) {
			log.Warn().Err(err).Str("codigo", *in.CodigoProducto).Msg("catalog lookup failed, item kept unlinked")
		}
		return item, nil
	}
	if item.ProductoID == nil {
		item.ProductoID = &prod.ID
	}
	if item.Proveedor == nil && prod.Proveedor != nil {
		nombre := prod.Proveedor.Nombre
		item.Proveedor = &nombre
	}
	return item, nil
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *propuestaService) Listar(ctx context.Context, a Actor, filter dto.PropuestaFilter) (*dto.PropuestaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	scope := s.alcance(a, filter)

	if filter.Alerta {
		return s.listarConAlerta(ctx, a, filter, scope)
	}

	propuestas, total, err := s.repo.List(ctx, filter, scope)
	if err != nil {
		return nil, err
	}
	fus := s.followUpsDe(ctx, propuestas)
	hoy := s.now()

	data := make([]dto.PropuestaListItem, 0, len(propuestas))
	for i := range propuestas {
		p := &propuestas[i]
		data = append(data, listItem(p, alerta.Evaluar(p, fus[p.ID], hoy), a.Idioma))
	}
	return &dto.PropuestaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// listarConAlerta evaluates the alert-eligible statuses in memory; the
// result set is bounded by the number of open proposals.
func (s *propuestaService) listarConAlerta(ctx context.Context, a Actor, filter dto.PropuestaFilter, scope *uuid.UUID) (*dto.PropuestaListResponse, error) {
	propuestas, err := s.repo.ListByEstados(ctx, alerta.Elegibles(), scope)
	if err != nil {
		return nil, err
	}
	fus := s.followUpsDe(ctx, propuestas)
	hoy := s.now()
	cliente := strings.ToLower(filter.Cliente)

	var todas []dto.PropuestaListItem
	for i := range propuestas {
		p := &propuestas[i]
		if filter.Estado != "" && string(p.Estado) != filter.Estado {
			continue
		}
		if cliente != "" && !strings.Contains(strings.ToLower(p.NombreCliente), cliente) {
			continue
		}
		r := alerta.Evaluar(p, fus[p.ID], hoy)
		if !r.Alerta {
			continue
		}
		todas = append(todas, listItem(p, r, a.Idioma))
	}

	desde := (filter.Page - 1) * filter.Limit
	hasta := desde + filter.Limit
	if desde > len(todas) {
		desde = len(todas)
	}
	if hasta > len(todas) {
		hasta = len(todas)
	}
	data := append([]dto.PropuestaListItem{}, todas[desde:hasta]...)
	return &dto.PropuestaListResponse{Data: data, Total: int64(len(todas)), Page: filter.Page, Limit: filter.Limit}, nil
}

// alcance returns the comercial filter: always the caller for non-admins,
// the requested one (if any) for admins.
func (s *propuestaService) alcance(a Actor, filter dto.PropuestaFilter) *uuid.UUID {
	if scope := a.alcance(); scope != nil {
		return scope
	}
	if filter.ComercialID == "" {
		return nil
	}
	id, err := uuid.Parse(filter.ComercialID)
	if err != nil {
		return nil
	}
	return &id
}

// followUpsDe loads the follow-ups of a page. Failures leave the list without
// alert badges.
func (s *propuestaService) followUpsDe(ctx context.Context, propuestas []model.Propuesta) map[uuid.UUID][]model.FollowUp {
	if len(propuestas) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(propuestas))
	for _, p := range propuestas {
		ids = append(ids, p.ID)
	}
	fus, err := s.followUps.ListByPropuestas(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("propuestas", len(ids)).Msg("follow-ups unavailable, list rendered without alerts")
		return nil
	}
	return fus
}

func (s *propuestaService) Obtener(ctx context.Context, a Actor, id uuid.UUID) (*dto.PropuestaResponse, error) {
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	return s.vista.detalle(ctx, p, a.Idioma), nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Header edits append one edicion_propuesta entry listing every changed field
// as "label: old → new". A request that changes nothing writes nothing.

func (s *propuestaService) Actualizar(ctx context.Context, a Actor, id uuid.UUID, req dto.ActualizarPropuestaRequest) (*dto.PropuestaResponse, error) {
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}

	campos := map[string]interface{}{}
	var clausulas []string
	cambio := func(col string, actual string, nuevo *string, opcional bool) {
		if nuevo == nil {
			return
		}
		v := strings.TrimSpace(*nuevo)
		if v == actual {
			return
		}
		if v == "" && opcional {
			campos[col] = nil
		} else {
			campos[col] = v
		}
		clausulas = append(clausulas, i18n.T(a.Idioma, "hist_campo",
			i18n.T(a.Idioma, "campo_"+col), oVacio(a.Idioma, actual), oVacio(a.Idioma, v)))
	}

	cambio("nombre_cliente", p.NombreCliente, req.NombreCliente, false)
	cambio("nombre_comercial", p.NombreComercial, req.NombreComercial, false)
	cambio("nombre_responsable", deref(p.NombreResponsable), req.NombreResponsable, true)
	cambio("pais", deref(p.Pais), req.Pais, true)
	cambio("area_negocio", deref(p.AreaNegocio), req.AreaNegocio, true)
	cambio("numero_cliente", deref(p.NumeroCliente), req.NumeroCliente, true)
	cambio("tipo_cliente", deref(p.TipoCliente), req.TipoCliente, true)
	cambio("comentarios", deref(p.Comentarios), req.Comentarios, true)

	if len(campos) == 0 {
		return s.vista.detalle(ctx, p, a.Idioma), nil
	}

	entrada := historial.Nueva(historial.TipoEdicion, historial.Clausulas(clausulas...), a.Nombre, s.now())
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.AgregarHistorial(ctx, tx, p.ID, campos, entrada)
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, a, id)
}

func (s *propuestaService) Comentar(ctx context.Context, a Actor, id uuid.UUID, req dto.ComentarioRequest) (*dto.PropuestaResponse, error) {
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	entrada := historial.Nueva(historial.TipoComentario, strings.TrimSpace(req.Texto), a.Nombre, s.now())
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.AgregarHistorial(ctx, tx, p.ID, nil, entrada)
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, a, id)
}

// Eliminar is reserved to administrators.
func (s *propuestaService) Eliminar(ctx context.Context, a Actor, id uuid.UUID) error {
	if !a.Admin {
		return ErrPermisos
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, id)
	})
	if isNotFound(err) {
		return ErrPropuestaNoEncontrada
	}
	if err == nil {
		log.Info().Str("propuesta_id", id.String()).Str("actor", a.Nombre).Msg("propuesta eliminada")
	}
	return err
}

// ── Line items ────────────────────────────────────────────────────────────────

func (s *propuestaService) MarcarEncomendados(ctx context.Context, a Actor, id uuid.UUID, req dto.MarcarEncomendadosRequest) (*dto.PropuestaResponse, error) {
	numero := strings.TrimSpace(req.NumeroEncomenda)
	if numero == "" {
		return nil, ErrNumeroEncomendaVacio
	}
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	ids, err := articulosDe(p, req.ArticuloIDs)
	if err != nil {
		return nil, err
	}

	enc := make([]repository.Encomienda, 0, len(ids))
	for _, aid := range ids {
		enc = append(enc, repository.Encomienda{
			ArticuloID:      aid,
			Proveedor:       req.Proveedor,
			NumeroEncomenda: numero,
			FechaEncomenda:  req.FechaEncomenda,
		})
	}
	entrada := historial.Nueva(historial.TipoArticulosEncomendados,
		historial.Clausulas(i18n.T(a.Idioma, "hist_articulos_encomendados", len(ids), numero, req.FechaEncomenda.Format(formatoFecha))),
		a.Nombre, s.now())

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.articulos.MarcarEncomendados(ctx, tx, p.ID, enc); err != nil {
			return err
		}
		return s.repo.AgregarHistorial(ctx, tx, p.ID, nil, entrada)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrArticuloNoEncontrado
		}
		return nil, err
	}
	return s.Obtener(ctx, a, id)
}

// FijarFechaEntrega sets the expected delivery date of several items and logs
// one clause per item, showing the previous date when there was one.
func (s *propuestaService) FijarFechaEntrega(ctx context.Context, a Actor, id uuid.UUID, req dto.FechaEntregaRequest) (*dto.PropuestaResponse, error) {
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return nil, err
	}
	ids, err := articulosDe(p, req.ArticuloIDs)
	if err != nil {
		return nil, err
	}

	nueva := req.FechaPrevistaEntrega.Format(formatoFecha)
	porID := make(map[uuid.UUID]model.ArticuloPropuesta, len(p.Articulos))
	for _, art := range p.Articulos {
		porID[art.ID] = art
	}
	clausulas := make([]string, 0, len(ids))
	for _, aid := range ids {
		art := porID[aid]
		if art.FechaPrevistaEntrega == nil {
			clausulas = append(clausulas, i18n.T(a.Idioma, "hist_fecha_entrega", art.Designacion, nueva))
		} else {
			clausulas = append(clausulas, i18n.T(a.Idioma, "hist_fecha_entrega_cambio",
				art.Designacion, art.FechaPrevistaEntrega.Format(formatoFecha), nueva))
		}
	}
	entrada := historial.Nueva(historial.TipoFechaEntrega, historial.Clausulas(clausulas...), a.Nombre, s.now())

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.articulos.FijarFechaEntrega(ctx, tx, p.ID, ids, req.FechaPrevistaEntrega); err != nil {
			return err
		}
		return s.repo.AgregarHistorial(ctx, tx, p.ID, nil, entrada)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrArticuloNoEncontrado
		}
		return nil, err
	}
	return s.Obtener(ctx, a, id)
}

// articulosDe parses raw and checks every id is a line item of p.
func articulosDe(p *model.Propuesta, raw []string) ([]uuid.UUID, error) {
	propios := make(map[uuid.UUID]bool, len(p.Articulos))
	for _, art := range p.Articulos {
		propios[art.ID] = true
	}
	ids := make([]uuid.UUID, 0, len(raw))
	vistos := map[uuid.UUID]bool{}
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil || !propios[id] {
			return nil, ErrArticuloNoEncontrado
		}
		if !vistos[id] {
			vistos[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ── Documents ─────────────────────────────────────────────────────────────────

func (s *propuestaService) ExportarXLSX(ctx context.Context, a Actor, filter dto.PropuestaFilter) (*excelize.File, error) {
	filter.Page, filter.Limit = 1, limiteExport
	propuestas, _, err := s.repo.List(ctx, filter, s.alcance(a, filter))
	if err != nil {
		return nil, err
	}
	fus := s.followUpsDe(ctx, propuestas)
	hoy := s.now()

	filas := make([]infra.FilaExportacion, 0, len(propuestas))
	for i := range propuestas {
		p := &propuestas[i]
		r := alerta.Evaluar(p, fus[p.ID], hoy)
		if filter.Alerta && !r.Alerta {
			continue
		}
		filas = append(filas, infra.FilaExportacion{Propuesta: p, Alerta: alerta.Motivo(a.Idioma, r)})
	}
	return infra.ExportarPropuestasXLSX(filas, a.Idioma)
}

func (s *propuestaService) ResumenPDF(ctx context.Context, a Actor, id uuid.UUID) (string, error) {
	p, err := cargar(ctx, s.repo, a, id)
	if err != nil {
		return "", err
	}
	registros, err := s.capturas.ListRegistros(ctx, p.ID)
	if err != nil {
		return "", err
	}
	return infra.GenerarResumenPDF(p, registros, a.Idioma, s.pdfPath)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func oVacio(lang i18n.Idioma, s string) string {
	if s == "" {
		return i18n.T(lang, "vacio")
	}
	return s
}
