package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/alerta"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor is the caller of a service operation, resolved by the HTTP layer.
type Actor struct {
	UsuarioID uuid.UUID
	Nombre    string
	Admin     bool
	Idioma    i18n.Idioma
}

// alcance limits non-admins to their own proposals.
func (a Actor) alcance() *uuid.UUID {
	if a.Admin {
		return nil
	}
	id := a.UsuarioID
	return &id
}

func (a Actor) puedeVer(p *model.Propuesta) bool {
	return a.Admin || (p.ComercialID != nil && *p.ComercialID == a.UsuarioID)
}

// runTx runs fn inside a transaction. A nil db (unit tests with stub
// repositories) calls fn(nil) directly.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// cargar fetches a proposal the actor may see. Missing and foreign proposals
// are indistinguishable to the caller.
func cargar(ctx context.Context, repo repository.PropuestaRepository, a Actor, id uuid.UUID) (*model.Propuesta, error) {
	p, err := repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPropuestaNoEncontrada
		}
		return nil, err
	}
	if !a.puedeVer(p) {
		return nil, ErrPropuestaNoEncontrada
	}
	return p, nil
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// presentador builds the read models shared by the proposal services.
type presentador struct {
	followUps repository.FollowUpRepository
	now       func() time.Time
}

// detalle renders p. Follow-ups are optional: when they cannot be loaded the
// view carries none and no alert rather than failing.
func (v *presentador) detalle(ctx context.Context, p *model.Propuesta, lang i18n.Idioma) *dto.PropuestaResponse {
	fus, err := v.followUps.ListByPropuesta(ctx, p.ID)
	if err != nil {
		log.Warn().Err(err).Str("propuesta_id", p.ID.String()).Msg("follow-ups unavailable, rendering without them")
		fus = nil
	}

	resp := &dto.PropuestaResponse{
		ID:                  p.ID.String(),
		NumeroPropuesta:     p.NumeroPropuesta,
		NombreCliente:       p.NombreCliente,
		NombreComercial:     p.NombreComercial,
		FechaPropuesta:      p.FechaPropuesta,
		FechaEnvioPropuesta: p.FechaEnvioPropuesta,
		Estado:              estadoInfo(p.Estado, lang),
		Comentarios:         p.Comentarios,
		NumeroCliente:       p.NumeroCliente,
		TipoCliente:         p.TipoCliente,
		Pais:                p.Pais,
		NombreResponsable:   p.NombreResponsable,
		AreaNegocio:         p.AreaNegocio,
		NumeroFactura:       p.NumeroFactura,
		ValorAdjudicacion:   p.ValorAdjudicacion,
		MotivoRechazo:       p.MotivoRechazo,
		MotivoRechazoOtro:   p.MotivoRechazoOtro,
		ValorTotal:          valorTotal(p.Articulos),
		Articulos:           articulosResponse(p.Articulos),
		Historial:           historial.Render(p.Historial),
		FollowUps:           make([]dto.FollowUpResponse, 0, len(fus)),
		Alerta:              alertaInfo(alerta.Evaluar(p, fus, v.now()), lang),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.ComercialID != nil {
		id := p.ComercialID.String()
		resp.ComercialID = &id
	}
	for _, fu := range fus {
		resp.FollowUps = append(resp.FollowUps, followUpResponse(fu))
	}
	resp.Disponibles = make([]dto.EstadoInfo, 0)
	for _, e := range workflow.Disponibles(p.Estado, p.Historial) {
		resp.Disponibles = append(resp.Disponibles, estadoInfo(e, lang))
	}
	return resp
}

func listItem(p *model.Propuesta, r alerta.Resultado, lang i18n.Idioma) dto.PropuestaListItem {
	return dto.PropuestaListItem{
		ID:                  p.ID.String(),
		NumeroPropuesta:     p.NumeroPropuesta,
		NombreCliente:       p.NombreCliente,
		NombreComercial:     p.NombreComercial,
		FechaPropuesta:      p.FechaPropuesta,
		FechaEnvioPropuesta: p.FechaEnvioPropuesta,
		Estado:              estadoInfo(p.Estado, lang),
		ValorTotal:          valorTotal(p.Articulos),
		Alerta:              alertaInfo(r, lang),
		UpdatedAt:           p.UpdatedAt,
	}
}

func estadoInfo(e estado.Estado, lang i18n.Idioma) dto.EstadoInfo {
	m := e.Meta()
	return dto.EstadoInfo{
		Codigo:   string(e),
		Etiqueta: e.Etiqueta(lang),
		Color:    m.Color,
		Icono:    m.Icono,
		Terminal: m.Terminal,
	}
}

func alertaInfo(r alerta.Resultado, lang i18n.Idioma) *dto.AlertaInfo {
	if !r.Alerta {
		return nil
	}
	return &dto.AlertaInfo{
		Tipo:       string(r.Tipo),
		Dias:       r.Dias,
		Motivo:     alerta.Motivo(lang, r),
		Referencia: r.Referencia,
	}
}

func valorTotal(articulos []model.ArticuloPropuesta) decimal.Decimal {
	total := decimal.Zero
	for _, a := range articulos {
		total = total.Add(a.PrecioUnitario.Mul(decimal.NewFromInt(int64(a.Cantidad))))
	}
	return total
}

func articulosResponse(articulos []model.ArticuloPropuesta) []dto.ArticuloResponse {
	out := make([]dto.ArticuloResponse, 0, len(articulos))
	for _, a := range articulos {
		r := dto.ArticuloResponse{
			ID:                   a.ID.String(),
			CodigoProducto:       a.CodigoProducto,
			Referencia:           a.Referencia,
			Designacion:          a.Designacion,
			Cantidad:             a.Cantidad,
			PrecioUnitario:       a.PrecioUnitario,
			Subtotal:             a.PrecioUnitario.Mul(decimal.NewFromInt(int64(a.Cantidad))),
			Personalizado:        a.Personalizado,
			NotasPersonalizacion: a.NotasPersonalizacion,
			Proveedor:            a.Proveedor,
			Encomendado:          a.Encomendado,
			NumeroEncomenda:      a.NumeroEncomenda,
			FechaEncomenda:       a.FechaEncomenda,
			FechaPrevistaEntrega: a.FechaPrevistaEntrega,
			CantidadEncomendada:  a.CantidadEncomendada,
			Adjudicado:           a.Adjudicado,
		}
		if a.ProductoID != nil {
			id := a.ProductoID.String()
			r.ProductoID = &id
		}
		out = append(out, r)
	}
	return out
}

func followUpResponse(fu model.FollowUp) dto.FollowUpResponse {
	return dto.FollowUpResponse{
		ID:                  fu.ID.String(),
		PropuestaID:         fu.PropuestaID.String(),
		FechaRealizado:      fu.FechaRealizado,
		Notas:               fu.Notas,
		FechaFuturoFollowUp: fu.FechaFuturoFollowUp,
		FotoURL1:            fu.FotoURL1,
		FotoURL2:            fu.FotoURL2,
		CreatedBy:           fu.CreatedBy,
		CreatedAt:           fu.CreatedAt,
	}
}

// proveedoresDe lists the distinct suppliers already named on the items,
// sorted, for the order grouping form.
func proveedoresDe(articulos []model.ArticuloPropuesta) []string {
	vistos := map[string]bool{}
	var out []string
	for _, a := range articulos {
		if a.Proveedor != nil && *a.Proveedor != "" && !vistos[*a.Proveedor] {
			vistos[*a.Proveedor] = true
			out = append(out, *a.Proveedor)
		}
	}
	sort.Strings(out)
	return out
}
