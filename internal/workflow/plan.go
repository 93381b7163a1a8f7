package workflow

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/google/uuid"
)

const formatoFecha = "2006-01-02"

// ArticuloEncomendado is the order data stamped on one line item.
type ArticuloEncomendado struct {
	ArticuloID      uuid.UUID
	Proveedor       string
	NumeroEncomenda string
	FechaEncomenda  time.Time
	Cantidad        int
}

// Plan is every write a transition performs. The service applies it in one
// transaction; if any write fails nothing is kept, history entry included.
type Plan struct {
	De      estado.Estado
	A       estado.Estado
	Entrada model.EntradaHistorial
	// Campos are extra proposal columns updated with the status.
	Campos map[string]interface{}

	Amostra      *model.Amostra
	Dossier      *model.Dossier
	Solicitud    *model.SolicitudCompra
	Registros    []model.RegistroEncomenda
	Encomendados []ArticuloEncomendado
	Adjudicados  []uuid.UUID

	// SembrarFollowUp asks for one follow-up dated today when none exist.
	SembrarFollowUp bool
}

// Peticion describes who asks for a transition and when.
type Peticion struct {
	Destino estado.Estado
	Captura *Captura
	Actor   string
	Idioma  i18n.Idioma
	Ahora   time.Time
}

// Planificar validates the transition of p and returns the writes it implies.
func Planificar(p *model.Propuesta, s Peticion) (*Plan, error) {
	de, a := p.Estado, s.Destino
	if err := Validar(de, a, p.Historial); err != nil {
		return nil, err
	}
	if err := ValidarCaptura(de, a, s.Captura, p.Articulos); err != nil {
		return nil, err
	}
	c := s.Captura
	if c == nil {
		c = &Captura{}
	}

	plan := &Plan{De: de, A: a, Campos: map[string]interface{}{}}

	// entry actions
	switch a {
	case estado.PropuestaEnviada:
		plan.Campos["fecha_envio_propuesta"] = s.Ahora
	case estado.FollowUp:
		plan.Campos["webhook_15d_sent_at"] = nil
		plan.SembrarFollowUp = true
	}
	// exit actions
	if de == estado.FollowUp {
		plan.Campos["webhook_future_fu_sent_at"] = nil
	}

	switch a {
	case estado.AmostraPedida, estado.AmostraEnviada:
		fase := "pedida"
		if a == estado.AmostraEnviada {
			fase = "enviada"
		}
		plan.Amostra = &model.Amostra{
			PropuestaID: p.ID,
			Fase:        fase,
			ArticuloIDs: uuidsATexto(c.Amostra.ArticuloIDs),
			FotoURLs:    model.ListaTexto(c.Amostra.FotoURLs),
			CreatedBy:   s.Actor,
		}
	case estado.AguardaAprovacaoDossier:
		plan.Dossier = &model.Dossier{
			PropuestaID: p.ID,
			Documentos:  model.ListaTexto(c.Dossier.Documentos),
			CreatedBy:   s.Actor,
		}
	case estado.AguardaPagamento:
		pg := c.Pagamento
		plan.Campos["numero_cliente"] = strings.TrimSpace(pg.NumeroCliente)
		plan.Campos["tipo_cliente"] = strings.TrimSpace(pg.TipoCliente)
		plan.Campos["numero_factura"] = strings.TrimSpace(pg.NumeroFactura)
		plan.Campos["valor_adjudicacion"] = pg.ValorAdjudicacion
	case estado.PedidoDeEncomenda:
		sc := &model.SolicitudCompra{PropuestaID: p.ID, CreatedBy: s.Actor}
		for _, l := range c.PedidoEncomenda.Lineas {
			sc.Items = append(sc.Items, model.SolicitudCompraItem{
				ArticuloID:      l.ArticuloID,
				Cantidad:        l.Cantidad,
				Referencia:      l.Referencia,
				Designacion:     l.Designacion,
				Peso:            l.Peso,
				CantidadPorCaja: l.CantidadPorCaja,
				Personalizacion: l.Personalizacion,
			})
		}
		plan.Solicitud = sc
	case estado.EncomendaEnCurso:
		for _, g := range c.Encomenda.Grupos {
			reg := model.RegistroEncomenda{
				PropuestaID:     p.ID,
				Proveedor:       strings.TrimSpace(g.Proveedor),
				NumeroEncomenda: strings.TrimSpace(g.NumeroEncomenda),
				FechaEncomenda:  g.FechaEncomenda,
				CreatedBy:       s.Actor,
			}
			for _, l := range g.Lineas {
				reg.Lineas = append(reg.Lineas, model.LineaEncomenda{ArticuloID: l.ArticuloID, Cantidad: l.Cantidad})
				plan.Encomendados = append(plan.Encomendados, ArticuloEncomendado{
					ArticuloID:      l.ArticuloID,
					Proveedor:       reg.Proveedor,
					NumeroEncomenda: reg.NumeroEncomenda,
					FechaEncomenda:  reg.FechaEncomenda,
					Cantidad:        l.Cantidad,
				})
			}
			plan.Registros = append(plan.Registros, reg)
		}
	case estado.EncomendaConcluida:
		if c.Conclusion != nil && !algunoEncomendado(p.Articulos) {
			plan.Adjudicados = append(plan.Adjudicados, c.Conclusion.ArticuloIDs...)
		}
	case estado.Rejeitada:
		plan.Campos["motivo_rechazo"] = c.Rechazo.Motivo
		if c.Rechazo.Motivo == MotivoOtro {
			plan.Campos["motivo_rechazo_otro"] = strings.TrimSpace(c.Rechazo.Otro)
		} else {
			plan.Campos["motivo_rechazo_otro"] = nil
		}
	}

	desc := Descripcion(s.Idioma, de, a, c, p.Articulos)
	plan.Entrada = historial.CambioEstado(de, a, desc, s.Actor, s.Ahora)
	return plan, nil
}

// Descripcion builds the history text of a transition: the from→to label
// pair followed by the captured data, as "; "-separated clauses.
func Descripcion(lang i18n.Idioma, de, a estado.Estado, c *Captura, articulos []model.ArticuloPropuesta) string {
	partes := []string{i18n.T(lang, "hist_cambio_estado", de.Etiqueta(lang), a.Etiqueta(lang))}
	if c == nil {
		c = &Captura{}
	}

	switch a {
	case estado.AmostraPedida, estado.AmostraEnviada:
		if c.Amostra != nil {
			if n := len(c.Amostra.ArticuloIDs); n > 0 {
				partes = append(partes, i18n.T(lang, "hist_articulos_seleccionados", n))
			}
			if n := len(c.Amostra.FotoURLs); n > 0 {
				partes = append(partes, i18n.T(lang, "hist_fotos", n))
			}
		}
	case estado.AguardaAprovacaoDossier:
		if c.Dossier != nil {
			partes = append(partes, i18n.T(lang, "hist_documentos", len(c.Dossier.Documentos)))
		}
	case estado.AguardaPagamento:
		if pg := c.Pagamento; pg != nil {
			partes = append(partes,
				i18n.T(lang, "hist_cliente", pg.NumeroCliente, pg.TipoCliente),
				i18n.T(lang, "hist_factura", pg.NumeroFactura, pg.ValorAdjudicacion.StringFixed(2)))
		}
	case estado.PedidoDeEncomenda:
		if c.PedidoEncomenda != nil {
			partes = append(partes, i18n.T(lang, "hist_pedido_compra", len(c.PedidoEncomenda.Lineas)))
		}
	case estado.EncomendaEnCurso:
		if c.Encomenda != nil {
			for _, g := range c.Encomenda.Grupos {
				partes = append(partes, i18n.T(lang, "hist_encomenda",
					g.NumeroEncomenda, g.Proveedor, g.FechaEncomenda.Format(formatoFecha)))
			}
		}
	case estado.EncomendaConcluida:
		if algunoEncomendado(articulos) {
			partes = append(partes, encomendasRegistradas(lang, articulos)...)
		} else if c.Conclusion != nil {
			partes = append(partes, i18n.T(lang, "hist_articulos_adjudicados", len(c.Conclusion.ArticuloIDs)))
		}
	case estado.Rejeitada:
		if c.Rechazo != nil {
			motivo := i18n.T(lang, "motivo_"+c.Rechazo.Motivo)
			if c.Rechazo.Motivo == MotivoOtro {
				motivo = fmt.Sprintf("%s: %s", motivo, strings.TrimSpace(c.Rechazo.Otro))
			}
			partes = append(partes, i18n.T(lang, "hist_motivo_rechazo", motivo))
		}
	}
	return historial.Clausulas(partes...)
}

// encomendasRegistradas renders the distinct order numbers already stamped on
// the line items, sorted by date then number.
func encomendasRegistradas(lang i18n.Idioma, articulos []model.ArticuloPropuesta) []string {
	type clave struct{ numero, proveedor, fecha string }
	vistos := map[clave]bool{}
	var claves []clave
	for _, a := range articulos {
		if !a.Encomendado || a.NumeroEncomenda == nil || a.FechaEncomenda == nil {
			continue
		}
		k := clave{numero: *a.NumeroEncomenda, fecha: a.FechaEncomenda.Format(formatoFecha)}
		if a.Proveedor != nil {
			k.proveedor = *a.Proveedor
		}
		if !vistos[k] {
			vistos[k] = true
			claves = append(claves, k)
		}
	}
	sort.Slice(claves, func(i, j int) bool {
		if claves[i].fecha != claves[j].fecha {
			return claves[i].fecha < claves[j].fecha
		}
		return claves[i].numero < claves[j].numero
	})
	out := make([]string, 0, len(claves))
	for _, k := range claves {
		out = append(out, i18n.T(lang, "hist_encomenda", k.numero, k.proveedor, k.fecha))
	}
	return out
}

func uuidsATexto(ids []uuid.UUID) model.ListaTexto {
	out := make(model.ListaTexto, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
