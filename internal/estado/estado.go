// Package estado defines the proposal status enum and its presentation
// metadata (per-locale label, color, icon) together with the static
// transition graph.
package estado

import (
	"errors"
	"fmt"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
)

// Estado is the workflow status of a proposal.
type Estado string

const (
	PropuestaEnCurso         Estado = "propuesta_en_curso"
	PropuestaEnviada         Estado = "propuesta_enviada"
	PropuestaEnEdicion       Estado = "propuesta_en_edicion"
	AmostraPedida            Estado = "amostra_pedida"
	AmostraEnviada           Estado = "amostra_enviada"
	AguardaDossier           Estado = "aguarda_dossier"
	AguardaAprovacaoDossier  Estado = "aguarda_aprovacao_dossier"
	AguardaCreacionCliente   Estado = "aguarda_creacion_cliente"
	AguardaCreacionCodigoPHC Estado = "aguarda_creacion_codigo_phc"
	AguardaPagamento         Estado = "aguarda_pagamento"
	FollowUp                 Estado = "follow_up"
	PedidoDeEncomenda        Estado = "pedido_de_encomenda"
	EncomendaEnCurso         Estado = "encomenda_en_curso"
	EncomendaConcluida       Estado = "encomenda_concluida"
	Rejeitada                Estado = "rejeitada"
)

// Inicial is assigned to every new proposal.
const Inicial = PropuestaEnCurso

// ErrDesconocido is returned by Parse for values outside the enum.
var ErrDesconocido = errors.New("estado desconocido")

// Meta is the presentation record of a status.
type Meta struct {
	Etiquetas map[i18n.Idioma]string
	Color     string
	Icono     string
	Terminal  bool
}

// orden is the display order used by listings and pickers.
var orden = []Estado{
	PropuestaEnCurso,
	PropuestaEnviada,
	PropuestaEnEdicion,
	AmostraPedida,
	AmostraEnviada,
	AguardaDossier,
	AguardaAprovacaoDossier,
	AguardaCreacionCliente,
	AguardaCreacionCodigoPHC,
	AguardaPagamento,
	FollowUp,
	PedidoDeEncomenda,
	EncomendaEnCurso,
	EncomendaConcluida,
	Rejeitada,
}

var tabla = map[Estado]Meta{
	PropuestaEnCurso: {
		Etiquetas: etiquetas("Propuesta en curso", "Proposta em curso", "Proposal in progress"),
		Color:     "#6b7280", Icono: "edit",
	},
	PropuestaEnviada: {
		Etiquetas: etiquetas("Propuesta enviada", "Proposta enviada", "Proposal sent"),
		Color:     "#3b82f6", Icono: "send",
	},
	PropuestaEnEdicion: {
		Etiquetas: etiquetas("Propuesta en edición", "Proposta em edição", "Proposal being edited"),
		Color:     "#8b5cf6", Icono: "pencil",
	},
	AmostraPedida: {
		Etiquetas: etiquetas("Muestra pedida", "Amostra pedida", "Sample requested"),
		Color:     "#f59e0b", Icono: "box",
	},
	AmostraEnviada: {
		Etiquetas: etiquetas("Muestra enviada", "Amostra enviada", "Sample sent"),
		Color:     "#d97706", Icono: "truck",
	},
	AguardaDossier: {
		Etiquetas: etiquetas("Aguarda dossier", "Aguarda dossier", "Awaiting dossier"),
		Color:     "#0ea5e9", Icono: "folder",
	},
	AguardaAprovacaoDossier: {
		Etiquetas: etiquetas("Aguarda aprobación de dossier", "Aguarda aprovação do dossier", "Awaiting dossier approval"),
		Color:     "#0284c7", Icono: "folder-check",
	},
	AguardaCreacionCliente: {
		Etiquetas: etiquetas("Aguarda creación de cliente", "Aguarda criação de cliente", "Awaiting client creation"),
		Color:     "#14b8a6", Icono: "user-plus",
	},
	AguardaCreacionCodigoPHC: {
		Etiquetas: etiquetas("Aguarda creación de código PHC", "Aguarda criação de código PHC", "Awaiting PHC code creation"),
		Color:     "#0d9488", Icono: "barcode",
	},
	AguardaPagamento: {
		Etiquetas: etiquetas("Aguarda pago", "Aguarda pagamento", "Awaiting payment"),
		Color:     "#eab308", Icono: "credit-card",
	},
	FollowUp: {
		Etiquetas: etiquetas("Follow-up", "Follow-up", "Follow-up"),
		Color:     "#ec4899", Icono: "phone",
	},
	PedidoDeEncomenda: {
		Etiquetas: etiquetas("Pedido de encomienda", "Pedido de encomenda", "Order request"),
		Color:     "#6366f1", Icono: "clipboard",
	},
	EncomendaEnCurso: {
		Etiquetas: etiquetas("Encomienda en curso", "Encomenda em curso", "Order in progress"),
		Color:     "#4f46e5", Icono: "package",
	},
	EncomendaConcluida: {
		Etiquetas: etiquetas("Encomienda concluida", "Encomenda concluída", "Order completed"),
		Color:     "#16a34a", Icono: "check-circle", Terminal: true,
	},
	Rejeitada: {
		Etiquetas: etiquetas("Rechazada", "Rejeitada", "Rejected"),
		Color:     "#dc2626", Icono: "x-circle", Terminal: true,
	},
}

func etiquetas(es, pt, en string) map[i18n.Idioma]string {
	return map[i18n.Idioma]string{i18n.ES: es, i18n.PT: pt, i18n.EN: en}
}

// legados maps retired status values onto the canonical enum. They are only
// consulted by the startup data migration; Parse never accepts them.
var legados = map[string]Estado{
	"muestra_pedida":    AmostraPedida,
	"muestra_entregada": AmostraEnviada,
}

// Parse validates a raw status value.
func Parse(s string) (Estado, error) {
	e := Estado(s)
	if _, ok := tabla[e]; !ok {
		return "", fmt.Errorf("%w: %q", ErrDesconocido, s)
	}
	return e, nil
}

// Todos returns every status in display order.
func Todos() []Estado {
	out := make([]Estado, len(orden))
	copy(out, orden)
	return out
}

// Legados returns the retired-value → canonical mapping.
func Legados() map[string]Estado {
	out := make(map[string]Estado, len(legados))
	for k, v := range legados {
		out[k] = v
	}
	return out
}

func (e Estado) String() string { return string(e) }

// Valido reports whether e belongs to the enum.
func (e Estado) Valido() bool {
	_, ok := tabla[e]
	return ok
}

// Meta returns the presentation record; unknown values get a neutral record
// whose label is the raw value.
func (e Estado) Meta() Meta {
	if m, ok := tabla[e]; ok {
		return m
	}
	return Meta{Etiquetas: etiquetas(string(e), string(e), string(e)), Color: "#9ca3af", Icono: "help"}
}

// Etiqueta returns the label in lang, falling back to the default language.
func (e Estado) Etiqueta(lang i18n.Idioma) string {
	m := e.Meta()
	if l, ok := m.Etiquetas[lang]; ok {
		return l
	}
	return m.Etiquetas[i18n.Default]
}

// Terminal reports whether no further transition is allowed from e.
func (e Estado) Terminal() bool { return e.Meta().Terminal }

// Siguientes lists the statuses reachable from e in the static graph. Any
// non-terminal status may move to any other except the initial one, so a
// proposal can step back between intermediate stages (amostra_enviada to
// amostra_pedida). History-dependent rules (a state already left) are
// applied by the workflow.
func (e Estado) Siguientes() []Estado {
	if !e.Valido() || e.Terminal() {
		return nil
	}
	var out []Estado
	for _, d := range orden {
		if d == e || d == Inicial {
			continue
		}
		out = append(out, d)
	}
	return out
}

// PuedeIrA reports whether d is in e's static next-state set.
func (e Estado) PuedeIrA(d Estado) bool {
	for _, s := range e.Siguientes() {
		if s == d {
			return true
		}
	}
	return false
}
