// Package historial builds and renders the audit log of a proposal.
//
// Entries are never rewritten: the repository appends them with a single
// jsonb concatenation in the same statement that changes the proposal.
package historial

import (
	"sort"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
)

const (
	TipoCambioEstado          = "cambio_estado"
	TipoEdicion               = "edicion_propuesta"
	TipoComentario            = "comentario"
	TipoFechaEntrega          = "fecha_entrega"
	TipoArticulosEncomendados = "articulos_encomendados"
	TipoFollowUp              = "follow_up"
)

// Separador joins the clauses of a multi-part description.
const Separador = "; "

// Nueva builds a plain entry.
func Nueva(tipo, descripcion, actor string, ahora time.Time) model.EntradaHistorial {
	return model.EntradaHistorial{
		Fecha:       ahora.UTC(),
		Tipo:        tipo,
		Descripcion: descripcion,
		Actor:       actor,
	}
}

// CambioEstado builds a status-change entry carrying both endpoints.
func CambioEstado(de, a estado.Estado, descripcion, actor string, ahora time.Time) model.EntradaHistorial {
	e := Nueva(TipoCambioEstado, descripcion, actor, ahora)
	e.De = string(de)
	e.A = string(a)
	return e
}

// Clausulas joins the non-empty parts with Separador. A ";" inside a part
// becomes "," so free text never adds a clause of its own.
func Clausulas(partes ...string) string {
	out := make([]string, 0, len(partes))
	for _, p := range partes {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ReplaceAll(p, ";", ","))
		}
	}
	return strings.Join(out, Separador)
}

// HaSalidoDe reports whether the log records a departure from e.
func HaSalidoDe(h model.Historial, e estado.Estado) bool {
	for _, entrada := range h {
		if entrada.Tipo == TipoCambioEstado && entrada.De == string(e) {
			return true
		}
	}
	return false
}

// Linea is one rendered timeline row. Multi-clause descriptions come back as
// Puntos (bullet list) with Texto empty; single-clause ones as Texto.
type Linea struct {
	Fecha  time.Time `json:"fecha"`
	Tipo   string    `json:"tipo"`
	Actor  string    `json:"actor"`
	Texto  string    `json:"texto,omitempty"`
	Puntos []string  `json:"puntos,omitempty"`
	De     string    `json:"de,omitempty"`
	A      string    `json:"a,omitempty"`
}

// Render returns the log newest first. Entries with equal timestamps keep
// reverse append order.
func Render(h model.Historial) []Linea {
	lineas := make([]Linea, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		e := h[i]
		l := Linea{Fecha: e.Fecha, Tipo: e.Tipo, Actor: e.Actor, De: e.De, A: e.A}
		var partes []string
		if e.Tipo != TipoComentario {
			partes = split(e.Descripcion)
		}
		if len(partes) > 1 {
			l.Puntos = partes
		} else {
			l.Texto = strings.TrimSpace(e.Descripcion)
		}
		lineas = append(lineas, l)
	}
	sort.SliceStable(lineas, func(i, j int) bool {
		return lineas[i].Fecha.After(lineas[j].Fecha)
	})
	return lineas
}

func split(desc string) []string {
	var out []string
	for _, p := range strings.Split(desc, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
