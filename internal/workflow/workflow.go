// Package workflow is the proposal status state machine: transition legality,
// per-target capture validation and the write plan a transition produces.
// It performs no I/O; the service executes a Plan inside one transaction.
package workflow

import (
	"errors"
	"fmt"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
)

var (
	ErrEstadoTerminal        = errors.New("workflow: estado terminal")
	ErrMismoEstado           = errors.New("workflow: mismo estado")
	ErrEstadoAbandonado      = errors.New("workflow: estado ya abandonado")
	ErrTransicionNoPermitida = errors.New("workflow: transicion no permitida")
	ErrCapturaInvalida       = errors.New("workflow: captura invalida")
)

// Error is a rejected transition. Campos is only set for capture failures.
type Error struct {
	Causa  error
	De     estado.Estado
	A      estado.Estado
	Campos map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.De, e.A, e.Causa)
}

func (e *Error) Unwrap() error { return e.Causa }

// Mensaje renders the rejection for the user.
func (e *Error) Mensaje(lang i18n.Idioma) string {
	switch e.Causa {
	case ErrEstadoTerminal:
		return i18n.T(lang, "estado_terminal", e.De.Etiqueta(lang))
	case ErrMismoEstado:
		return i18n.T(lang, "mismo_estado", e.A.Etiqueta(lang))
	case ErrEstadoAbandonado:
		return i18n.T(lang, "estado_abandonado", e.A.Etiqueta(lang))
	case ErrTransicionNoPermitida:
		return i18n.T(lang, "transicion_no_permitida", e.De.Etiqueta(lang), e.A.Etiqueta(lang))
	case ErrCapturaInvalida:
		return i18n.T(lang, "captura_invalida")
	}
	return i18n.T(lang, "error_interno")
}

// Validar checks that a proposal in de, with log h, may move to a.
func Validar(de, a estado.Estado, h model.Historial) error {
	rechazo := func(causa error) error { return &Error{Causa: causa, De: de, A: a} }

	switch {
	case !a.Valido():
		return fmt.Errorf("%w: %q", estado.ErrDesconocido, string(a))
	case de.Terminal():
		return rechazo(ErrEstadoTerminal)
	case a == de:
		return rechazo(ErrMismoEstado)
	case a == estado.PropuestaEnCurso:
		return rechazo(ErrEstadoAbandonado)
	case a == estado.PropuestaEnviada && historial.HaSalidoDe(h, estado.PropuestaEnviada):
		return rechazo(ErrEstadoAbandonado)
	case !de.PuedeIrA(a):
		return rechazo(ErrTransicionNoPermitida)
	}
	return nil
}

// Disponibles lists the targets Validar would accept right now.
func Disponibles(de estado.Estado, h model.Historial) []estado.Estado {
	var out []estado.Estado
	for _, a := range de.Siguientes() {
		if Validar(de, a, h) == nil {
			out = append(out, a)
		}
	}
	return out
}

// RequiereCaptura reports whether moving to a needs a data-collection step.
func RequiereCaptura(a estado.Estado, articulos []model.ArticuloPropuesta) bool {
	switch a {
	case estado.AmostraPedida, estado.AmostraEnviada,
		estado.AguardaAprovacaoDossier,
		estado.AguardaPagamento,
		estado.PedidoDeEncomenda,
		estado.EncomendaEnCurso,
		estado.Rejeitada:
		return true
	case estado.EncomendaConcluida:
		return !algunoEncomendado(articulos)
	}
	return false
}

func algunoEncomendado(articulos []model.ArticuloPropuesta) bool {
	for _, a := range articulos {
		if a.Encomendado {
			return true
		}
	}
	return false
}
