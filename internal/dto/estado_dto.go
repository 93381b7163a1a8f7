package dto

import (
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/workflow"
)

// IniciarTransicionRequest asks to move a proposal to Destino. Captura may be
// sent up front; when it is missing and the target needs one, a pending
// transition is returned instead of being applied.
type IniciarTransicionRequest struct {
	Destino string            `json:"destino" validate:"required"`
	Captura *workflow.Captura `json:"captura"`
}

type ConfirmarTransicionRequest struct {
	Captura *workflow.Captura `json:"captura"`
}

type MotivoOption struct {
	Codigo   string `json:"codigo"`
	Etiqueta string `json:"etiqueta"`
}

// ContextoCaptura is what the client needs to render the capture form.
type ContextoCaptura struct {
	Articulos   []ArticuloResponse `json:"articulos"`
	Proveedores []string           `json:"proveedores,omitempty"`
	Motivos     []MotivoOption     `json:"motivos,omitempty"`
}

type TransicionPendienteResponse struct {
	Token       string          `json:"token"`
	PropuestaID string          `json:"propuesta_id"`
	De          EstadoInfo      `json:"de"`
	A           EstadoInfo      `json:"a"`
	ExpiraEn    time.Time       `json:"expira_en"`
	Contexto    ContextoCaptura `json:"contexto"`
}

// TransicionResponse carries exactly one of the two members: the pending
// transition awaiting capture, or the proposal after a committed change.
type TransicionResponse struct {
	Pendiente *TransicionPendienteResponse `json:"pendiente,omitempty"`
	Propuesta *PropuestaResponse           `json:"propuesta,omitempty"`
}

// EstadoCatalogoItem is one row of GET /v1/estados.
type EstadoCatalogoItem struct {
	EstadoInfo
	Siguientes []string `json:"siguientes"`
}
