package dto

import "time"

// AlertaItem is one row of the alert dashboard.
type AlertaItem struct {
	Propuesta PropuestaListItem `json:"propuesta"`
	Alerta    AlertaInfo        `json:"alerta"`
	// Notificada is when the webhook for this alert kind last succeeded.
	Notificada *time.Time `json:"notificada,omitempty"`
}

type AlertaListResponse struct {
	Data  []AlertaItem `json:"data"`
	Total int          `json:"total"`
}

// NotificarResponse reports the outcome of a manual notify.
type NotificarResponse struct {
	Enviada bool   `json:"enviada"`
	Tipo    string `json:"tipo,omitempty"`
	Detalle string `json:"detalle"`
}

// CorreoJob is the payload of an e-mail job on the async queue.
type CorreoJob struct {
	Para    []string `json:"para"`
	Asunto  string   `json:"asunto"`
	Cuerpo  string   `json:"cuerpo"`
	Adjunto string   `json:"adjunto,omitempty"`
}

// AlertaJob asks a worker to notify the alert of one proposal.
type AlertaJob struct {
	PropuestaID string `json:"propuesta_id"`
}
