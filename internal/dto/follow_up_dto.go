package dto

import "time"

type CrearFollowUpRequest struct {
	FechaRealizado      time.Time  `json:"fecha_realizado" validate:"required"`
	Notas               *string    `json:"notas"           validate:"omitempty,max=4000"`
	FechaFuturoFollowUp *time.Time `json:"fecha_futuro_follow_up"`
	FotoURL1            *string    `json:"foto_url_1"      validate:"omitempty,url"`
	FotoURL2            *string    `json:"foto_url_2"      validate:"omitempty,url"`
}

type FollowUpResponse struct {
	ID                  string     `json:"id"`
	PropuestaID         string     `json:"propuesta_id"`
	FechaRealizado      time.Time  `json:"fecha_realizado"`
	Notas               *string    `json:"notas"`
	FechaFuturoFollowUp *time.Time `json:"fecha_futuro_follow_up"`
	FotoURL1            *string    `json:"foto_url_1,omitempty"`
	FotoURL2            *string    `json:"foto_url_2,omitempty"`
	CreatedBy           string     `json:"created_by"`
	CreatedAt           time.Time  `json:"created_at"`
}
