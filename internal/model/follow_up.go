package model

import (
	"time"

	"github.com/google/uuid"
)

// FollowUp records a contact with the client after the proposal was sent.
type FollowUp struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropuestaID         uuid.UUID `gorm:"type:uuid;not null;index"`
	FechaRealizado      time.Time `gorm:"type:date;not null"`
	Notas               *string
	FechaFuturoFollowUp *time.Time `gorm:"type:date"`
	FotoURL1            *string    `gorm:"column:foto_url_1"`
	FotoURL2            *string    `gorm:"column:foto_url_2"`
	CreatedBy           string
	CreatedAt           time.Time
}

func (FollowUp) TableName() string { return "follow_ups" }
