package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Propuesta is a commercial proposal sent to a client.
// Estado only changes through the workflow engine; every change appends one
// EntradaHistorial in the same UPDATE.
type Propuesta struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroPropuesta     int           `gorm:"uniqueIndex;not null"`
	NombreCliente       string        `gorm:"not null;index"`
	NombreComercial     string        `gorm:"not null"`
	ComercialID         *uuid.UUID    `gorm:"type:uuid;index"`
	FechaPropuesta      time.Time     `gorm:"not null"`
	Estado              estado.Estado `gorm:"type:varchar(40);not null;index"`
	FechaEnvioPropuesta *time.Time
	Comentarios         *string
	Historial           Historial `gorm:"type:jsonb;not null;default:'[]'"`

	NumeroCliente     *string
	TipoCliente       *string
	Pais              *string
	NombreResponsable *string
	AreaNegocio       *string
	NumeroFactura     *string
	ValorAdjudicacion *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MotivoRechazo     *string          `gorm:"type:varchar(40)"`
	MotivoRechazoOtro *string

	// Alert idempotency flags; nil means "not notified yet".
	Webhook15dSentAt      *time.Time `gorm:"column:webhook_15d_sent_at"`
	WebhookFutureFUSentAt *time.Time `gorm:"column:webhook_future_fu_sent_at"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Articulos []ArticuloPropuesta `gorm:"foreignKey:PropuestaID"`
}

func (Propuesta) TableName() string { return "propuestas" }

// EntradaHistorial is one immutable audit record. De/A are set for status
// changes so that "was this state ever left" never depends on parsing text.
type EntradaHistorial struct {
	Fecha       time.Time `json:"fecha"`
	Tipo        string    `json:"tipo"`
	Descripcion string    `json:"descripcion"`
	Actor       string    `json:"actor"`
	De          string    `json:"de,omitempty"`
	A           string    `json:"a,omitempty"`
}

// Historial is the append-only audit log stored as a jsonb array.
type Historial []EntradaHistorial

func (h Historial) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

func (h *Historial) Scan(value interface{}) error {
	return scanJSON(value, h, "Historial")
}
