package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArticuloPropuesta is a line item of a proposal.
// Once Encomendado is true, NumeroEncomenda and FechaEncomenda are never nil.
type ArticuloPropuesta struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropuestaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductoID  *uuid.UUID `gorm:"type:uuid;index"`
	// CodigoProducto is the canonical PHC code; nil for items not yet catalogued.
	CodigoProducto       *string `gorm:"type:varchar(50)"`
	Referencia           *string
	Designacion          string          `gorm:"not null"`
	Cantidad             int             `gorm:"not null"`
	PrecioUnitario       decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Personalizado        bool            `gorm:"not null;default:false"`
	NotasPersonalizacion *string
	Proveedor            *string

	Encomendado          bool `gorm:"not null;default:false"`
	NumeroEncomenda      *string
	FechaEncomenda       *time.Time
	FechaPrevistaEntrega *time.Time
	CantidadEncomendada  *int
	Adjudicado           bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ArticuloPropuesta) TableName() string { return "articulos_propuesta" }
