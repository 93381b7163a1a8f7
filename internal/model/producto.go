package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog entry identified by its canonical PHC code.
type Producto struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoPHC       string    `gorm:"column:codigo_phc;uniqueIndex;not null"`
	Nombre          string    `gorm:"index;not null"`
	Referencia      *string
	Descripcion     *string
	PrecioBase      decimal.Decimal  `gorm:"type:decimal(12,4);not null;default:0"`
	Peso            *decimal.Decimal `gorm:"type:decimal(10,3)"`
	CantidadPorCaja *int
	ProveedorID     *uuid.UUID `gorm:"type:uuid;index"`
	Activo          bool       `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (Producto) TableName() string { return "productos" }
