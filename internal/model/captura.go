package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dossier stores the documents sent for client approval (max 3).
type Dossier struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropuestaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Documentos  ListaTexto `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedBy   string
	CreatedAt   time.Time
}

func (Dossier) TableName() string { return "dossiers" }

// Amostra records a sample request or shipment.
type Amostra struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropuestaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Fase        string     `gorm:"type:varchar(10);not null"` // pedida | enviada
	ArticuloIDs ListaTexto `gorm:"type:jsonb;not null;default:'[]'"`
	FotoURLs    ListaTexto `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedBy   string
	CreatedAt   time.Time
}

func (Amostra) TableName() string { return "amostras" }

// SolicitudCompra is the purchasing-request snapshot of a proposal.
// At most one exists per proposal; each new one replaces the previous.
type SolicitudCompra struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropuestaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedBy   string
	CreatedAt   time.Time

	Items []SolicitudCompraItem `gorm:"foreignKey:SolicitudID;constraint:OnDelete:CASCADE"`
}

func (SolicitudCompra) TableName() string { return "solicitudes_compra" }

type SolicitudCompraItem struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SolicitudID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ArticuloID      uuid.UUID        `gorm:"type:uuid;not null"`
	Cantidad        int              `gorm:"not null"`
	Referencia      *string
	Designacion     *string
	Peso            *decimal.Decimal `gorm:"type:decimal(10,3)"`
	CantidadPorCaja *int
	Personalizacion *string
}

func (SolicitudCompraItem) TableName() string { return "solicitudes_compra_items" }

// RegistroEncomenda is the order placed with one supplier.
type RegistroEncomenda struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropuestaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Proveedor       string          `gorm:"not null"`
	NumeroEncomenda string          `gorm:"not null"`
	FechaEncomenda  time.Time       `gorm:"type:date;not null"`
	Lineas          LineasEncomenda `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedBy       string
	CreatedAt       time.Time
}

func (RegistroEncomenda) TableName() string { return "registros_encomenda" }

type LineaEncomenda struct {
	ArticuloID uuid.UUID `json:"articulo_id"`
	Cantidad   int       `json:"cantidad"`
}

type LineasEncomenda []LineaEncomenda

func (l LineasEncomenda) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *LineasEncomenda) Scan(value interface{}) error {
	return scanJSON(value, l, "LineasEncomenda")
}
