package dto

import (
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// PropuestaFilter is bound from the query string of GET /v1/propuestas.
type PropuestaFilter struct {
	Estado      string `form:"estado"`       // status code; empty = all
	Cliente     string `form:"cliente"`      // ILIKE on nombre_cliente
	ComercialID string `form:"comercial_id"` // ignored for non-admins
	Alerta      bool   `form:"alerta"`       // only proposals currently alerting
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// EstadoInfo is the presentation of a status code.
type EstadoInfo struct {
	Codigo   string `json:"codigo"`
	Etiqueta string `json:"etiqueta"`
	Color    string `json:"color"`
	Icono    string `json:"icono"`
	Terminal bool   `json:"terminal"`
}

type AlertaInfo struct {
	Tipo       string    `json:"tipo"`
	Dias       int       `json:"dias"`
	Motivo     string    `json:"motivo"`
	Referencia time.Time `json:"referencia"`
}

type PropuestaListItem struct {
	ID                  string          `json:"id"`
	NumeroPropuesta     int             `json:"numero_propuesta"`
	NombreCliente       string          `json:"nombre_cliente"`
	NombreComercial     string          `json:"nombre_comercial"`
	FechaPropuesta      time.Time       `json:"fecha_propuesta"`
	FechaEnvioPropuesta *time.Time      `json:"fecha_envio_propuesta,omitempty"`
	Estado              EstadoInfo      `json:"estado"`
	ValorTotal          decimal.Decimal `json:"valor_total"`
	Alerta              *AlertaInfo     `json:"alerta,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type PropuestaListResponse struct {
	Data  []PropuestaListItem `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ArticuloInput struct {
	ProductoID           *string         `json:"producto_id"     validate:"omitempty,uuid"`
	CodigoProducto       *string         `json:"codigo_producto" validate:"omitempty,max=50"`
	Referencia           *string         `json:"referencia"      validate:"omitempty,max=100"`
	Designacion          string          `json:"designacion"     validate:"required,min=1,max=255"`
	Cantidad             int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario       decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Personalizado        bool            `json:"personalizado"`
	NotasPersonalizacion *string         `json:"notas_personalizacion"`
	Proveedor            *string         `json:"proveedor"       validate:"omitempty,max=150"`
}

type CrearPropuestaRequest struct {
	NombreCliente     string          `json:"nombre_cliente"   validate:"required,min=1,max=200"`
	NombreComercial   string          `json:"nombre_comercial" validate:"omitempty,max=150"`
	FechaPropuesta    *time.Time      `json:"fecha_propuesta"`
	NumeroCliente     *string         `json:"numero_cliente"   validate:"omitempty,max=50"`
	TipoCliente       *string         `json:"tipo_cliente"     validate:"omitempty,max=50"`
	Pais              *string         `json:"pais"             validate:"omitempty,max=80"`
	NombreResponsable *string         `json:"nombre_responsable" validate:"omitempty,max=150"`
	AreaNegocio       *string         `json:"area_negocio"     validate:"omitempty,max=80"`
	Comentarios       *string         `json:"comentarios"`
	Articulos         []ArticuloInput `json:"articulos"        validate:"required,min=1,dive"`
}

// ActualizarPropuestaRequest edits header fields. Nil members are left as is.
type ActualizarPropuestaRequest struct {
	NombreCliente     *string `json:"nombre_cliente"     validate:"omitempty,min=1,max=200"`
	NombreComercial   *string `json:"nombre_comercial"   validate:"omitempty,min=1,max=150"`
	NombreResponsable *string `json:"nombre_responsable" validate:"omitempty,max=150"`
	Pais              *string `json:"pais"               validate:"omitempty,max=80"`
	AreaNegocio       *string `json:"area_negocio"       validate:"omitempty,max=80"`
	NumeroCliente     *string `json:"numero_cliente"     validate:"omitempty,max=50"`
	TipoCliente       *string `json:"tipo_cliente"       validate:"omitempty,max=50"`
	Comentarios       *string `json:"comentarios"`
}

type ComentarioRequest struct {
	Texto string `json:"texto" validate:"required,min=1,max=2000"`
}

// MarcarEncomendadosRequest flags line items as ordered in bulk.
type MarcarEncomendadosRequest struct {
	ArticuloIDs     []string  `json:"articulo_ids"     validate:"required,min=1,dive,uuid"`
	NumeroEncomenda string    `json:"numero_encomenda" validate:"required,notblank,max=50"`
	FechaEncomenda  time.Time `json:"fecha_encomenda"  validate:"required"`
	Proveedor       *string   `json:"proveedor"        validate:"omitempty,max=150"`
}

type FechaEntregaRequest struct {
	ArticuloIDs          []string  `json:"articulo_ids"           validate:"required,min=1,dive,uuid"`
	FechaPrevistaEntrega time.Time `json:"fecha_prevista_entrega" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ArticuloResponse struct {
	ID                   string          `json:"id"`
	ProductoID           *string         `json:"producto_id,omitempty"`
	CodigoProducto       *string         `json:"codigo_producto"`
	Referencia           *string         `json:"referencia"`
	Designacion          string          `json:"designacion"`
	Cantidad             int             `json:"cantidad"`
	PrecioUnitario       decimal.Decimal `json:"precio_unitario"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Personalizado        bool            `json:"personalizado"`
	NotasPersonalizacion *string         `json:"notas_personalizacion,omitempty"`
	Proveedor            *string         `json:"proveedor"`
	Encomendado          bool            `json:"encomendado"`
	NumeroEncomenda      *string         `json:"numero_encomenda,omitempty"`
	FechaEncomenda       *time.Time      `json:"fecha_encomenda,omitempty"`
	FechaPrevistaEntrega *time.Time      `json:"fecha_prevista_entrega,omitempty"`
	CantidadEncomendada  *int            `json:"cantidad_encomendada,omitempty"`
	Adjudicado           bool            `json:"adjudicado"`
}

// PropuestaResponse is the detail view: header, items, timeline, follow-ups,
// current alert and the statuses the proposal may move to.
type PropuestaResponse struct {
	ID                  string             `json:"id"`
	NumeroPropuesta     int                `json:"numero_propuesta"`
	NombreCliente       string             `json:"nombre_cliente"`
	NombreComercial     string             `json:"nombre_comercial"`
	ComercialID         *string            `json:"comercial_id,omitempty"`
	FechaPropuesta      time.Time          `json:"fecha_propuesta"`
	FechaEnvioPropuesta *time.Time         `json:"fecha_envio_propuesta,omitempty"`
	Estado              EstadoInfo         `json:"estado"`
	Comentarios         *string            `json:"comentarios"`
	NumeroCliente       *string            `json:"numero_cliente"`
	TipoCliente         *string            `json:"tipo_cliente"`
	Pais                *string            `json:"pais"`
	NombreResponsable   *string            `json:"nombre_responsable"`
	AreaNegocio         *string            `json:"area_negocio"`
	NumeroFactura       *string            `json:"numero_factura"`
	ValorAdjudicacion   *decimal.Decimal   `json:"valor_adjudicacion"`
	MotivoRechazo       *string            `json:"motivo_rechazo,omitempty"`
	MotivoRechazoOtro   *string            `json:"motivo_rechazo_otro,omitempty"`
	ValorTotal          decimal.Decimal    `json:"valor_total"`
	Articulos           []ArticuloResponse `json:"articulos"`
	Historial           []historial.Linea  `json:"historial"`
	FollowUps           []FollowUpResponse `json:"follow_ups"`
	Alerta              *AlertaInfo        `json:"alerta,omitempty"`
	Disponibles         []EstadoInfo       `json:"disponibles"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}
