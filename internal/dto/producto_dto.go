package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoPHC       string           `json:"codigo_phc"        validate:"required,min=1,max=50"`
	Nombre          string           `json:"nombre"            validate:"required,min=2,max=200"`
	Referencia      *string          `json:"referencia"        validate:"omitempty,max=100"`
	Descripcion     *string          `json:"descripcion"`
	PrecioBase      decimal.Decimal  `json:"precio_base"       validate:"min=0"`
	Peso            *decimal.Decimal `json:"peso"`
	CantidadPorCaja *int             `json:"cantidad_por_caja" validate:"omitempty,min=1"`
	ProveedorID     *string          `json:"proveedor_id"      validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Q           string `form:"q"` // code, reference or name
	ProveedorID string `form:"proveedor_id"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID              string           `json:"id"`
	CodigoPHC       string           `json:"codigo_phc"`
	Nombre          string           `json:"nombre"`
	Referencia      *string          `json:"referencia"`
	Descripcion     *string          `json:"descripcion,omitempty"`
	PrecioBase      decimal.Decimal  `json:"precio_base"`
	Peso            *decimal.Decimal `json:"peso"`
	CantidadPorCaja *int             `json:"cantidad_por_caja"`
	ProveedorID     *string          `json:"proveedor_id,omitempty"`
	ProveedorNombre *string          `json:"proveedor_nombre,omitempty"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
