package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProveedorRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=150"`
	Pais     *string `json:"pais"     validate:"omitempty,max=80"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Telefono *string `json:"telefono" validate:"omitempty,max=40"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProveedorResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Pais     *string `json:"pais"`
	Email    *string `json:"email"`
	Telefono *string `json:"telefono"`
	Activo   bool    `json:"activo"`
}
