package dto

// PreferenciasRequest updates the caller's preferences. Empty members are
// left untouched.
type PreferenciasRequest struct {
	Idioma        string `json:"idioma"         validate:"omitempty,oneof=es pt en"`
	NombreVisible string `json:"nombre_visible" validate:"omitempty,max=100"`
	VistaLista    string `json:"vista_lista"    validate:"omitempty,oneof=tabla tarjetas"`
}

type PreferenciasResponse struct {
	Idioma        string `json:"idioma"`
	NombreVisible string `json:"nombre_visible"`
	VistaLista    string `json:"vista_lista"`
}

// ArchivoResponse is returned after an upload to object storage.
type ArchivoResponse struct {
	URL         string `json:"url"`
	Nombre      string `json:"nombre"`
	Tamano      int64  `json:"tamano"`
	ContentType string `json:"content_type"`
}
