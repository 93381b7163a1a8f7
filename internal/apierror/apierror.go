// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
// Messages are rendered in the language negotiated for the request.
package apierror

import "github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Codigo string `json:"codigo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// T builds an APIError from a message key in the given language.
func T(lang i18n.Idioma, key string, args ...any) *APIError {
	return &APIError{Detail: i18n.T(lang, key, args...), Codigo: key}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(lang i18n.Idioma, fields map[string]string) *ValidationError {
	return &ValidationError{Detail: i18n.T(lang, "validacion"), Fields: fields}
}
