package service

import (
	"context"
	"io"
	"strings"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"

	"github.com/rs/zerolog/log"
)

// MaxArchivo is the upload size limit (10 MiB).
const MaxArchivo = 10 << 20

// Almacen stores uploaded objects and returns their public URL.
type Almacen interface {
	Disponible() bool
	Subir(ctx context.Context, carpeta, nombre, contentType string, r io.Reader, size int64) (string, error)
}

// carpetas maps an upload purpose to its bucket folder and accepted types.
var carpetas = map[string][]string{
	"amostras":   {"image/"},
	"dossiers":   {"application/pdf", "image/"},
	"follow-ups": {"image/"},
}

// ArchivoService uploads capture attachments (sample photos, dossier
// documents, follow-up photos) so transitions can reference them by URL.
type ArchivoService interface {
	Subir(ctx context.Context, a Actor, carpeta, nombre, contentType string, r io.Reader, size int64) (*dto.ArchivoResponse, error)
}

type archivoService struct {
	almacen Almacen
}

func NewArchivoService(almacen Almacen) ArchivoService {
	return &archivoService{almacen: almacen}
}

func (s *archivoService) Subir(ctx context.Context, a Actor, carpeta, nombre, contentType string, r io.Reader, size int64) (*dto.ArchivoResponse, error) {
	tipos, ok := carpetas[carpeta]
	if !ok || size <= 0 || size > MaxArchivo || !aceptado(contentType, tipos) {
		return nil, ErrArchivoInvalido
	}
	url, err := s.almacen.Subir(ctx, carpeta, nombre, contentType, r, size)
	if err != nil {
		return nil, err
	}
	log.Info().Str("carpeta", carpeta).Int64("bytes", size).Str("actor", a.Nombre).Msg("archivo subido")
	return &dto.ArchivoResponse{URL: url, Nombre: nombre, Tamano: size, ContentType: contentType}, nil
}

func aceptado(contentType string, tipos []string) bool {
	for _, t := range tipos {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}
