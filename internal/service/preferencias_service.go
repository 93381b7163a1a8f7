package service

import (
	"context"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	prefIdioma        = "idioma"
	prefNombreVisible = "nombre_visible"
	prefVistaLista    = "vista_lista"
)

// PreferenciasService stores per-user UI settings. Missing settings come
// back with their defaults.
type PreferenciasService interface {
	Obtener(ctx context.Context, a Actor) (*dto.PreferenciasResponse, error)
	Guardar(ctx context.Context, a Actor, req dto.PreferenciasRequest) (*dto.PreferenciasResponse, error)
}

type preferenciasService struct {
	store repository.PreferenciasStore
}

func NewPreferenciasService(store repository.PreferenciasStore) PreferenciasService {
	return &preferenciasService{store: store}
}

func (s *preferenciasService) Obtener(ctx context.Context, a Actor) (*dto.PreferenciasResponse, error) {
	resp := &dto.PreferenciasResponse{
		Idioma:        string(a.Idioma),
		NombreVisible: a.Nombre,
		VistaLista:    "tabla",
	}
	valores, err := s.store.Obtener(ctx, a.UsuarioID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", a.UsuarioID.String()).Msg("preferences unavailable, using defaults")
		return resp, nil
	}
	if v := valores[prefIdioma]; v != "" {
		resp.Idioma = v
	}
	if v := valores[prefNombreVisible]; v != "" {
		resp.NombreVisible = v
	}
	if v := valores[prefVistaLista]; v != "" {
		resp.VistaLista = v
	}
	return resp, nil
}

func (s *preferenciasService) Guardar(ctx context.Context, a Actor, req dto.PreferenciasRequest) (*dto.PreferenciasResponse, error) {
	valores := map[string]string{}
	if req.Idioma != "" {
		valores[prefIdioma] = req.Idioma
	}
	if req.NombreVisible != "" {
		valores[prefNombreVisible] = req.NombreVisible
	}
	if req.VistaLista != "" {
		valores[prefVistaLista] = req.VistaLista
	}
	if err := s.store.Guardar(ctx, a.UsuarioID, valores); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, a)
}
