package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	claveCatalogo = "catalogo:productos"
	ttlCatalogo   = 10 * time.Minute
)

// CatalogoService serves the product and supplier catalogs used to fill line
// items. Both are optional: when the store fails the lists come back empty.
type CatalogoService interface {
	ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	CrearProducto(ctx context.Context, a Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ListarProveedores(ctx context.Context) ([]dto.ProveedorResponse, error)
	CrearProveedor(ctx context.Context, a Actor, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
}

type catalogoService struct {
	productos   repository.ProductoRepository
	proveedores repository.ProveedorRepository
	cache       repository.Cache
}

func NewCatalogoService(productos repository.ProductoRepository, proveedores repository.ProveedorRepository, cache repository.Cache) CatalogoService {
	return &catalogoService{productos: productos, proveedores: proveedores, cache: cache}
}

func (s *catalogoService) ListarProductos(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	todos := s.activos(ctx)
	q := strings.ToLower(strings.TrimSpace(filter.Q))
	filtrados := make([]dto.ProductoResponse, 0, len(todos))
	for _, p := range todos {
		if filter.ProveedorID != "" && (p.ProveedorID == nil || *p.ProveedorID != filter.ProveedorID) {
			continue
		}
		if q != "" && !coincide(p, q) {
			continue
		}
		filtrados = append(filtrados, p)
	}

	desde := (filter.Page - 1) * filter.Limit
	if desde > len(filtrados) {
		desde = len(filtrados)
	}
	hasta := desde + filter.Limit
	if hasta > len(filtrados) {
		hasta = len(filtrados)
	}
	return &dto.ProductoListResponse{
		Data:  filtrados[desde:hasta],
		Total: int64(len(filtrados)),
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// activos reads the whole active catalog: cache first, then the database,
// then refills the cache. Cache errors are only logged.
func (s *catalogoService) activos(ctx context.Context) []dto.ProductoResponse {
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, claveCatalogo); err == nil && b != nil {
			var out []dto.ProductoResponse
			if err := json.Unmarshal(b, &out); err == nil {
				return out
			}
		} else if err != nil {
			log.Warn().Err(err).Msg("catalog cache read failed")
		}
	}

	productos, err := s.productos.ListActivos(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("product catalog unavailable, returning empty list")
		return []dto.ProductoResponse{}
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, productoResponse(&productos[i]))
	}

	if s.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, claveCatalogo, b, ttlCatalogo); err != nil {
				log.Warn().Err(err).Msg("catalog cache write failed")
			}
		}
	}
	return out
}

func (s *catalogoService) CrearProducto(ctx context.Context, a Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if !a.Admin {
		return nil, ErrPermisos
	}
	p := &model.Producto{
		ID:              uuid.New(),
		CodigoPHC:       strings.TrimSpace(req.CodigoPHC),
		Nombre:          strings.TrimSpace(req.Nombre),
		Referencia:      req.Referencia,
		Descripcion:     req.Descripcion,
		PrecioBase:      req.PrecioBase,
		Peso:            req.Peso,
		CantidadPorCaja: req.CantidadPorCaja,
		Activo:          true,
	}
	if req.ProveedorID != nil {
		id, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, errors.New("proveedor_id inválido")
		}
		p.ProveedorID = &id
	}
	if err := s.productos.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProductoExistente
		}
		return nil, err
	}
	s.invalidar(ctx)
	log.Info().Str("codigo_phc", p.CodigoPHC).Msg("producto creado")
	resp := productoResponse(p)
	return &resp, nil
}

func (s *catalogoService) ListarProveedores(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.proveedores.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("supplier catalog unavailable, returning empty list")
		return []dto.ProveedorResponse{}, nil
	}
	sort.Slice(proveedores, func(i, j int) bool { return proveedores[i].Nombre < proveedores[j].Nombre })
	out := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		out = append(out, proveedorResponse(&proveedores[i]))
	}
	return out, nil
}

func (s *catalogoService) CrearProveedor(ctx context.Context, a Actor, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	if !a.Admin {
		return nil, ErrPermisos
	}
	p := &model.Proveedor{
		ID:       uuid.New(),
		Nombre:   strings.TrimSpace(req.Nombre),
		Pais:     req.Pais,
		Email:    req.Email,
		Telefono: req.Telefono,
		Activo:   true,
	}
	if err := s.proveedores.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProveedorExistente
		}
		return nil, err
	}
	// product rows show the supplier name
	s.invalidar(ctx)
	resp := proveedorResponse(p)
	return &resp, nil
}

func (s *catalogoService) invalidar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, claveCatalogo); err != nil {
		log.Warn().Err(err).Msg("catalog cache not invalidated, it will expire")
	}
}

func coincide(p dto.ProductoResponse, q string) bool {
	if strings.Contains(strings.ToLower(p.CodigoPHC), q) || strings.Contains(strings.ToLower(p.Nombre), q) {
		return true
	}
	return p.Referencia != nil && strings.Contains(strings.ToLower(*p.Referencia), q)
}

func productoResponse(p *model.Producto) dto.ProductoResponse {
	r := dto.ProductoResponse{
		ID:              p.ID.String(),
		CodigoPHC:       p.CodigoPHC,
		Nombre:          p.Nombre,
		Referencia:      p.Referencia,
		Descripcion:     p.Descripcion,
		PrecioBase:      p.PrecioBase,
		Peso:            p.Peso,
		CantidadPorCaja: p.CantidadPorCaja,
	}
	if p.ProveedorID != nil {
		id := p.ProveedorID.String()
		r.ProveedorID = &id
	}
	if p.Proveedor != nil {
		nombre := p.Proveedor.Nombre
		r.ProveedorNombre = &nombre
	}
	return r
}

func proveedorResponse(p *model.Proveedor) dto.ProveedorResponse {
	return dto.ProveedorResponse{
		ID:       p.ID.String(),
		Nombre:   p.Nombre,
		Pais:     p.Pais,
		Email:    p.Email,
		Telefono: p.Telefono,
		Activo:   p.Activo,
	}
}
