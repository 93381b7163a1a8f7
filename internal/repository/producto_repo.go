package repository

import (
	"context"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for the catalog.
// The catalog is small and read far more than written, so the service caches
// ListActivos whole and filters in memory.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	ListActivos(ctx context.Context) ([]model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Proveedor").
		Where("codigo_phc = ? AND activo = true", codigo).First(&p).Error
	return &p, err
}

func (r *productoRepo) ListActivos(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Preload("Proveedor").
		Where("activo = true").Order("nombre ASC").Find(&productos).Error
	return productos, err
}
