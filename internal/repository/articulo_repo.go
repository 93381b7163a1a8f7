package repository

import (
	"context"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Encomienda is the order data stamped on one line item.
type Encomienda struct {
	ArticuloID      uuid.UUID
	Proveedor       *string
	NumeroEncomenda string
	FechaEncomenda  time.Time
	Cantidad        *int
}

// ArticuloRepository writes proposal line items. All writes are scoped to
// the owning proposal so an id from another proposal never matches.
type ArticuloRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, items []model.ArticuloPropuesta) error
	// MarcarEncomendados sets encomendado together with number and date, so
	// the "ordered items carry both" invariant holds row by row.
	MarcarEncomendados(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, enc []Encomienda) error
	MarcarAdjudicados(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, ids []uuid.UUID) error
	FijarFechaEntrega(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, ids []uuid.UUID, fecha time.Time) error
}

type articuloRepo struct{ db *gorm.DB }

func NewArticuloRepository(db *gorm.DB) ArticuloRepository { return &articuloRepo{db: db} }

func (r *articuloRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []model.ArticuloPropuesta) error {
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *articuloRepo) MarcarEncomendados(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, enc []Encomienda) error {
	for _, e := range enc {
		upd := map[string]interface{}{
			"encomendado":      true,
			"numero_encomenda": e.NumeroEncomenda,
			"fecha_encomenda":  e.FechaEncomenda,
		}
		if e.Proveedor != nil {
			upd["proveedor"] = *e.Proveedor
		}
		if e.Cantidad != nil {
			upd["cantidad_encomendada"] = *e.Cantidad
		}
		res := tx.WithContext(ctx).Model(&model.ArticuloPropuesta{}).
			Where("id = ? AND propuesta_id = ?", e.ArticuloID, propuestaID).
			Updates(upd)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *articuloRepo) MarcarAdjudicados(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Model(&model.ArticuloPropuesta{}).
		Where("propuesta_id = ? AND id IN ?", propuestaID, ids).
		Update("adjudicado", true).Error
}

func (r *articuloRepo) FijarFechaEntrega(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID, ids []uuid.UUID, fecha time.Time) error {
	res := tx.WithContext(ctx).Model(&model.ArticuloPropuesta{}).
		Where("propuesta_id = ? AND id IN ?", propuestaID, ids).
		Update("fecha_prevista_entrega", fecha)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return gorm.ErrRecordNotFound
	}
	return nil
}
