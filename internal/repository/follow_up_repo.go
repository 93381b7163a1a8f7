package repository

import (
	"context"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowUpRepository interface {
	Create(ctx context.Context, tx *gorm.DB, fu *model.FollowUp) error
	Count(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID) (int64, error)
	ListByPropuesta(ctx context.Context, propuestaID uuid.UUID) ([]model.FollowUp, error)
	// ListByPropuestas groups the follow-ups of several proposals in one query.
	ListByPropuestas(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.FollowUp, error)
}

type followUpRepo struct{ db *gorm.DB }

func NewFollowUpRepository(db *gorm.DB) FollowUpRepository { return &followUpRepo{db: db} }

func (r *followUpRepo) Create(ctx context.Context, tx *gorm.DB, fu *model.FollowUp) error {
	return tx.WithContext(ctx).Create(fu).Error
}

func (r *followUpRepo) Count(ctx context.Context, tx *gorm.DB, propuestaID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.FollowUp{}).Where("propuesta_id = ?", propuestaID).Count(&n).Error
	return n, err
}

func (r *followUpRepo) ListByPropuesta(ctx context.Context, propuestaID uuid.UUID) ([]model.FollowUp, error) {
	var fus []model.FollowUp
	err := r.db.WithContext(ctx).Where("propuesta_id = ?", propuestaID).
		Order("fecha_realizado DESC, created_at DESC").Find(&fus).Error
	return fus, err
}

func (r *followUpRepo) ListByPropuestas(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.FollowUp, error) {
	out := make(map[uuid.UUID][]model.FollowUp, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var fus []model.FollowUp
	if err := r.db.WithContext(ctx).Where("propuesta_id IN ?", ids).Find(&fus).Error; err != nil {
		return nil, err
	}
	for _, fu := range fus {
		out[fu.PropuestaID] = append(out[fu.PropuestaID], fu)
	}
	return out, nil
}
