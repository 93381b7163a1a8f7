package repository

import (
	"context"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CapturaRepository stores the side records written by status transitions.
type CapturaRepository interface {
	CreateAmostra(ctx context.Context, tx *gorm.DB, a *model.Amostra) error
	CreateDossier(ctx context.Context, tx *gorm.DB, d *model.Dossier) error
	// ReemplazarSolicitud drops the current purchasing request of the
	// proposal, if any, and stores s in its place.
	ReemplazarSolicitud(ctx context.Context, tx *gorm.DB, s *model.SolicitudCompra) error
	CreateRegistros(ctx context.Context, tx *gorm.DB, regs []model.RegistroEncomenda) error

	FindSolicitud(ctx context.Context, propuestaID uuid.UUID) (*model.SolicitudCompra, error)
	ListRegistros(ctx context.Context, propuestaID uuid.UUID) ([]model.RegistroEncomenda, error)
	ListDossiers(ctx context.Context, propuestaID uuid.UUID) ([]model.Dossier, error)
	ListAmostras(ctx context.Context, propuestaID uuid.UUID) ([]model.Amostra, error)
}

type capturaRepo struct{ db *gorm.DB }

func NewCapturaRepository(db *gorm.DB) CapturaRepository { return &capturaRepo{db: db} }

func (r *capturaRepo) CreateAmostra(ctx context.Context, tx *gorm.DB, a *model.Amostra) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *capturaRepo) CreateDossier(ctx context.Context, tx *gorm.DB, d *model.Dossier) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *capturaRepo) ReemplazarSolicitud(ctx context.Context, tx *gorm.DB, s *model.SolicitudCompra) error {
	tx = tx.WithContext(ctx)
	if err := tx.Where("propuesta_id = ?", s.PropuestaID).Delete(&model.SolicitudCompra{}).Error; err != nil {
		return err
	}
	return tx.Create(s).Error
}

func (r *capturaRepo) CreateRegistros(ctx context.Context, tx *gorm.DB, regs []model.RegistroEncomenda) error {
	if len(regs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&regs).Error
}

func (r *capturaRepo) FindSolicitud(ctx context.Context, propuestaID uuid.UUID) (*model.SolicitudCompra, error) {
	var s model.SolicitudCompra
	err := r.db.WithContext(ctx).Preload("Items").Where("propuesta_id = ?", propuestaID).First(&s).Error
	return &s, err
}

func (r *capturaRepo) ListRegistros(ctx context.Context, propuestaID uuid.UUID) ([]model.RegistroEncomenda, error) {
	var regs []model.RegistroEncomenda
	err := r.db.WithContext(ctx).Where("propuesta_id = ?", propuestaID).
		Order("fecha_encomenda ASC, numero_encomenda ASC").Find(&regs).Error
	return regs, err
}

func (r *capturaRepo) ListDossiers(ctx context.Context, propuestaID uuid.UUID) ([]model.Dossier, error) {
	var ds []model.Dossier
	err := r.db.WithContext(ctx).Where("propuesta_id = ?", propuestaID).Order("created_at DESC").Find(&ds).Error
	return ds, err
}

func (r *capturaRepo) ListAmostras(ctx context.Context, propuestaID uuid.UUID) ([]model.Amostra, error) {
	var as []model.Amostra
	err := r.db.WithContext(ctx).Where("propuesta_id = ?", propuestaID).Order("created_at DESC").Find(&as).Error
	return as, err
}
