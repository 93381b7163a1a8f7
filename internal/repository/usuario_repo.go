package repository

import (
	"context"
	"errors"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/rol"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsuarioRepository interface {
	// Create stores the account and its initial role in one transaction.
	Create(ctx context.Context, u *model.Usuario, r string) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	List(ctx context.Context) ([]model.Usuario, error)

	// RolDe satisfies rol.Fuente.
	RolDe(ctx context.Context, id uuid.UUID) (string, error)
	AsignarRol(ctx context.Context, id uuid.UUID, r string) error
	// Roles returns the raw role of each user that has one.
	Roles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

var _ rol.Fuente = (*usuarioRepo)(nil)

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario, rl string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&model.RolUsuario{UsuarioID: u.ID, Rol: rl}).Error
	})
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND activo = true", email).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *usuarioRepo) List(ctx context.Context) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) RolDe(ctx context.Context, id uuid.UUID) (string, error) {
	var ru model.RolUsuario
	err := r.db.WithContext(ctx).First(&ru, "usuario_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", rol.ErrSinRegistro
	}
	return ru.Rol, err
}

func (r *usuarioRepo) AsignarRol(ctx context.Context, id uuid.UUID, rl string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "usuario_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rol", "updated_at"}),
	}).Create(&model.RolUsuario{UsuarioID: id, Rol: rl, UpdatedAt: time.Now()}).Error
}

func (r *usuarioRepo) Roles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.RolUsuario
	if err := r.db.WithContext(ctx).Where("usuario_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, ru := range rows {
		out[ru.UsuarioID] = ru.Rol
	}
	return out, nil
}
