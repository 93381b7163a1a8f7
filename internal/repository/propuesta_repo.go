package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrConflicto is returned when a conditional update matched no row: the
// proposal changed status (or disappeared) after it was read.
var ErrConflicto = errors.New("repository: la propuesta cambió de estado")

// PropuestaRepository is the data access contract for proposals.
//
// Every history write goes through AplicarTransicion or AgregarHistorial,
// which append with a server-side jsonb concatenation in the same UPDATE as
// the field change. Nothing ever rewrites the historial column.
type PropuestaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Propuesta) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Propuesta, error)
	List(ctx context.Context, filter dto.PropuestaFilter, comercialID *uuid.UUID) ([]model.Propuesta, int64, error)
	ListByEstados(ctx context.Context, estados []estado.Estado, comercialID *uuid.UUID) ([]model.Propuesta, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// AplicarTransicion moves id from de to a, sets campos and appends entrada.
	// Returns ErrConflicto when the row is no longer in de.
	AplicarTransicion(ctx context.Context, tx *gorm.DB, id uuid.UUID, de, a estado.Estado, campos map[string]interface{}, entrada model.EntradaHistorial) error
	// AgregarHistorial sets campos (may be empty) and appends entrada.
	AgregarHistorial(ctx context.Context, tx *gorm.DB, id uuid.UUID, campos map[string]interface{}, entrada model.EntradaHistorial) error

	// MarcarAlertaEnviada stamps an alert flag column only if it is still
	// NULL. false means another sender got there first.
	MarcarAlertaEnviada(ctx context.Context, id uuid.UUID, columna string, cuando time.Time) (bool, error)
	// DesmarcarAlerta undoes a MarcarAlertaEnviada whose send failed. Only a
	// flag still holding cuando is cleared.
	DesmarcarAlerta(ctx context.Context, id uuid.UUID, columna string, cuando time.Time) error
	LimpiarAlerta(ctx context.Context, tx *gorm.DB, id uuid.UUID, columna string) error

	DB() *gorm.DB
}

type propuestaRepo struct{ db *gorm.DB }

func NewPropuestaRepository(db *gorm.DB) PropuestaRepository { return &propuestaRepo{db: db} }

func (r *propuestaRepo) DB() *gorm.DB { return r.db }

func (r *propuestaRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Propuesta) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *propuestaRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('propuestas_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *propuestaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Propuesta, error) {
	var p model.Propuesta
	err := r.db.WithContext(ctx).
		Preload("Articulos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *propuestaRepo) List(ctx context.Context, filter dto.PropuestaFilter, comercialID *uuid.UUID) ([]model.Propuesta, int64, error) {
	var propuestas []model.Propuesta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Propuesta{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Cliente != "" {
		q = q.Where("nombre_cliente ILIKE ?", "%"+filter.Cliente+"%")
	}
	if comercialID != nil {
		q = q.Where("comercial_id = ?", *comercialID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Articulos").
		Order("numero_propuesta DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&propuestas).Error
	return propuestas, total, err
}

func (r *propuestaRepo) ListByEstados(ctx context.Context, estados []estado.Estado, comercialID *uuid.UUID) ([]model.Propuesta, error) {
	var propuestas []model.Propuesta
	q := r.db.WithContext(ctx).Where("estado IN ?", estados)
	if comercialID != nil {
		q = q.Where("comercial_id = ?", *comercialID)
	}
	err := q.Preload("Articulos").Order("numero_propuesta DESC").Find(&propuestas).Error
	return propuestas, err
}

func (r *propuestaRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	tx = tx.WithContext(ctx)
	// solicitudes_compra_items go with their parent via ON DELETE CASCADE
	for _, m := range []interface{}{
		&model.ArticuloPropuesta{}, &model.FollowUp{}, &model.Dossier{},
		&model.Amostra{}, &model.SolicitudCompra{}, &model.RegistroEncomenda{},
	} {
		if err := tx.Where("propuesta_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	res := tx.Where("id = ?", id).Delete(&model.Propuesta{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *propuestaRepo) AplicarTransicion(ctx context.Context, tx *gorm.DB, id uuid.UUID, de, a estado.Estado, campos map[string]interface{}, entrada model.EntradaHistorial) error {
	upd, err := conHistorial(campos, entrada)
	if err != nil {
		return err
	}
	upd["estado"] = a

	res := tx.WithContext(ctx).Model(&model.Propuesta{}).
		Where("id = ? AND estado = ?", id, de).
		Updates(upd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflicto
	}
	return nil
}

func (r *propuestaRepo) AgregarHistorial(ctx context.Context, tx *gorm.DB, id uuid.UUID, campos map[string]interface{}, entrada model.EntradaHistorial) error {
	upd, err := conHistorial(campos, entrada)
	if err != nil {
		return err
	}
	res := tx.WithContext(ctx).Model(&model.Propuesta{}).Where("id = ?", id).Updates(upd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *propuestaRepo) MarcarAlertaEnviada(ctx context.Context, id uuid.UUID, columna string, cuando time.Time) (bool, error) {
	if !columnaAlerta(columna) {
		return false, fmt.Errorf("columna de alerta desconocida: %q", columna)
	}
	res := r.db.WithContext(ctx).Model(&model.Propuesta{}).
		Where("id = ? AND "+columna+" IS NULL", id).
		UpdateColumn(columna, cuando)
	return res.RowsAffected == 1, res.Error
}

func (r *propuestaRepo) DesmarcarAlerta(ctx context.Context, id uuid.UUID, columna string, cuando time.Time) error {
	if !columnaAlerta(columna) {
		return fmt.Errorf("columna de alerta desconocida: %q", columna)
	}
	return r.db.WithContext(ctx).Model(&model.Propuesta{}).
		Where("id = ? AND "+columna+" = ?", id, cuando).
		UpdateColumn(columna, nil).Error
}

func (r *propuestaRepo) LimpiarAlerta(ctx context.Context, tx *gorm.DB, id uuid.UUID, columna string) error {
	if !columnaAlerta(columna) {
		return fmt.Errorf("columna de alerta desconocida: %q", columna)
	}
	return tx.WithContext(ctx).Model(&model.Propuesta{}).
		Where("id = ?", id).
		UpdateColumn(columna, nil).Error
}

func columnaAlerta(c string) bool {
	return c == "webhook_15d_sent_at" || c == "webhook_future_fu_sent_at"
}

// conHistorial copies campos and adds the jsonb append of entrada.
func conHistorial(campos map[string]interface{}, entrada model.EntradaHistorial) (map[string]interface{}, error) {
	b, err := json.Marshal(model.Historial{entrada})
	if err != nil {
		return nil, fmt.Errorf("serializar historial: %w", err)
	}
	upd := make(map[string]interface{}, len(campos)+2)
	for k, v := range campos {
		upd[k] = v
	}
	upd["historial"] = gorm.Expr("COALESCE(historial, '[]'::jsonb) || ?::jsonb", string(b))
	upd["updated_at"] = entrada.Fecha
	return upd, nil
}
