package infra

import (
	"fmt"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection (pgx underneath) and brings the schema
// up to date with RunMigrations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies pre-patches, AutoMigrate and post-patches. Every step
// is idempotent; integration tests call it on a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := applyPatches(db, prePatches()); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.RolUsuario{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Propuesta{},
		&model.ArticuloPropuesta{},
		&model.FollowUp{},
		&model.Dossier{},
		&model.Amostra{},
		&model.SolicitudCompra{},
		&model.SolicitudCompraItem{},
		&model.RegistroEncomenda{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applyPatches(db, postPatches()); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

type patch struct{ descr, sql string }

// prePatches run before AutoMigrate: extensions and sequences that column
// defaults depend on.
func prePatches() []patch {
	return []patch{
		{"pgcrypto for gen_random_uuid", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
		{"proposal number sequence", `CREATE SEQUENCE IF NOT EXISTS propuestas_numero_seq START 1000`},
	}
}

// postPatches run after AutoMigrate: data fixes and indexes GORM cannot
// express.
func postPatches() []patch {
	ps := []patch{
		// rows created before the sequence existed must not collide with it
		{"align proposal number sequence", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM propuestas) THEN
    PERFORM setval('propuestas_numero_seq',
      GREATEST((SELECT MAX(numero_propuesta) FROM propuestas), (SELECT last_value FROM propuestas_numero_seq)));
  END IF;
END $$`},
		{"historial defaults to empty array", `UPDATE propuestas SET historial = '[]'::jsonb WHERE historial IS NULL OR jsonb_typeof(historial) <> 'array'`},
		{"partial index for alert scans", `
CREATE INDEX IF NOT EXISTS idx_propuestas_alerta
    ON propuestas (estado)
 WHERE estado IN ('propuesta_enviada', 'follow_up', 'aguarda_aprovacao_dossier', 'aguarda_pagamento')`},
		{"follow-up future date lookup", `
CREATE INDEX IF NOT EXISTS idx_follow_ups_futuro
    ON follow_ups (propuesta_id, fecha_futuro_follow_up)
 WHERE fecha_futuro_follow_up IS NOT NULL`},
		{"legacy role values", `UPDATE roles_usuario SET rol = 'comercial' WHERE rol IN ('editor', 'viewer')`},
	}
	// Old rows may still carry the Spanish sample aliases. Rewrite them once
	// so the enum never has to accept them, history entries included.
	for viejo, nuevo := range estado.Legados() {
		ps = append(ps,
			patch{"legacy status " + viejo, fmt.Sprintf(
				`UPDATE propuestas SET estado = '%s' WHERE estado = '%s'`, nuevo, viejo)},
			patch{"legacy history endpoints " + viejo, fmt.Sprintf(`
UPDATE propuestas SET historial = (
  SELECT jsonb_agg(
    CASE
      WHEN e->>'de' = '%[1]s' THEN jsonb_set(e, '{de}', '"%[2]s"')
      WHEN e->>'a'  = '%[1]s' THEN jsonb_set(e, '{a}',  '"%[2]s"')
      ELSE e
    END ORDER BY ord)
  FROM jsonb_array_elements(historial) WITH ORDINALITY AS t(e, ord))
WHERE historial @> '[{"de": "%[1]s"}]' OR historial @> '[{"a": "%[1]s"}]'`, viejo, nuevo)},
		)
	}
	return ps
}

func applyPatches(db *gorm.DB, ps []patch) error {
	for _, p := range ps {
		res := db.Exec(p.sql)
		if res.Error != nil {
			return fmt.Errorf("patch %q: %w", p.descr, res.Error)
		}
		if res.RowsAffected > 0 {
			log.Info().Str("patch", p.descr).Int64("rows", res.RowsAffected).Msg("schema patch applied")
		}
	}
	return nil
}
