package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores a login identity. The role lives in RolUsuario so it can be
// changed without touching the account.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RolUsuario is the per-user role record.
// Rol: "admin" | "comercial" (legacy rows may still hold "editor" or "viewer")
type RolUsuario struct {
	UsuarioID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Rol       string    `gorm:"type:varchar(20);not null"`
	UpdatedAt time.Time
}

func (RolUsuario) TableName() string { return "roles_usuario" }
