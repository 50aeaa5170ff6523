package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores system users with role-based access.
// Rol: "superusuario" | "jefe_tecnico" | "oficina" | "tecnico"
//
// A single UUID identifier serves authentication, technician assignment on
// averías and technician filtering on visitas. The legacy store kept two id
// spaces (numeric usuario id + auth-subject UUID) bridged at runtime; that
// duality is collapsed here and the mapping, if ever needed, belongs in a
// one-off migration.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
