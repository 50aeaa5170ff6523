package model

import (
	"time"

	"github.com/google/uuid"
)

// Maquina is a serviced printing device. Reference data from this service's
// point of view: rows are seeded/imported externally and never written here.
type Maquina struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroInterno string    `gorm:"uniqueIndex;not null"`
	NumeroSerie   string    `gorm:"not null"`
	Modelo        string    `gorm:"not null"`
	Marca         string
	Ubicacion     string `gorm:"index;not null"`
	CreatedAt     time.Time
}

func (Maquina) TableName() string { return "maquinas" }
