package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Estado values for an avería.
const (
	AveriaAbierta   = "abierta"
	AveriaCerrada   = "cerrada"
	AveriaPendiente = "pendiente" // waiting for replacement parts
)

// Urgencia levels. Stored as an integer so range filters stay cheap.
const (
	UrgenciaAlta  = 1
	UrgenciaMedia = 2
	UrgenciaBaja  = 3
)

// TipoAveria values.
const (
	TipoHardware     = "hardware"
	TipoSoftware     = "software"
	TipoConectividad = "conectividad"
	TipoSuministros  = "suministros"
	TipoOtros        = "otros"
)

// Averia is a reported equipment fault.
// EstadoMaquina: "funcionando" | "parada" | "baja_produccion"
// MedioContacto: "correo" | "telefono" | "helpdesk"
type Averia struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo             string     `gorm:"uniqueIndex;not null"`
	Estado             string     `gorm:"type:varchar(20);not null;default:'abierta';index"`
	Urgencia           int        `gorm:"not null;default:2"`
	MedioContacto      string     `gorm:"type:varchar(20)"`
	EmailContacto      string     `gorm:"not null"`
	PersonaContacto    string     `gorm:"not null"`
	HorarioSolicitado  string
	IDMaquina          uuid.UUID  `gorm:"type:uuid;not null;index"`
	IDTecnicoAsignado  *uuid.UUID `gorm:"type:uuid;index"`
	EstadoMaquina      string     `gorm:"type:varchar(20)"`
	TipoAveria         string     `gorm:"type:varchar(20);not null"`
	Observaciones      string
	CreadoPor          uuid.UUID `gorm:"type:uuid;not null"`
	FechaCreacion      time.Time `gorm:"autoCreateTime;index"`
	FechaActualizacion time.Time `gorm:"autoUpdateTime"`

	Maquina *Maquina `gorm:"foreignKey:IDMaquina"`
	Tecnico *Usuario `gorm:"foreignKey:IDTecnicoAsignado"`
}

func (Averia) TableName() string { return "averias" }

// FormatearCodigoAveria renders the sequential number as the human-facing
// code shown in listings and searches (AVR-0001).
func FormatearCodigoAveria(n int64) string {
	return fmt.Sprintf("AVR-%04d", n)
}
