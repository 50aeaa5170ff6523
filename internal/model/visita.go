package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Estado values for a visita.
const (
	VisitaPendiente  = "pendiente"
	VisitaProgramada = "programada"
	VisitaEnProgreso = "en_progreso"
	VisitaCompletada = "completada"
	VisitaCancelada  = "cancelada"
)

// EstadoPieza values for replaced parts.
const (
	PiezaNueva      = "nueva"
	PiezaReciclada  = "reciclada"
	PiezaSustituida = "sustituida"
)

// Visita is one technician dispatch against an avería.
// EstadoFinalMaquina: "funcionando" | "parada"
// IDTecnico is nullable only for visits created by a superusuario.
type Visita struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo             string     `gorm:"uniqueIndex;not null"`
	IDAveria           uuid.UUID  `gorm:"type:uuid;not null;index"`
	IDTecnico          *uuid.UUID `gorm:"type:uuid;index"`
	FechaVisita        time.Time  `gorm:"not null;index"`
	FechaProgramada    time.Time  `gorm:"not null"`
	Estado             string     `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	ContadorColor      *int
	ContadorBN         *int `gorm:"column:contador_bn"`
	ContadorEscaner    *int
	DescripcionSolucion string
	SolucionAplicada   string
	EstadoFinalMaquina string `gorm:"type:varchar(20)"`
	Pieza1             string `gorm:"column:pieza_1"`
	EstadoPieza1       string `gorm:"column:estado_pieza_1;type:varchar(20)"`
	Pieza2             string `gorm:"column:pieza_2"`
	EstadoPieza2       string `gorm:"column:estado_pieza_2;type:varchar(20)"`
	Pieza3             string `gorm:"column:pieza_3"`
	EstadoPieza3       string `gorm:"column:estado_pieza_3;type:varchar(20)"`
	// Mantenimiento persists as a list of human-readable labels, not codes.
	Mantenimiento Mantenimiento `gorm:"serializer:json"`
	FechaInicio   *time.Time
	FechaFin      *time.Time
	Observaciones string
	CreadoPor     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Averia  *Averia  `gorm:"foreignKey:IDAveria"`
	Tecnico *Usuario `gorm:"foreignKey:IDTecnico"`
}

func (Visita) TableName() string { return "visitas" }

// FormatearCodigoVisita renders the sequential number as the human-facing
// visit code (VIS-0001).
func FormatearCodigoVisita(n int64) string {
	return fmt.Sprintf("VIS-%04d", n)
}
