package dto

import (
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PiezaRequest struct {
	Pieza       string `json:"pieza"`
	EstadoPieza string `json:"estado_pieza" validate:"omitempty,oneof=nueva reciclada sustituida"`
}

// CrearVisitaRequest carries the new-visit form. Avería and fecha_visita are
// required for everyone; técnico is required unless the caller is
// superusuario. Required checks run eagerly in the service.
type CrearVisitaRequest struct {
	IDAveria            string                        `json:"id_averia"            validate:"omitempty,uuid"`
	IDTecnico           string                        `json:"id_tecnico"           validate:"omitempty,uuid"`
	FechaVisita         *time.Time                    `json:"fecha_visita"`
	Estado              string                        `json:"estado"               validate:"omitempty,oneof=pendiente programada en_progreso completada cancelada"`
	ContadorColor       *int                          `json:"contador_color"       validate:"omitempty,min=0"`
	ContadorBN          *int                          `json:"contador_bn"          validate:"omitempty,min=0"`
	ContadorEscaner     *int                          `json:"contador_escaner"     validate:"omitempty,min=0"`
	DescripcionSolucion string                        `json:"descripcion_solucion"`
	SolucionAplicada    string                        `json:"solucion_aplicada"`
	EstadoFinalMaquina  string                        `json:"estado_final_maquina" validate:"omitempty,oneof=funcionando parada"`
	Piezas              []PiezaRequest                `json:"piezas"               validate:"max=3,dive"`
	Mantenimiento       model.ChecklistMantenimiento  `json:"mantenimiento"`
	FechaInicio         *time.Time                    `json:"fecha_inicio"`
	FechaFin            *time.Time                    `json:"fecha_fin"`
	Observaciones       string                        `json:"observaciones"`
}

// ActualizarVisitaRequest mirrors the full visit form. There is deliberately
// no per-field role gate on visit updates (unlike averías); see DESIGN.md.
type ActualizarVisitaRequest struct {
	IDTecnico           string                        `json:"id_tecnico"           validate:"omitempty,uuid"`
	FechaVisita         *time.Time                    `json:"fecha_visita"`
	Estado              string                        `json:"estado"               validate:"omitempty,oneof=pendiente programada en_progreso completada cancelada"`
	ContadorColor       *int                          `json:"contador_color"       validate:"omitempty,min=0"`
	ContadorBN          *int                          `json:"contador_bn"          validate:"omitempty,min=0"`
	ContadorEscaner     *int                          `json:"contador_escaner"     validate:"omitempty,min=0"`
	DescripcionSolucion string                        `json:"descripcion_solucion"`
	SolucionAplicada    string                        `json:"solucion_aplicada"`
	EstadoFinalMaquina  string                        `json:"estado_final_maquina" validate:"omitempty,oneof=funcionando parada"`
	Piezas              []PiezaRequest                `json:"piezas"               validate:"max=3,dive"`
	Mantenimiento       model.ChecklistMantenimiento  `json:"mantenimiento"`
	FechaInicio         *time.Time                    `json:"fecha_inicio"`
	FechaFin            *time.Time                    `json:"fecha_fin"`
	Observaciones       string                        `json:"observaciones"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

type VisitaFilter struct {
	IDTecnico  string `form:"id_tecnico"`
	Estado     string `form:"estado"`
	FechaDesde string `form:"fecha_desde"`
	FechaHasta string `form:"fecha_hasta"`
	Ubicacion  string `form:"ubicacion"`
	Q          string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PiezaResponse struct {
	Pieza       string `json:"pieza"`
	EstadoPieza string `json:"estado_pieza"`
}

type AveriaResumen struct {
	ID      string          `json:"id"`
	Codigo  string          `json:"codigo"`
	Maquina *MaquinaResumen `json:"maquina,omitempty"`
}

type VisitaResponse struct {
	ID                  string                       `json:"id"`
	Codigo              string                       `json:"codigo"`
	Averia              *AveriaResumen               `json:"averia"`
	Tecnico             *TecnicoResumen              `json:"tecnico"`
	FechaVisita         time.Time                    `json:"fecha_visita"`
	FechaProgramada     time.Time                    `json:"fecha_programada"`
	Estado              string                       `json:"estado"`
	ContadorColor       *int                         `json:"contador_color"`
	ContadorBN          *int                         `json:"contador_bn"`
	ContadorEscaner     *int                         `json:"contador_escaner"`
	DescripcionSolucion string                       `json:"descripcion_solucion,omitempty"`
	SolucionAplicada    string                       `json:"solucion_aplicada,omitempty"`
	EstadoFinalMaquina  string                       `json:"estado_final_maquina,omitempty"`
	Piezas              []PiezaResponse              `json:"piezas"`
	Mantenimiento       []string                     `json:"mantenimiento"`
	Checklist           model.ChecklistMantenimiento `json:"checklist"`
	FechaInicio         *time.Time                   `json:"fecha_inicio"`
	FechaFin            *time.Time                   `json:"fecha_fin"`
	Observaciones       string                       `json:"observaciones,omitempty"`
	CreadoPor           string                       `json:"creado_por"`
}

// CrearVisitaResponse wraps the created visit. Advertencia is set when a
// superusuario creates a visit against an avería with no assigned técnico —
// a warning for that role, a validation error for everyone else.
type CrearVisitaResponse struct {
	Visita      VisitaResponse `json:"visita"`
	Advertencia string         `json:"advertencia,omitempty"`
}
