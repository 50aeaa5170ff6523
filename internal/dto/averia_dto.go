package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearAveriaRequest carries the new-avería form. Required-field checks run
// eagerly in the service so the caller sees every missing field at once;
// validator tags here only cover formats.
type CrearAveriaRequest struct {
	Urgencia          int    `json:"urgencia"            validate:"omitempty,min=1,max=3"`
	MedioContacto     string `json:"medio_contacto"      validate:"omitempty,oneof=correo telefono helpdesk"`
	EmailContacto     string `json:"email_contacto"      validate:"omitempty,email"`
	PersonaContacto   string `json:"persona_contacto"`
	HorarioSolicitado string `json:"horario_solicitado"`
	IDMaquina         string `json:"id_maquina"          validate:"omitempty,uuid"`
	IDTecnicoAsignado string `json:"id_tecnico_asignado" validate:"omitempty,uuid"`
	EstadoMaquina     string `json:"estado_maquina"      validate:"omitempty,oneof=funcionando parada baja_produccion"`
	TipoAveria        string `json:"tipo_averia"         validate:"omitempty,oneof=hardware software conectividad suministros otros"`
	Observaciones     string `json:"observaciones"`
}

// ActualizarAveriaRequest is a partial update: nil means "field not sent".
// The service re-validates every present field against the caller's role
// before anything reaches the store.
type ActualizarAveriaRequest struct {
	Estado            *string `json:"estado"              validate:"omitempty,oneof=abierta cerrada pendiente"`
	Urgencia          *int    `json:"urgencia"            validate:"omitempty,min=1,max=3"`
	MedioContacto     *string `json:"medio_contacto"      validate:"omitempty,oneof=correo telefono helpdesk"`
	EmailContacto     *string `json:"email_contacto"      validate:"omitempty,email"`
	PersonaContacto   *string `json:"persona_contacto"`
	HorarioSolicitado *string `json:"horario_solicitado"`
	IDMaquina         *string `json:"id_maquina"          validate:"omitempty,uuid"`
	EstadoMaquina     *string `json:"estado_maquina"      validate:"omitempty,oneof=funcionando parada baja_produccion"`
	TipoAveria        *string `json:"tipo_averia"         validate:"omitempty,oneof=hardware software conectividad suministros otros"`
	Observaciones     *string `json:"observaciones"`
	IDTecnicoAsignado *string `json:"id_tecnico_asignado" validate:"omitempty,uuid"`
}

type AsignarTecnicoRequest struct {
	IDTecnico string `json:"id_tecnico" validate:"required,uuid"`
}

// ─── Filters ─────────────────────────────────────────────────────────────────

// AveriaFilter carries structured filters plus the free-text term Q.
// Urgencia arrives as a string from the query and is coerced to the stored
// integer type in the service; empty strings mean "no constraint".
type AveriaFilter struct {
	Estado            string `form:"estado"`
	Urgencia          string `form:"urgencia"`
	IDTecnicoAsignado string `form:"id_tecnico_asignado"`
	TipoAveria        string `form:"tipo_averia"`
	FechaDesde        string `form:"fecha_desde"` // YYYY-MM-DD, inclusive from 00:00:00
	FechaHasta        string `form:"fecha_hasta"` // YYYY-MM-DD, inclusive until 23:59:59
	Ubicacion         string `form:"ubicacion"`
	Q                 string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaquinaResumen struct {
	ID            string `json:"id"`
	NumeroInterno string `json:"numero_interno"`
	NumeroSerie   string `json:"numero_serie,omitempty"`
	Modelo        string `json:"modelo"`
	Marca         string `json:"marca,omitempty"`
	Ubicacion     string `json:"ubicacion"`
}

type TecnicoResumen struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email,omitempty"`
}

type AveriaResponse struct {
	ID                 string          `json:"id"`
	Codigo             string          `json:"codigo"`
	Estado             string          `json:"estado"`
	Urgencia           int             `json:"urgencia"`
	MedioContacto      string          `json:"medio_contacto,omitempty"`
	EmailContacto      string          `json:"email_contacto"`
	PersonaContacto    string          `json:"persona_contacto"`
	HorarioSolicitado  string          `json:"horario_solicitado,omitempty"`
	EstadoMaquina      string          `json:"estado_maquina,omitempty"`
	TipoAveria         string          `json:"tipo_averia"`
	Observaciones      string          `json:"observaciones,omitempty"`
	Maquina            *MaquinaResumen `json:"maquina"`
	Tecnico            *TecnicoResumen `json:"tecnico"` // null — "Sin asignar"
	CreadoPor          string          `json:"creado_por"`
	FechaCreacion      time.Time       `json:"fecha_creacion"`
	FechaActualizacion time.Time       `json:"fecha_actualizacion"`
}

// EstadisticasAverias feeds the dashboard cards.
type EstadisticasAverias struct {
	Total      int64 `json:"total"`
	Abiertas   int64 `json:"abiertas"`
	Pendientes int64 `json:"pendientes"`
	Cerradas   int64 `json:"cerradas"`
}
