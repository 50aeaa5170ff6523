// Package rbac holds the role and field capability tables for averías and
// visitas. Every rule is a pure function of (role, field); nothing here reads
// session state or caches decisions. The same tables gate both what the API
// accepts and what list queries return — client-side checks elsewhere are
// advisory only.
package rbac

// Rol values. Hierarchy for coarse checks: superusuario(4) > jefe_tecnico(3)
// > oficina(2) > tecnico(1). Unknown roles rank 0 and fail every check.
type Rol string

const (
	RolSuperusuario Rol = "superusuario"
	RolJefeTecnico  Rol = "jefe_tecnico"
	RolOficina      Rol = "oficina"
	RolTecnico      Rol = "tecnico"
)

var niveles = map[Rol]int{
	RolSuperusuario: 4,
	RolJefeTecnico:  3,
	RolOficina:      2,
	RolTecnico:      1,
}

// Nivel returns the hierarchy level of a role, 0 for unknown roles.
func Nivel(rol Rol) int { return niveles[rol] }

// Valida reports whether the role is one of the four known roles.
func Valida(rol Rol) bool { return niveles[rol] > 0 }

// Campo enumerates the editable fields of an avería. Keeping this a closed
// enum (instead of free-form strings) means a new field cannot silently
// default to editable: it must be added here and placed in a capability set.
type Campo string

const (
	CampoEstado            Campo = "estado"
	CampoUrgencia          Campo = "urgencia"
	CampoMedioContacto     Campo = "medio_contacto"
	CampoEmailContacto     Campo = "email_contacto"
	CampoPersonaContacto   Campo = "persona_contacto"
	CampoHorarioSolicitado Campo = "horario_solicitado"
	CampoMaquina           Campo = "id_maquina"
	CampoEstadoMaquina     Campo = "estado_maquina"
	CampoTipoAveria        Campo = "tipo_averia"
	CampoObservaciones     Campo = "observaciones"
	CampoTecnicoAsignado   Campo = "id_tecnico_asignado"
)

// camposOficina is the fixed whitelist for the oficina role. Everything not
// listed here (machine selection, fault type, technician, machine state) is
// read-only for oficina.
var camposOficina = map[Campo]bool{
	CampoEstado:            true,
	CampoUrgencia:          true,
	CampoEmailContacto:     true,
	CampoPersonaContacto:   true,
	CampoHorarioSolicitado: true,
	CampoObservaciones:     true,
}

// PuedeEditarAveria reports whether the role may update avería records at
// all. Técnicos get a read-only view.
func PuedeEditarAveria(rol Rol) bool {
	switch rol {
	case RolSuperusuario, RolJefeTecnico, RolOficina:
		return true
	}
	return false
}

// PuedeEliminarAveria is restricted to superusuario. Deletes are hard and
// irreversible.
func PuedeEliminarAveria(rol Rol) bool { return rol == RolSuperusuario }

// PuedeAsignarTecnico gates assignment and reassignment of the technician on
// an avería. Oficina may create averías but not (re)assign.
func PuedeAsignarTecnico(rol Rol) bool {
	return rol == RolSuperusuario || rol == RolJefeTecnico
}

// PuedeCrearAveria: técnicos cannot open averías.
func PuedeCrearAveria(rol Rol) bool {
	switch rol {
	case RolSuperusuario, RolJefeTecnico, RolOficina:
		return true
	}
	return false
}

// PuedeCrearVisita: every known role may create visits (técnicos only against
// averías assigned to themselves — enforced in the visita service).
func PuedeCrearVisita(rol Rol) bool { return Valida(rol) }

// PuedeEditarCampo decides field-level editability on an avería. Unknown
// roles and unknown fields fail closed.
func PuedeEditarCampo(rol Rol, campo Campo) bool {
	switch rol {
	case RolSuperusuario:
		return true
	case RolOficina:
		return camposOficina[campo]
	}
	// jefe_tecnico included: their power over an avería is assignment
	// (PuedeAsignarTecnico), not field edits.
	return false
}

// VisibilidadRestringida reports whether listings must be narrowed to the
// caller's own assigned records. This predicate composes with user-supplied
// filters by AND and is applied before them.
func VisibilidadRestringida(rol Rol) bool { return rol == RolTecnico }
