package model

// Checklist labels persisted verbatim in visitas.mantenimiento. The stored
// representation is the label list itself; checkbox state is reconstructed by
// membership test, so label order is insignificant.
const (
	MantLimpiezaGeneral       = "Limpieza general"
	MantCalibracion           = "Calibración"
	MantRevisionMecanica      = "Revisión mecánica"
	MantActualizacionFirmware = "Actualización firmware"
	MantOtros                 = "Otros"
)

// Mantenimiento is the stored label list.
type Mantenimiento []string

// ChecklistMantenimiento mirrors the maintenance checkboxes of the visit form.
type ChecklistMantenimiento struct {
	LimpiezaGeneral       bool `json:"limpieza_general"`
	Calibracion           bool `json:"calibracion"`
	RevisionMecanica      bool `json:"revision_mecanica"`
	ActualizacionFirmware bool `json:"actualizacion_firmware"`
	Otros                 bool `json:"otros"`
}

// Checklist reconstructs checkbox state from the stored labels.
func (m Mantenimiento) Checklist() ChecklistMantenimiento {
	contiene := func(etiqueta string) bool {
		for _, e := range m {
			if e == etiqueta {
				return true
			}
		}
		return false
	}
	return ChecklistMantenimiento{
		LimpiezaGeneral:       contiene(MantLimpiezaGeneral),
		Calibracion:           contiene(MantCalibracion),
		RevisionMecanica:      contiene(MantRevisionMecanica),
		ActualizacionFirmware: contiene(MantActualizacionFirmware),
		Otros:                 contiene(MantOtros),
	}
}

// Etiquetas builds the stored label list from checkbox state.
func (c ChecklistMantenimiento) Etiquetas() Mantenimiento {
	var m Mantenimiento
	if c.LimpiezaGeneral {
		m = append(m, MantLimpiezaGeneral)
	}
	if c.Calibracion {
		m = append(m, MantCalibracion)
	}
	if c.RevisionMecanica {
		m = append(m, MantRevisionMecanica)
	}
	if c.ActualizacionFirmware {
		m = append(m, MantActualizacionFirmware)
	}
	if c.Otros {
		m = append(m, MantOtros)
	}
	return m
}
