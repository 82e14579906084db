// internal/models/area.go
package models

// Area is the hotel department a ticket is assigned to. There is no default
// area: a request either gets one of these values explicitly or it is not
// actionable.
type Area string

const (
	AreaHousekeeping Area = "HOUSEKEEPING"
	AreaMantencion   Area = "MANTENCION"
	AreaRecepcion    Area = "RECEPCION"
	AreaGerencia     Area = "GERENCIA"
	AreaSupervision  Area = "SUPERVISION"
)

// AllAreas lists the valid areas in routing priority order (complaints are
// caught before generic keywords).
var AllAreas = []Area{
	AreaGerencia,
	AreaRecepcion,
	AreaMantencion,
	AreaHousekeeping,
	AreaSupervision,
}

// ParseArea returns the Area for s and whether s named a valid area.
func ParseArea(s string) (Area, bool) {
	for _, a := range AllAreas {
		if Area(s) == a {
			return a, true
		}
	}
	return "", false
}

// IsValid reports whether a is one of the five enumerated areas.
func (a Area) IsValid() bool {
	_, ok := ParseArea(string(a))
	return ok
}

// DisplayName returns the guest-facing Spanish label for the area.
func (a Area) DisplayName() string {
	switch a {
	case AreaMantencion:
		return "Mantenimiento"
	case AreaHousekeeping:
		return "Housekeeping"
	case AreaRecepcion:
		return "Recepción"
	case AreaGerencia:
		return "Gerencia"
	case AreaSupervision:
		return "Supervisión"
	}
	return string(a)
}
