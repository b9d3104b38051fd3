package animals

import (
	"fmt"
	"strings"
)

// Reglas cross-field: corren después de las reglas por campo y miran
// dos o más campos en conjunto. Cada una produce cero o más diagnósticos.

func (v *Validator) crossFieldDiagnostics(c Candidate) []Diagnostic {
	var out []Diagnostic

	// Consistencia cliente/owner: cliente cargado sin owner top-level es un
	// hint de datos inconsistentes, no un bloqueo.
	if strings.TrimSpace(c.CustomerName()) != "" && strings.TrimSpace(c.Owner) == "" {
		out = append(out, Diagnostic{
			Field:    "owner",
			Message:  "Owner should match customer name",
			Severity: SeverityWarning,
			Code:     CodeInconsistentOwner,
		})
	}

	// Sire exige macho. Este sí es invariante duro.
	if hasRole(c.SelectedRoles, RoleSire) && c.Sex != SexMale {
		out = append(out, Diagnostic{
			Field:    "selectedRoles",
			Message:  "Sire role requires male sex",
			Severity: SeverityError,
			Code:     CodeRoleSexMismatch,
		})
	}

	// Edad mínima de reproducción para roles Donor/Sire (por especie).
	if hasRole(c.SelectedRoles, RoleDonor) || hasRole(c.SelectedRoles, RoleSire) {
		if c.Age != nil {
			minBreedingAge := 2.0
			if sc, ok := v.cfg.SpeciesFor(c.Species); ok && sc.MinBreedingAge > 0 {
				minBreedingAge = sc.MinBreedingAge
			}
			if *c.Age < minBreedingAge {
				out = append(out, Diagnostic{
					Field:    "age",
					Message:  fmt.Sprintf("Animal may be too young for breeding (minimum %g years)", minBreedingAge),
					Severity: SeverityWarning,
					Code:     CodeYoungForBreeding,
				})
			}
		}
	}

	return out
}
