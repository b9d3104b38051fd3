package animals

import (
	"context"
	"errors"
	"strings"

	"animal-registry/internal/ports/registrylookup"
)

var (
	// ErrLookupUnavailable: el chequeo de unicidad no pudo completarse.
	// Jamás se interpreta como "válido" ni como "duplicado": el caller debe
	// reportar "validación incompleta".
	ErrLookupUnavailable = errors.New("uniqueness lookup unavailable")
)

// CheckUnique es el único punto del core que hace I/O (consulta al store).
// Es seguro llamarlo en paralelo para campos distintos del mismo registro:
// no comparte estado mutable.
func CheckUnique(ctx context.Context, lookup registrylookup.Lookup, field registrylookup.Field, value, excludeID string) (*Diagnostic, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	var label string
	switch field {
	case registrylookup.FieldRegistryID:
		label = "Registry ID"
	case registrylookup.FieldMicrochip:
		label = "Microchip"
	default:
		return nil, errors.New("uniqueness check not supported for field " + string(field))
	}

	taken, err := lookup.Exists(ctx, field, value, excludeID)
	if err != nil {
		return nil, errors.Join(ErrLookupUnavailable, err)
	}
	if !taken {
		return nil, nil
	}

	return &Diagnostic{
		Field:    string(field),
		Message:  label + " already exists",
		Severity: SeverityError,
		Code:     CodeDuplicateValue,
	}, nil
}
