package animals

// Severity ordena los niveles de un diagnóstico: Error > Warning > Info.
// La "dominancia" por campo es un max-by-severity genérico, no casos especiales.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Code es el código máquina de un diagnóstico.
type Code string

const (
	CodeRequired          Code = "REQUIRED"
	CodeInvalidFormat     Code = "INVALID_FORMAT"
	CodeInvalidValue      Code = "INVALID_VALUE"
	CodeInvalidNumber     Code = "INVALID_NUMBER"
	CodeMinLength         Code = "MIN_LENGTH"
	CodeMaxLength         Code = "MAX_LENGTH"
	CodeExceedsMax        Code = "EXCEEDS_MAX"
	CodeOutOfRange        Code = "OUT_OF_RANGE"
	CodeInvalidCharacters Code = "INVALID_CHARACTERS"
	CodeVeryYoung         Code = "VERY_YOUNG"
	CodeElderly           Code = "ELDERLY"
	CodeInvalidDate       Code = "INVALID_DATE"
	CodeFutureDate        Code = "FUTURE_DATE"
	CodeAgeMismatch       Code = "AGE_MISMATCH"
	CodeRoleConflict      Code = "ROLE_CONFLICT"
	CodeRoleSexMismatch   Code = "ROLE_SEX_MISMATCH"
	CodeSpeciesMismatch   Code = "SPECIES_MISMATCH"
	CodeDuplicateValue    Code = "DUPLICATE_VALUE"
	CodeInconsistentOwner Code = "INCONSISTENT_OWNER"
	CodeYoungForBreeding  Code = "YOUNG_FOR_BREEDING"
	CodeInvalidEmail      Code = "INVALID_EMAIL"
	CodeInvalidPhone      Code = "INVALID_PHONE"
)

// Diagnostic es un hallazgo de validación: un campo, una severidad, un código.
// Los hallazgos son datos, no errores de Go: la validación siempre completa.
type Diagnostic struct {
	Field    string
	Message  string
	Severity Severity
	Code     Code
}

// Verdict es el resultado agregado de validar un registro.
type Verdict struct {
	IsValid bool
	// Errors: solo severity=error. Warnings: warning + info.
	Errors   []Diagnostic
	Warnings []Diagnostic
	// Fields guarda el diagnóstico dominante por campo (lo que la UI muestra
	// junto al campo). Un error siempre pisa un warning previo del mismo campo;
	// los info no entran al mapa, solo a Warnings.
	Fields map[string]Diagnostic
}

// add incorpora un diagnóstico al veredicto aplicando la dominancia por campo.
func (v *Verdict) add(d Diagnostic) {
	switch d.Severity {
	case SeverityError:
		v.Errors = append(v.Errors, d)
	default:
		v.Warnings = append(v.Warnings, d)
	}

	if d.Severity == SeverityInfo {
		return
	}
	if prev, ok := v.Fields[d.Field]; !ok || d.Severity >= prev.Severity {
		v.Fields[d.Field] = d
	}
}

func newVerdict() Verdict {
	return Verdict{Fields: make(map[string]Diagnostic)}
}
