package animals

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Reglas por campo. Cada regla es pura: lee el candidato (incluyendo los
// campos que declara en Dependencies) y produce cero o un diagnóstico.
// El orden del slice define el orden de evaluación y es estable.

var (
	registryIDPattern = regexp.MustCompile(`^[A-Z]{2}-\d{4}-\d{3,4}$`)
	namePattern       = regexp.MustCompile(`^[a-zA-Z0-9\s\-'.]+$`)
	microchipPattern  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
)

const (
	microchipMinLength = 10
	microchipMaxLength = 20
	nameMinLength      = 2
	nameMaxLength      = 50

	// Umbrales suaves de edad: <0.5 años = "muy joven", >0.8*maxAge = "mayor".
	veryYoungAge     = 0.5
	elderlyAgeFactor = 0.8
)

// FieldRule es una regla declarativa de un campo.
type FieldRule struct {
	Field        string
	Required     bool
	Dependencies []string
	validate     func(v *Validator, c Candidate) *Diagnostic
}

// fieldRules arma la tabla de reglas. Se construye por llamada (son closures
// sin estado compartido), así el validador sigue siendo puro.
func fieldRules() []FieldRule {
	return []FieldRule{
		{
			Field:        "registryID",
			Required:     true,
			Dependencies: []string{"species"},
			validate: func(v *Validator, c Candidate) *Diagnostic {
				value := strings.TrimSpace(c.RegistryID)
				if value == "" {
					return &Diagnostic{Field: "registryID", Message: "Registry ID is required", Severity: SeverityError, Code: CodeRequired}
				}
				if !registryIDPattern.MatchString(value) {
					return &Diagnostic{Field: "registryID", Message: "Registry ID format should be BV-2025-001", Severity: SeverityError, Code: CodeInvalidFormat}
				}
				// Consistencia con la especie: mismatch de prefijo es warning, no error.
				if sc, ok := v.cfg.SpeciesFor(c.Species); ok && !strings.HasPrefix(value, sc.Prefix) {
					return &Diagnostic{
						Field:    "registryID",
						Message:  fmt.Sprintf("Registry ID should start with %s for %s", sc.Prefix, c.Species),
						Severity: SeverityWarning,
						Code:     CodeSpeciesMismatch,
					}
				}
				return nil
			},
		},
		{
			Field:    "name",
			Required: true,
			validate: func(v *Validator, c Candidate) *Diagnostic {
				value := strings.TrimSpace(c.Name)
				if value == "" {
					return &Diagnostic{Field: "name", Message: "Animal name is required", Severity: SeverityError, Code: CodeRequired}
				}
				if len(value) < nameMinLength {
					return &Diagnostic{Field: "name", Message: "Name must be at least 2 characters long", Severity: SeverityError, Code: CodeMinLength}
				}
				if len(value) > nameMaxLength {
					return &Diagnostic{Field: "name", Message: "Name cannot exceed 50 characters", Severity: SeverityError, Code: CodeMaxLength}
				}
				if !namePattern.MatchString(value) {
					return &Diagnostic{Field: "name", Message: "Name contains invalid characters", Severity: SeverityWarning, Code: CodeInvalidCharacters}
				}
				return nil
			},
		},
		{
			Field:    "species",
			Required: true,
			validate: func(v *Validator, c Candidate) *Diagnostic {
				if c.Species == "" {
					return &Diagnostic{Field: "species", Message: "Species is required", Severity: SeverityError, Code: CodeRequired}
				}
				if _, ok := v.cfg.SpeciesFor(c.Species); !ok {
					return &Diagnostic{Field: "species", Message: "Invalid species selected", Severity: SeverityError, Code: CodeInvalidValue}
				}
				return nil
			},
		},
		{
			Field:    "sex",
			Required: true,
			validate: func(v *Validator, c Candidate) *Diagnostic {
				if c.Sex == "" {
					return &Diagnostic{Field: "sex", Message: "Sex is required", Severity: SeverityError, Code: CodeRequired}
				}
				if c.Sex != SexMale && c.Sex != SexFemale {
					return &Diagnostic{Field: "sex", Message: "Sex must be either MALE or FEMALE", Severity: SeverityError, Code: CodeInvalidValue}
				}
				return nil
			},
		},
		{
			Field:    "status",
			Required: true,
			validate: func(v *Validator, c Candidate) *Diagnostic {
				if c.Status == "" {
					return &Diagnostic{Field: "status", Message: "Status is required", Severity: SeverityError, Code: CodeRequired}
				}
				for _, s := range KnownStatuses() {
					if c.Status == s {
						return nil
					}
				}
				return &Diagnostic{Field: "status", Message: "Invalid status selected", Severity: SeverityError, Code: CodeInvalidValue}
			},
		},
		{
			Field:        "age",
			Dependencies: []string{"species"},
			validate: func(v *Validator, c Candidate) *Diagnostic {
				if c.Age == nil {
					return nil
				}
				age := *c.Age
				if math.IsNaN(age) || age < 0 {
					return &Diagnostic{Field: "age", Message: "Age must be a positive number", Severity: SeverityError, Code: CodeInvalidNumber}
				}

				maxAge := 50.0
				if sc, ok := v.cfg.SpeciesFor(c.Species); ok {
					maxAge = sc.MaxAge
				}
				if age > maxAge {
					return &Diagnostic{
						Field:    "age",
						Message:  fmt.Sprintf("Age cannot exceed %g years for %s", maxAge, c.Species),
						Severity: SeverityError,
						Code:     CodeExceedsMax,
					}
				}
				// Avisos suaves: animal muy joven o mayor. El error manda;
				// de los avisos, aplica a lo sumo uno.
				if age < veryYoungAge {
					return &Diagnostic{Field: "age", Message: "Very young animal - verify age is correct", Severity: SeverityWarning, Code: CodeVeryYoung}
				}
				if age > maxAge*elderlyAgeFactor {
					return &Diagnostic{Field: "age", Message: "Elderly animal - consider health monitoring", Severity: SeverityInfo, Code: CodeElderly}
				}
				return nil
			},
		},
		{
			Field:        "weight",
			Dependencies: []string{"species"},
			validate: func(v *Validator, c Candidate) *Diagnostic {
				if c.Weight == nil {
					return nil
				}
				weight := *c.Weight
				if math.IsNaN(weight) || weight <= 0 {
					return &Diagnostic{Field: "weight", Message: "Weight must be a positive number", Severity: SeverityError, Code: CodeInvalidNumber}
				}
				if sc, ok := v.cfg.SpeciesFor(c.Species); ok {
					if weight < sc.WeightRange.Min || weight > sc.WeightRange.Max {
						return &Diagnostic{
							Field:    "weight",
							Message:  fmt.Sprintf("Weight should be between %g-%gkg for %s", sc.WeightRange.Min, sc.WeightRange.Max, c.Species),
							Severity: SeverityWarning,
							Code:     CodeOutOfRange,
						}
					}
				}
				return nil
			},
		},
		{
			Field: "microchip",
			validate: func(v *Validator, c Candidate) *Diagnostic {
				value := strings.TrimSpace(c.Microchip)
				if value == "" {
					return nil
				}
				if len(value) < microchipMinLength {
					return &Diagnostic{Field: "microchip", Message: "Microchip must be at least 10 characters", Severity: SeverityError, Code: CodeMinLength}
				}
				if len(value) > microchipMaxLength {
					return &Diagnostic{Field: "microchip", Message: "Microchip cannot exceed 20 characters", Severity: SeverityError, Code: CodeMaxLength}
				}
				if !microchipPattern.MatchString(value) {
					return &Diagnostic{Field: "microchip", Message: "Microchip should contain only letters and numbers", Severity: SeverityWarning, Code: CodeInvalidFormat}
				}
				return nil
			},
		},
		{
			Field:        "dateOfBirth",
			Dependencies: []string{"age"},
			validate: func(v *Validator, c Candidate) *Diagnostic {
				value := strings.TrimSpace(c.DateOfBirth)
				if value == "" {
					return nil
				}
				birth, ok := parseDOB(value)
				if !ok {
					return &Diagnostic{Field: "dateOfBirth", Message: "Invalid date format", Severity: SeverityError, Code: CodeInvalidDate}
				}
				now := v.now()
				if birth.After(now) {
					return &Diagnostic{Field: "dateOfBirth", Message: "Date of birth cannot be in the future", Severity: SeverityError, Code: CodeFutureDate}
				}
				// Cruce con la edad declarada: más de 1 año de diferencia es sospechoso.
				if c.Age != nil {
					calculated := math.Floor(now.Sub(birth).Hours() / (365.25 * 24))
					if math.Abs(calculated-*c.Age) > 1 {
						return &Diagnostic{
							Field:    "dateOfBirth",
							Message:  fmt.Sprintf("Calculated age (%g) doesn't match provided age (%g)", calculated, *c.Age),
							Severity: SeverityWarning,
							Code:     CodeAgeMismatch,
						}
					}
				}
				return nil
			},
		},
		{
			Field:    "selectedRoles",
			Required: true,
			validate: func(v *Validator, c Candidate) *Diagnostic {
				if len(c.SelectedRoles) == 0 {
					return &Diagnostic{Field: "selectedRoles", Message: "At least one role must be selected", Severity: SeverityError, Code: CodeRequired}
				}

				var invalid []string
				for _, r := range c.SelectedRoles {
					if !v.cfg.KnownRole(r) {
						invalid = append(invalid, string(r))
					}
				}
				if len(invalid) > 0 {
					return &Diagnostic{
						Field:    "selectedRoles",
						Message:  "Invalid roles: " + strings.Join(invalid, ", "),
						Severity: SeverityError,
						Code:     CodeInvalidValue,
					}
				}

				if hasRole(c.SelectedRoles, RoleDonor) && hasRole(c.SelectedRoles, RoleRecipient) {
					return &Diagnostic{
						Field:    "selectedRoles",
						Message:  "Animal cannot be both Donor and Recipient simultaneously",
						Severity: SeverityWarning,
						Code:     CodeRoleConflict,
					}
				}
				return nil
			},
		},
		{
			Field: "customerEmail",
			validate: func(v *Validator, c Candidate) *Diagnostic {
				value := strings.TrimSpace(c.CustomerEmail())
				if value == "" {
					return nil
				}
				if !emailPattern.MatchString(value) {
					return &Diagnostic{Field: "customerEmail", Message: "Invalid email format", Severity: SeverityError, Code: CodeInvalidEmail}
				}
				return nil
			},
		},
		{
			Field: "customerPhone",
			validate: func(v *Validator, c Candidate) *Diagnostic {
				value := strings.TrimSpace(c.CustomerPhone())
				if value == "" {
					return nil
				}
				if !phonePattern.MatchString(value) {
					return &Diagnostic{Field: "customerPhone", Message: "Invalid phone number format", Severity: SeverityWarning, Code: CodeInvalidPhone}
				}
				return nil
			},
		},
	}
}

func hasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
