package animals

import (
	"sort"
	"time"
)

// Validator es la raíz de composición de la validación: corre todas las
// reglas por campo y luego las cross-field, y agrega todo en un Verdict.
// No tiene efectos: es función pura del candidato + Config (+ reloj inyectado
// para las reglas que dependen de "hoy", p.ej. fecha futura).
type Validator struct {
	cfg Config
	now func() time.Time
}

func NewValidator(cfg Config) *Validator {
	return &Validator{
		cfg: cfg,
		now: time.Now,
	}
}

// WithClock devuelve una copia con reloj fijo (tests).
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{cfg: v.cfg, now: now}
}

// Validate nunca lanza pánico ni devuelve error: input malformado produce
// diagnósticos, no excepciones.
func (v *Validator) Validate(c Candidate) Verdict {
	verdict := newVerdict()

	for _, rule := range fieldRules() {
		if d := rule.validate(v, c); d != nil {
			verdict.add(*d)
		}
	}

	for _, d := range v.crossFieldDiagnostics(c) {
		verdict.add(d)
	}

	verdict.IsValid = len(verdict.Errors) == 0
	return verdict
}

// ValidateField valida un solo campo (para validación en vivo de formularios).
// Devuelve nil si el campo no tiene regla registrada o si pasa.
func (v *Validator) ValidateField(field string, c Candidate) *Diagnostic {
	for _, rule := range fieldRules() {
		if rule.Field == field {
			return rule.validate(v, c)
		}
	}
	return nil
}

// ValidateBulk valida filas de import en secuencia, sin abortar por filas
// malas. El callback de progreso (opcional) se invoca después de cada fila.
func (v *Validator) ValidateBulk(rows []ImportRow, progress func(done, total int)) []Verdict {
	out := make([]Verdict, 0, len(rows))
	for i, row := range rows {
		out = append(out, v.Validate(CandidateFromRow(row)))
		if progress != nil {
			progress(i+1, len(rows))
		}
	}
	return out
}

// BulkSummary agrega los veredictos de un import masivo.
type BulkSummary struct {
	Total         int
	Valid         int // sin errores ni warnings
	WithWarnings  int // válidas pero con warnings
	WithErrors    int
	ErrorMessages []string // mensajes de error únicos, ordenados
}

// Summarize cuenta filas válidas / con warnings / con errores y junta los
// mensajes de error únicos.
func Summarize(verdicts []Verdict) BulkSummary {
	s := BulkSummary{Total: len(verdicts)}

	seen := map[string]struct{}{}
	for _, verdict := range verdicts {
		switch {
		case !verdict.IsValid:
			s.WithErrors++
		case len(verdict.Warnings) > 0:
			s.WithWarnings++
		default:
			s.Valid++
		}
		for _, d := range verdict.Errors {
			seen[d.Message] = struct{}{}
		}
	}

	s.ErrorMessages = make([]string, 0, len(seen))
	for m := range seen {
		s.ErrorMessages = append(s.ErrorMessages, m)
	}
	sort.Strings(s.ErrorMessages)

	return s
}
