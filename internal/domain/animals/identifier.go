package animals

import (
	"fmt"
	"regexp"
	"strconv"
)

// Formato de secuencia: PREFIX-YYYY-NNN (registry) o INT-YYYY-NNNN (interno).
// El generador es una función pura de sus inputs: no hay contador global.
// El caller es dueño del snapshot de valores existentes; la unicidad real se
// re-chequea contra el store antes de persistir (la ventana entre lectura y
// escritura es un tradeoff explícito del diseño).

const internalNumberPrefix = "INT"

// SequenceFormat describe un namespace de secuencia (prefijo + año + ancho).
type SequenceFormat struct {
	Prefix string
	Year   int
	Width  int
}

// NextInSequence devuelve el siguiente valor libre del namespace.
// Recorre los valores existentes que matchean ^prefix-year-(\d+)$, toma el
// sufijo máximo (0 si ninguno matchea) y emite max+1 con zero-padding.
// Valores malformados se ignoran; nunca falla.
func NextInSequence(f SequenceFormat, existing []string) string {
	pattern := regexp.MustCompile(fmt.Sprintf(`^%s-%d-(\d+)$`, regexp.QuoteMeta(f.Prefix), f.Year))

	maxNumber := 0
	for _, v := range existing {
		m := pattern.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxNumber {
			maxNumber = n
		}
	}

	return fmt.Sprintf("%s-%d-%0*d", f.Prefix, f.Year, f.Width, maxNumber+1)
}

// NextRegistryID genera el siguiente registry ID para (especie, año).
// Especies desconocidas usan prefijo "XX" (el validador lo marcará después).
func NextRegistryID(cfg Config, sp Species, year int, existingIDs []string) string {
	prefix := "XX"
	if sc, ok := cfg.SpeciesFor(sp); ok {
		prefix = sc.Prefix
	}
	return NextInSequence(SequenceFormat{Prefix: prefix, Year: year, Width: 3}, existingIDs)
}

// NextInternalNumber genera el siguiente número interno del año.
func NextInternalNumber(year int, existingNumbers []string) string {
	return NextInSequence(SequenceFormat{Prefix: internalNumberPrefix, Year: year, Width: 4}, existingNumbers)
}
