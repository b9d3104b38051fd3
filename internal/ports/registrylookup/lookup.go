package registrylookup

import "context"

// Field es uno de los campos globalmente únicos del registro.
type Field string

const (
	FieldRegistryID Field = "registryID"
	FieldMicrochip  Field = "microchip"
)

// Lookup responde si algún OTRO registro ya tiene ese valor para el campo,
// excluyendo excludeID (para ediciones). La implementación puede ser el
// propio store local o un registro central remoto.
type Lookup interface {
	Exists(ctx context.Context, field Field, value, excludeID string) (bool, error)
}
