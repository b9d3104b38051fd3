package animals

import (
	"context"

	"animal-registry/internal/ports/registrylookup"
)

// Repository es el store externo de animales. El core no asume nada sobre
// dónde viven los registros; recibe y devuelve structs planos.
// Exists hace que cualquier Repository sirva también como
// registrylookup.Lookup (el chequeo local de unicidad).
type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	GetByRegistryID(ctx context.Context, registryID string) (Animal, error)
	List(ctx context.Context) ([]Animal, error)

	// Snapshots para el generador de identificadores.
	ListRegistryIDs(ctx context.Context) ([]string, error)
	ListInternalNumbers(ctx context.Context) ([]string, error)

	Exists(ctx context.Context, field registrylookup.Field, value, excludeID string) (bool, error)
}
