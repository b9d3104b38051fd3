package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"animal-registry/internal/domain/animals"
	"animal-registry/internal/ports/registrylookup"
)

// ErrNotFound reusa el sentinel del dominio: los handlers mapean por errors.Is.
var ErrNotFound = animals.ErrNotFound

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; !exists {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) GetByRegistryID(ctx context.Context, registryID string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.RegistryID == registryID {
			return a, nil
		}
	}
	return animals.Animal{}, ErrNotFound
}

func (r *animalRepo) List(ctx context.Context) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].RegistryID < out[j].RegistryID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *animalRepo) ListRegistryIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a.RegistryID)
	}
	return out, nil
}

func (r *animalRepo) ListInternalNumbers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byID))
	for _, a := range r.byID {
		// El historial completo cuenta: un número cerrado no se reusa.
		for _, rec := range a.InternalNumberHistory {
			out = append(out, rec.InternalNumber)
		}
	}
	return out, nil
}

func (r *animalRepo) Exists(ctx context.Context, field registrylookup.Field, value, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	for _, a := range r.byID {
		if a.ID == excludeID {
			continue
		}
		switch field {
		case registrylookup.FieldRegistryID:
			if a.RegistryID == value {
				return true, nil
			}
		case registrylookup.FieldMicrochip:
			if a.Microchip != "" && a.Microchip == value {
				return true, nil
			}
		}
	}
	return false, nil
}
