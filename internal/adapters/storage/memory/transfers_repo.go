package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"animal-registry/internal/domain/transfers"
)

type transferRepo struct {
	mu   sync.RWMutex
	byID map[string]transfers.Transfer
}

func NewTransferRepo() transfers.Repository {
	return &transferRepo{
		byID: make(map[string]transfers.Transfer),
	}
}

func (r *transferRepo) Create(ctx context.Context, t transfers.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("transfer id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("transfer already exists")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *transferRepo) Update(ctx context.Context, t transfers.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("transfer id required")
	}
	if _, exists := r.byID[t.ID]; !exists {
		return ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *transferRepo) GetByID(ctx context.Context, id string) (transfers.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return transfers.Transfer{}, ErrNotFound
	}
	return t, nil
}

func (r *transferRepo) ListByAnimal(ctx context.Context, animalID string) ([]transfers.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transfers.Transfer, 0)
	for _, t := range r.byID {
		if t.AnimalID == animalID {
			out = append(out, t)
		}
	}

	sortTransfers(out)
	return out, nil
}

func (r *transferRepo) ListByOwner(ctx context.Context, ownerID string) ([]transfers.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transfers.Transfer, 0)
	for _, t := range r.byID {
		if t.FromOwnerID == ownerID || t.ToOwnerID == ownerID {
			out = append(out, t)
		}
	}

	sortTransfers(out)
	return out, nil
}

// Orden estable por created_at asc (solo para consistencia en dev)
func sortTransfers(items []transfers.Transfer) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
