package transfers

import "context"

type Repository interface {
	Create(ctx context.Context, t Transfer) error
	Update(ctx context.Context, t Transfer) error
	GetByID(ctx context.Context, id string) (Transfer, error)
	ListByAnimal(ctx context.Context, animalID string) ([]Transfer, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Transfer, error)
}
