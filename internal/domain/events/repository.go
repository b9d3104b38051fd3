package events

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e RegistryEvent) error
	GetByID(ctx context.Context, id string) (RegistryEvent, error)
	ListByAnimal(ctx context.Context, animalID string, filter ListFilter) ([]RegistryEvent, error)
	Void(ctx context.Context, id string) error
}

type ListFilter struct {
	Types []EventType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}
