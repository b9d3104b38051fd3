package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Type       EventType
	OccurredAt time.Time
	Title      string
	Notes      string
	Source     Source
}

func (s *Service) Create(ctx context.Context, animalID string, actor Actor, in CreateInput) (RegistryEvent, error) {
	if strings.TrimSpace(animalID) == "" {
		return RegistryEvent{}, ErrInvalidInput
	}
	if in.Type == "" {
		return RegistryEvent{}, ErrInvalidInput
	}
	if in.OccurredAt.IsZero() {
		return RegistryEvent{}, ErrInvalidInput
	}
	if actor.Type == "" || strings.TrimSpace(actor.ID) == "" {
		return RegistryEvent{}, ErrInvalidInput
	}

	now := s.now()

	src := in.Source
	if src == "" {
		src = SourceManual
	}

	e := RegistryEvent{
		ID:         uuid.NewString(),
		AnimalID:   animalID,
		Type:       in.Type,
		OccurredAt: in.OccurredAt,
		RecordedAt: now,
		Title:      strings.TrimSpace(in.Title),
		Notes:      strings.TrimSpace(in.Notes),
		Actor:      actor,
		Source:     src,
		Status:     EventStatusActive,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return RegistryEvent{}, err
	}
	return e, nil
}

// Record es el atajo para eventos de sistema (altas, cambios de rol, etc.):
// occurred = recorded = ahora, source system.
func (s *Service) Record(ctx context.Context, animalID string, actor Actor, typ EventType, title string) (RegistryEvent, error) {
	return s.Create(ctx, animalID, actor, CreateInput{
		Type:       typ,
		OccurredAt: s.now(),
		Title:      title,
		Source:     SourceSystem,
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (RegistryEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RegistryEvent{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string, filter ListFilter) ([]RegistryEvent, error) {
	return s.repo.ListByAnimal(ctx, animalID, filter)
}

// Void marca el evento como voided (no se borra).
func (s *Service) Void(ctx context.Context, id string) (RegistryEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RegistryEvent{}, ErrInvalidInput
	}
	if err := s.repo.Void(ctx, id); err != nil {
		return RegistryEvent{}, err
	}
	return s.repo.GetByID(ctx, id)
}
