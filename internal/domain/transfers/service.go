package transfers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
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

type RequestInput struct {
	AnimalID    string
	FromOwnerID string
	ToOwnerID   string
	Notes       string
}

// Request crea una solicitud de traspaso. Si ya existe una solicitud
// abierta para el mismo (animal, from, to), se reutiliza en vez de
// duplicar; solicitudes resueltas (accepted/declined/cancelled) no
// bloquean una nueva.
func (s *Service) Request(ctx context.Context, in RequestInput) (Transfer, error) {
	animalID := strings.TrimSpace(in.AnimalID)
	fromID := strings.TrimSpace(in.FromOwnerID)
	toID := strings.TrimSpace(in.ToOwnerID)

	if animalID == "" || fromID == "" || toID == "" {
		return Transfer{}, ErrInvalidInput
	}
	if fromID == toID {
		return Transfer{}, ErrInvalidInput
	}

	now := s.now()

	// 1) Buscar solicitudes existentes para (animalID, fromID, toID)
	existing, allMatches, err := s.findLatestMatch(ctx, animalID, fromID, toID)
	if err == nil && existing.ID != "" && existing.IsOpen() {
		// 2) Deduplicar: cancelar cualquier otra solicitud abierta que matchee
		_ = s.cancelOtherMatches(ctx, existing.ID, allMatches, now)

		// 3) Actualizar notas del winner (permite corregir sin endpoint extra)
		if strings.TrimSpace(in.Notes) != "" {
			existing.Notes = strings.TrimSpace(in.Notes)
		}
		existing.UpdatedAt = now

		if err := s.repo.Update(ctx, existing); err != nil {
			return Transfer{}, err
		}
		return existing, nil
	}

	t := Transfer{
		ID:          uuid.NewString(),
		AnimalID:    animalID,
		FromOwnerID: fromID,
		ToOwnerID:   toID,
		Status:      StatusRequested,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
		ResolvedAt:  nil,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Transfer{}, err
	}
	return t, nil
}

func (s *Service) Accept(ctx context.Context, transferID, toOwnerID string) (Transfer, error) {
	transferID = strings.TrimSpace(transferID)
	toOwnerID = strings.TrimSpace(toOwnerID)

	if transferID == "" || toOwnerID == "" {
		return Transfer{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return Transfer{}, ErrNotFound
	}

	if t.ToOwnerID != toOwnerID {
		return Transfer{}, ErrForbidden
	}

	// Idempotente
	if t.Status == StatusAccepted {
		return t, nil
	}
	if t.Status != StatusRequested {
		return Transfer{}, ErrBadState
	}

	now := s.now()
	t.Status = StatusAccepted
	t.UpdatedAt = now
	t.ResolvedAt = &now

	if err := s.repo.Update(ctx, t); err != nil {
		return Transfer{}, err
	}
	return t, nil
}

func (s *Service) Decline(ctx context.Context, transferID, toOwnerID string) (Transfer, error) {
	transferID = strings.TrimSpace(transferID)
	toOwnerID = strings.TrimSpace(toOwnerID)

	if transferID == "" || toOwnerID == "" {
		return Transfer{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return Transfer{}, ErrNotFound
	}

	if t.ToOwnerID != toOwnerID {
		return Transfer{}, ErrForbidden
	}

	// Idempotente
	if t.Status == StatusDeclined {
		return t, nil
	}
	if t.Status != StatusRequested {
		return Transfer{}, ErrBadState
	}

	now := s.now()
	t.Status = StatusDeclined
	t.UpdatedAt = now
	t.ResolvedAt = &now

	if err := s.repo.Update(ctx, t); err != nil {
		return Transfer{}, err
	}
	return t, nil
}

func (s *Service) Cancel(ctx context.Context, transferID, fromOwnerID string) (Transfer, error) {
	transferID = strings.TrimSpace(transferID)
	fromOwnerID = strings.TrimSpace(fromOwnerID)

	if transferID == "" || fromOwnerID == "" {
		return Transfer{}, ErrInvalidInput
	}

	t, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return Transfer{}, ErrNotFound
	}

	if t.FromOwnerID != fromOwnerID {
		return Transfer{}, ErrForbidden
	}

	// Idempotente
	if t.Status == StatusCancelled {
		return t, nil
	}
	if t.Status != StatusRequested {
		return Transfer{}, ErrBadState
	}

	now := s.now()
	t.Status = StatusCancelled
	t.UpdatedAt = now
	t.ResolvedAt = &now

	if err := s.repo.Update(ctx, t); err != nil {
		return Transfer{}, err
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Transfer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Transfer{}, ErrInvalidInput
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Transfer{}, ErrNotFound
	}
	return t, nil
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Transfer, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByAnimal(ctx, animalID)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Transfer, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) findLatestMatch(ctx context.Context, animalID, fromID, toID string) (Transfer, []Transfer, error) {
	items, err := s.repo.ListByAnimal(ctx, animalID)
	if err != nil {
		return Transfer{}, nil, err
	}

	matches := make([]Transfer, 0)
	var winner Transfer
	hasWinner := false

	for _, t := range items {
		if t.AnimalID != animalID || t.FromOwnerID != fromID || t.ToOwnerID != toID {
			continue
		}
		matches = append(matches, t)

		if !hasWinner || t.UpdatedAt.After(winner.UpdatedAt) {
			winner = t
			hasWinner = true
		}
	}

	if !hasWinner {
		return Transfer{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) cancelOtherMatches(ctx context.Context, winnerID string, matches []Transfer, now time.Time) error {
	for _, t := range matches {
		if t.ID == "" || t.ID == winnerID {
			continue
		}
		if !t.IsOpen() {
			continue
		}
		t.Status = StatusCancelled
		t.UpdatedAt = now
		t.ResolvedAt = &now
		_ = s.repo.Update(ctx, t) // best-effort (MVP)
	}
	return nil
}
