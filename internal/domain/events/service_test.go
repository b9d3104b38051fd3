package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errRepoNotFound = errors.New("repo: not found")

// testRepo: implementación en memoria mínima para tests del servicio.
type testRepo struct {
	byID map[string]RegistryEvent
}

func newTestRepo() *testRepo {
	return &testRepo{byID: make(map[string]RegistryEvent)}
}

func (r *testRepo) Create(_ context.Context, e RegistryEvent) error {
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (RegistryEvent, error) {
	e, ok := r.byID[id]
	if !ok {
		return RegistryEvent{}, errRepoNotFound
	}
	return e, nil
}

func (r *testRepo) ListByAnimal(_ context.Context, animalID string, filter ListFilter) ([]RegistryEvent, error) {
	var out []RegistryEvent
	for _, e := range r.byID {
		if e.AnimalID != animalID {
			continue
		}
		if len(filter.Types) > 0 {
			found := false
			for _, t := range filter.Types {
				if e.Type == t {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Notes), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *testRepo) Void(_ context.Context, id string) error {
	e, ok := r.byID[id]
	if !ok {
		return errRepoNotFound
	}
	e.Status = EventStatusVoided
	r.byID[id] = e
	return nil
}

var testClock = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return testClock }
	return svc
}

var testActor = Actor{Type: ActorTypeStaffUser, ID: "user-1"}

// -------------------------
// Create
// -------------------------

func TestCreate_Defaults(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	occurred := testClock.AddDate(0, 0, -3)
	e, err := svc.Create(context.Background(), "a1", testActor, CreateInput{
		Type:       EventTypeWeightRecorded,
		OccurredAt: occurred,
		Title:      "  Weight check  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.ID == "" {
		t.Fatal("expected generated id")
	}
	if e.Source != SourceManual {
		t.Fatalf("expected manual source by default, got %s", e.Source)
	}
	if e.Status != EventStatusActive {
		t.Fatalf("expected active status, got %s", e.Status)
	}
	if e.Title != "Weight check" {
		t.Fatalf("expected trimmed title, got %q", e.Title)
	}
	if !e.OccurredAt.Equal(occurred) || !e.RecordedAt.Equal(testClock) {
		t.Fatalf("unexpected timestamps: %+v", e)
	}
	if _, ok := repo.byID[e.ID]; !ok {
		t.Fatal("expected event persisted")
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := newTestService(newTestRepo())

	cases := []struct {
		name     string
		animalID string
		actor    Actor
		in       CreateInput
	}{
		{"missing animal", "", testActor, CreateInput{Type: EventTypeNote, OccurredAt: testClock}},
		{"missing type", "a1", testActor, CreateInput{OccurredAt: testClock}},
		{"zero occurred_at", "a1", testActor, CreateInput{Type: EventTypeNote}},
		{"missing actor", "a1", Actor{}, CreateInput{Type: EventTypeNote, OccurredAt: testClock}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.animalID, tc.actor, tc.in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

// -------------------------
// Record
// -------------------------

func TestRecord_SystemShortcut(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	e, err := svc.Record(context.Background(), "a1", Actor{Type: ActorTypeSystem, ID: "registry"}, EventTypeRegistered, "Animal registered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Source != SourceSystem {
		t.Fatalf("expected system source, got %s", e.Source)
	}
	// occurred = recorded = ahora.
	if !e.OccurredAt.Equal(testClock) || !e.RecordedAt.Equal(testClock) {
		t.Fatalf("unexpected timestamps: %+v", e)
	}
}

// -------------------------
// Void
// -------------------------

func TestVoid_MarksWithoutDeleting(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	e, err := svc.Create(context.Background(), "a1", testActor, CreateInput{
		Type:       EventTypeNote,
		OccurredAt: testClock,
		Title:      "wrong animal",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	voided, err := svc.Void(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voided.Status != EventStatusVoided {
		t.Fatalf("expected voided status, got %s", voided.Status)
	}
	if _, ok := repo.byID[e.ID]; !ok {
		t.Fatal("voided event must remain stored")
	}

	if _, err := svc.Void(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
}
