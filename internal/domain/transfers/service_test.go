package transfers

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errRepoNotFound = errors.New("repo: not found")

// testRepo: implementación en memoria mínima para tests del servicio.
type testRepo struct {
	byID map[string]Transfer
}

func newTestRepo() *testRepo {
	return &testRepo{byID: make(map[string]Transfer)}
}

func (r *testRepo) Create(_ context.Context, t Transfer) error {
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) Update(_ context.Context, t Transfer) error {
	if _, ok := r.byID[t.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Transfer, error) {
	t, ok := r.byID[id]
	if !ok {
		return Transfer{}, errRepoNotFound
	}
	return t, nil
}

func (r *testRepo) ListByAnimal(_ context.Context, animalID string) ([]Transfer, error) {
	var out []Transfer
	for _, t := range r.byID {
		if t.AnimalID == animalID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *testRepo) ListByOwner(_ context.Context, ownerID string) ([]Transfer, error) {
	var out []Transfer
	for _, t := range r.byID {
		if t.FromOwnerID == ownerID || t.ToOwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

var testClock = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return testClock }
	return svc
}

func mustRequest(t *testing.T, svc *Service, animalID, from, to string) Transfer {
	t.Helper()

	tr, err := svc.Request(context.Background(), RequestInput{
		AnimalID:    animalID,
		FromOwnerID: from,
		ToOwnerID:   to,
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return tr
}

// -------------------------
// Request
// -------------------------

func TestRequest_CreatesOpenTransfer(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	tr := mustRequest(t, svc, "a1", "owner-1", "owner-2")

	if tr.Status != StatusRequested || !tr.IsOpen() {
		t.Fatalf("expected open request, got %+v", tr)
	}
	if tr.ResolvedAt != nil {
		t.Fatal("new request must not be resolved")
	}
	if tr.CreatedAt != testClock || tr.UpdatedAt != testClock {
		t.Fatalf("expected clock-stamped timestamps, got %+v", tr)
	}
}

func TestRequest_InvalidInput(t *testing.T) {
	svc := newTestService(newTestRepo())

	cases := []RequestInput{
		{AnimalID: "", FromOwnerID: "o1", ToOwnerID: "o2"},
		{AnimalID: "a1", FromOwnerID: "", ToOwnerID: "o2"},
		{AnimalID: "a1", FromOwnerID: "o1", ToOwnerID: ""},
		{AnimalID: "a1", FromOwnerID: "o1", ToOwnerID: "o1"}, // a sí mismo
	}
	for i, in := range cases {
		if _, err := svc.Request(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestRequest_DeduplicatesOpenRequests(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	first := mustRequest(t, svc, "a1", "owner-1", "owner-2")

	second, err := svc.Request(context.Background(), RequestInput{
		AnimalID:    "a1",
		FromOwnerID: "owner-1",
		ToOwnerID:   "owner-2",
		Notes:       "updated note",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected reuse of open request %s, got %s", first.ID, second.ID)
	}
	if second.Notes != "updated note" {
		t.Fatalf("expected notes updated, got %q", second.Notes)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 stored transfer, got %d", len(repo.byID))
	}
}

func TestRequest_ResolvedDoesNotBlockNew(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	first := mustRequest(t, svc, "a1", "owner-1", "owner-2")
	if _, err := svc.Decline(context.Background(), first.ID, "owner-2"); err != nil {
		t.Fatalf("decline: %v", err)
	}

	second := mustRequest(t, svc, "a1", "owner-1", "owner-2")
	if second.ID == first.ID {
		t.Fatal("resolved request must not be reused")
	}
	if second.Status != StatusRequested {
		t.Fatalf("expected fresh open request, got %+v", second)
	}
}

// -------------------------
// Accept / Decline / Cancel
// -------------------------

func TestAccept(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	tr := mustRequest(t, svc, "a1", "owner-1", "owner-2")

	// Solo el destinatario puede aceptar.
	if _, err := svc.Accept(context.Background(), tr.ID, "owner-3"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	accepted, err := svc.Accept(context.Background(), tr.ID, "owner-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != StatusAccepted || accepted.ResolvedAt == nil {
		t.Fatalf("unexpected transfer: %+v", accepted)
	}

	// Aceptar de nuevo: idempotente.
	again, err := svc.Accept(context.Background(), tr.ID, "owner-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", again.Status)
	}
}

func TestAccept_AfterDeclineIsBadState(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	tr := mustRequest(t, svc, "a1", "owner-1", "owner-2")

	if _, err := svc.Decline(context.Background(), tr.ID, "owner-2"); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if _, err := svc.Accept(context.Background(), tr.ID, "owner-2"); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestAccept_UnknownTransfer(t *testing.T) {
	svc := newTestService(newTestRepo())

	if _, err := svc.Accept(context.Background(), "missing", "owner-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancel_OnlyRequester(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	tr := mustRequest(t, svc, "a1", "owner-1", "owner-2")

	if _, err := svc.Cancel(context.Background(), tr.ID, "owner-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), tr.ID, "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != StatusCancelled || cancelled.ResolvedAt == nil {
		t.Fatalf("unexpected transfer: %+v", cancelled)
	}

	// Cancelar de nuevo: idempotente.
	if _, err := svc.Cancel(context.Background(), tr.ID, "owner-1"); err != nil {
		t.Fatalf("cancel must be idempotent, got %v", err)
	}
}

// -------------------------
// Listados
// -------------------------

func TestListByOwner_BothDirections(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	mustRequest(t, svc, "a1", "owner-1", "owner-2")
	mustRequest(t, svc, "a2", "owner-3", "owner-1")
	mustRequest(t, svc, "a3", "owner-2", "owner-3")

	got, err := svc.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected transfers in both directions, got %d", len(got))
	}
}
