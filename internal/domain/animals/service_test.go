package animals

import (
	"context"
	"errors"
	"testing"
	"time"

	"animal-registry/internal/ports/registrylookup"
)

// testRepo: implementación en memoria mínima para tests del servicio.
type testRepo struct {
	byID      map[string]Animal
	createErr error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: make(map[string]Animal)}
}

func (r *testRepo) Create(_ context.Context, a Animal) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(_ context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) GetByRegistryID(_ context.Context, registryID string) (Animal, error) {
	for _, a := range r.byID {
		if a.RegistryID == registryID {
			return a, nil
		}
	}
	return Animal{}, ErrNotFound
}

func (r *testRepo) List(_ context.Context) ([]Animal, error) {
	out := make([]Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) ListRegistryIDs(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a.RegistryID)
	}
	return out, nil
}

func (r *testRepo) ListInternalNumbers(_ context.Context) ([]string, error) {
	var out []string
	for _, a := range r.byID {
		for _, rec := range a.InternalNumberHistory {
			out = append(out, rec.InternalNumber)
		}
	}
	return out, nil
}

func (r *testRepo) Exists(_ context.Context, field registrylookup.Field, value, excludeID string) (bool, error) {
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

// failingLookup simula un registro central caído.
type failingLookup struct{}

func (failingLookup) Exists(context.Context, registrylookup.Field, string, string) (bool, error) {
	return false, errors.New("upstream timeout")
}

var testClock = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo, nil, DefaultConfig())
	svc.now = func() time.Time { return testClock }
	return svc
}

// -------------------------
// Register
// -------------------------

func TestRegister_MintsRegistryIDWhenEmpty(t *testing.T) {
	repo := newTestRepo()
	repo.byID["seed"] = Animal{ID: "seed", RegistryID: "CM-2025-002"}
	svc := newTestService(repo)

	c := validCandidate()
	c.RegistryID = ""
	c.Species = SpeciesCamel
	c.Weight = fptr(550)

	a, verdict, err := svc.Register(context.Background(), c, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v (verdict %+v)", err, verdict)
	}
	if a.RegistryID != "CM-2025-003" {
		t.Fatalf("expected minted CM-2025-003, got %s", a.RegistryID)
	}
	if _, ok := repo.byID[a.ID]; !ok {
		t.Fatal("expected animal persisted")
	}
	if a.CreatedAt != testClock || a.UpdatedAt != testClock || a.RegistrationDate != testClock {
		t.Fatalf("expected clock-stamped timestamps, got %+v", a)
	}
}

func TestRegister_ValidationErrorsBlockPersist(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	c := validCandidate()
	c.Name = ""

	_, verdict, err := svc.Register(context.Background(), c, "user-1")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if d := verdict.Fields["name"]; d.Code != CodeRequired {
		t.Fatalf("expected REQUIRED on name, got %+v", d)
	}
	if len(repo.byID) != 0 {
		t.Fatal("invalid candidate must not be persisted")
	}
}

func TestRegister_WarningsDoNotBlock(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	c := validCandidate()
	c.Weight = fptr(150) // fuera de rango: warning

	a, verdict, err := svc.Register(context.Background(), c, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verdict.Warnings) == 0 {
		t.Fatal("expected a weight warning")
	}
	if _, ok := repo.byID[a.ID]; !ok {
		t.Fatal("expected animal persisted despite warnings")
	}
}

func TestRegister_DuplicateRegistryID(t *testing.T) {
	repo := newTestRepo()
	repo.byID["seed"] = Animal{ID: "seed", RegistryID: "BV-2025-001"}
	svc := newTestService(repo)

	_, verdict, err := svc.Register(context.Background(), validCandidate(), "user-1")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	d := verdict.Fields["registryID"]
	if d.Code != CodeDuplicateValue {
		t.Fatalf("expected DUPLICATE_VALUE, got %+v", d)
	}
	if len(repo.byID) != 1 {
		t.Fatal("duplicate must not be persisted")
	}
}

func TestRegister_DeduplicatesRoles(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	c := validCandidate()
	c.SelectedRoles = []Role{RoleDonor, RoleDonor, RoleReference}

	a, _, err := svc.Register(context.Background(), c, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Roles) != 2 {
		t.Fatalf("expected 2 role assignments, got %d", len(a.Roles))
	}
	for _, r := range a.Roles {
		if !r.IsActive || r.AssignedBy != "user-1" || r.AssignedAt != testClock {
			t.Fatalf("unexpected assignment: %+v", r)
		}
	}
}

func TestRegister_GeneratesInternalNumber(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	c := validCandidate()
	c.GenerateInternalNumber = true

	a, _, err := svc.Register(context.Background(), c, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CurrentInternalNumber == nil || a.CurrentInternalNumber.InternalNumber != "INT-2025-0001" {
		t.Fatalf("expected INT-2025-0001, got %+v", a.CurrentInternalNumber)
	}
	if len(a.InternalNumberHistory) != 1 || !a.InternalNumberHistory[0].IsActive {
		t.Fatalf("unexpected history: %+v", a.InternalNumberHistory)
	}
	if a.InternalNumberHistory[0].Reason != "initial registration" {
		t.Fatalf("unexpected reason: %s", a.InternalNumberHistory[0].Reason)
	}
}

// -------------------------
// Validate (lookup remoto)
// -------------------------

func TestValidate_LookupFailureIsNeverValid(t *testing.T) {
	svc := NewService(newTestRepo(), failingLookup{}, DefaultConfig())
	svc.now = func() time.Time { return testClock }

	_, err := svc.Validate(context.Background(), validCandidate(), "")
	if !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

// -------------------------
// Roles
// -------------------------

func registerOne(t *testing.T, svc *Service, mutate func(*Candidate)) Animal {
	t.Helper()

	c := validCandidate()
	if mutate != nil {
		mutate(&c)
	}
	a, verdict, err := svc.Register(context.Background(), c, "user-1")
	if err != nil {
		t.Fatalf("register: %v (verdict %+v)", err, verdict)
	}
	return a
}

func TestAssignRole_AppendsAndIsIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil)

	a2, _, err := svc.AssignRole(context.Background(), a.ID, RoleReference, "user-2", "genomics panel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a2.Roles) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(a2.Roles))
	}

	// Mismo rol otra vez: no duplica.
	a3, _, err := svc.AssignRole(context.Background(), a.ID, RoleReference, "user-2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a3.Roles) != 2 {
		t.Fatalf("assign must be idempotent, got %d assignments", len(a3.Roles))
	}
}

func TestAssignRole_SireOnFemaleBlocked(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil) // hembra

	_, verdict, err := svc.AssignRole(context.Background(), a.ID, RoleSire, "user-2", "")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if d := verdict.Fields["selectedRoles"]; d.Code != CodeRoleSexMismatch {
		t.Fatalf("expected ROLE_SEX_MISMATCH, got %+v", d)
	}

	// El animal persistido no cambió.
	stored := repo.byID[a.ID]
	if len(stored.Roles) != 1 || stored.Roles[0].Role != RoleDonor {
		t.Fatalf("blocked mutation must not persist, got %+v", stored.Roles)
	}
}

func TestAssignRole_UnknownRole(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil)

	_, _, err := svc.AssignRole(context.Background(), a.ID, Role("Wizard"), "user-2", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRevokeRole_AppendOnlyHistory(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, func(c *Candidate) {
		c.SelectedRoles = []Role{RoleDonor, RoleReference}
	})

	a2, _, err := svc.RevokeRole(context.Background(), a.ID, RoleReference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// La entrada se desactiva, nunca se borra.
	if len(a2.Roles) != 2 {
		t.Fatalf("history must be append-only, got %d entries", len(a2.Roles))
	}
	var revoked *RoleAssignment
	for i := range a2.Roles {
		if a2.Roles[i].Role == RoleReference {
			revoked = &a2.Roles[i]
		}
	}
	if revoked == nil || revoked.IsActive || revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(testClock) {
		t.Fatalf("unexpected revoked entry: %+v", revoked)
	}
	if !HasActiveRole(a2, RoleDonor) || HasActiveRole(a2, RoleReference) {
		t.Fatal("unexpected active roles after revoke")
	}
}

func TestRevokeRole_LastActiveRoleBlocked(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil) // solo Donor

	_, verdict, err := svc.RevokeRole(context.Background(), a.ID, RoleDonor)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if d := verdict.Fields["selectedRoles"]; d.Code != CodeRequired {
		t.Fatalf("expected REQUIRED on selectedRoles, got %+v", d)
	}
	if !HasActiveRole(repo.byID[a.ID], RoleDonor) {
		t.Fatal("blocked revoke must not persist")
	}
}

func TestRevokeRole_NotAssigned(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil)

	_, _, err := svc.RevokeRole(context.Background(), a.ID, RoleLabSample)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// -------------------------
// Números internos
// -------------------------

func TestInternalNumber_AtMostOneActive(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil)

	a2, err := svc.AssignInternalNumber(context.Background(), a.ID, "user-1", "intake")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a2.CurrentInternalNumber.InternalNumber != "INT-2025-0001" {
		t.Fatalf("expected INT-2025-0001, got %s", a2.CurrentInternalNumber.InternalNumber)
	}

	a3, err := svc.AssignInternalNumber(context.Background(), a.ID, "user-1", "renumbering")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// El número cerrado no se reusa: la nueva entrada avanza la secuencia.
	if a3.CurrentInternalNumber.InternalNumber != "INT-2025-0002" {
		t.Fatalf("expected INT-2025-0002, got %s", a3.CurrentInternalNumber.InternalNumber)
	}
	if len(a3.InternalNumberHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(a3.InternalNumberHistory))
	}

	active := 0
	for _, rec := range a3.InternalNumberHistory {
		if rec.IsActive {
			active++
			if rec.ID != a3.CurrentInternalNumber.ID {
				t.Fatal("CurrentInternalNumber must mirror the active entry")
			}
		} else if rec.EndedAt == nil {
			t.Fatalf("closed entry without EndedAt: %+v", rec)
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly 1 active entry, got %d", active)
	}
}

func TestEndInternalNumber(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, func(c *Candidate) { c.GenerateInternalNumber = true })

	a2, err := svc.EndInternalNumber(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a2.CurrentInternalNumber != nil {
		t.Fatalf("expected no current number, got %+v", a2.CurrentInternalNumber)
	}
	if len(a2.InternalNumberHistory) != 1 || a2.InternalNumberHistory[0].IsActive {
		t.Fatalf("history entry must be closed: %+v", a2.InternalNumberHistory)
	}

	// Sin entrada activa: not found.
	if _, err := svc.EndInternalNumber(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// -------------------------
// Estado y transferencias
// -------------------------

func TestChangeStatus(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, nil)

	a2, err := svc.ChangeStatus(context.Background(), a.ID, StatusInactive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a2.Status != StatusInactive || a2.UpdatedAt != testClock {
		t.Fatalf("unexpected animal: %+v", a2)
	}

	if _, err := svc.ChangeStatus(context.Background(), a.ID, Status("FROZEN")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarkTransferred(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, func(c *Candidate) { c.Owner = "owner-1" })

	a2, err := svc.MarkTransferred(context.Background(), a.ID, "owner-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a2.Status != StatusTransferred || a2.Owner != "owner-2" {
		t.Fatalf("unexpected animal: %+v", a2)
	}
}

// -------------------------
// UpdateProfile
// -------------------------

func TestUpdateProfile_PatchSemantics(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	a := registerOne(t, svc, func(c *Candidate) {
		c.Breed = "Angus"
		c.Owner = "owner-1"
	})

	name := "Bella II"
	a2, _, err := svc.UpdateProfile(context.Background(), a.ID, UpdateProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a2.Name != "Bella II" {
		t.Fatalf("expected patched name, got %s", a2.Name)
	}
	// Los campos no enviados no se tocan.
	if a2.Breed != "Angus" || a2.Owner != "owner-1" {
		t.Fatalf("untouched fields must survive: %+v", a2)
	}

	bad := "not-a-date"
	if _, _, err := svc.UpdateProfile(context.Background(), a.ID, UpdateProfileInput{DateOfBirth: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad dob, got %v", err)
	}

	empty := ""
	a3, _, err := svc.UpdateProfile(context.Background(), a.ID, UpdateProfileInput{Name: &empty})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for empty name, got %v (%+v)", err, a3)
	}
}

// -------------------------
// ImportBulk
// -------------------------

func TestImportBulk(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	rows := []ImportRow{
		{RegistryID: "BV-2025-001", Name: "Bella", Age: "3", Roles: "Donor"},
		{RegistryID: "BV-2025-002", Name: "", Age: "4", Roles: "Donor"}, // sin nombre
		{RegistryID: "BV-2025-003", Name: "Luna", Age: "5", Roles: "Recipient"},
	}

	report, err := svc.ImportBulk(context.Background(), rows, "importer", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", report.Imported)
	}
	if report.Summary.WithErrors != 1 || report.Summary.Total != 3 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if report.Results[0].RegistryID != "BV-2025-001" || report.Results[1].RegistryID != "" {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 persisted, got %d", len(repo.byID))
	}
}

func TestImportBulk_InfraFailureAborts(t *testing.T) {
	repo := newTestRepo()
	repo.createErr = errors.New("disk full")
	svc := newTestService(repo)

	rows := []ImportRow{
		{RegistryID: "BV-2025-001", Name: "Bella", Age: "3", Roles: "Donor"},
	}

	_, err := svc.ImportBulk(context.Background(), rows, "importer", nil)
	if err == nil || errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected infra error, got %v", err)
	}
}
