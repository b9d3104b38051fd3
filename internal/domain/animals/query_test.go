package animals

import (
	"testing"
	"time"
)

func sampleHerd(now time.Time) []Animal {
	donor := Animal{
		ID: "a1", RegistryID: "BV-2025-001", Name: "Bella",
		Species: SpeciesBovine, Sex: SexFemale, Status: StatusActive,
		Age: fptr(4),
		Roles: []RoleAssignment{
			{Role: RoleDonor, IsActive: true, AssignedAt: now.AddDate(-1, 0, 0)},
		},
		CurrentInternalNumber: &CurrentInternalNumber{ID: "n1", InternalNumber: "INT-2025-0001", IsActive: true},
		Customer:              &Customer{Name: "Sarah Johnson"},
		CurrentLocation:       "Barn A",
		Purpose:               PurposeBreeding,
		RegistrationDate:      now.AddDate(-1, 0, 0),
		CreatedAt:             now.AddDate(-1, 0, 0),
	}

	// Rol de donante revocado: no debe contar como activo en ningún predicado.
	exDonor := Animal{
		ID: "a2", RegistryID: "BV-2025-002", Name: "Luna",
		Species: SpeciesBovine, Sex: SexFemale, Status: StatusActive,
		Age: fptr(6),
		Roles: []RoleAssignment{
			{Role: RoleDonor, IsActive: false, AssignedAt: now.AddDate(-2, 0, 0), RevokedAt: &now},
			{Role: RoleRecipient, IsActive: true, AssignedAt: now.AddDate(0, -1, 0)},
		},
		CurrentLocation:  "Barn B",
		RegistrationDate: now.AddDate(-2, 0, 0),
		CreatedAt:        now.AddDate(-2, 0, 0),
	}

	sire := Animal{
		ID: "a3", RegistryID: "EQ-2025-001", Name: "Thunder",
		Species: SpeciesEquine, Sex: SexMale, Status: StatusSold,
		Age: fptr(8),
		Roles: []RoleAssignment{
			{Role: RoleSire, IsActive: true, AssignedAt: now.AddDate(-3, 0, 0)},
		},
		GenomicData:      &GenomicData{HasSNPData: true, SNPCount: 54000},
		RegistrationDate: now.AddDate(-3, 0, 0),
		CreatedAt:        now.AddDate(-3, 0, 0),
	}

	fresh := Animal{
		ID: "a4", RegistryID: "CM-2025-001", Name: "Dune",
		Species: SpeciesCamel, Sex: SexFemale, Status: StatusActive,
		Roles: []RoleAssignment{
			{Role: RoleReference, IsActive: true, AssignedAt: now.AddDate(0, 0, -2)},
		},
		WorkflowData:     &WorkflowData{ActiveWorkflows: 1},
		RegistrationDate: now.AddDate(0, 0, -2),
		CreatedAt:        now.AddDate(0, 0, -2),
	}

	return []Animal{donor, exDonor, sire, fresh}
}

// -------------------------
// Filter
// -------------------------

func TestFilter_Conjunctive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := Filter(herd, FilterOptions{
		Species: []Species{SpeciesBovine},
		Status:  []Status{StatusActive},
		Roles:   []Role{RoleDonor},
	})
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("expected only a1, got %+v", got)
	}
}

func TestFilter_RevokedRoleDoesNotMatch(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := Filter(herd, FilterOptions{Roles: []Role{RoleDonor}})
	// a2 tuvo Donor pero revocado: no matchea.
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("expected only a1, got %d results", len(got))
	}
}

func TestFilter_TriStateBooleans(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	yes, no := true, false

	got := Filter(herd, FilterOptions{HasInternalNumber: &yes})
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("expected only a1 with internal number, got %d", len(got))
	}

	got = Filter(herd, FilterOptions{HasInternalNumber: &no})
	if len(got) != 3 {
		t.Fatalf("expected 3 without internal number, got %d", len(got))
	}

	got = Filter(herd, FilterOptions{HasGenomicData: &yes})
	if len(got) != 1 || got[0].ID != "a3" {
		t.Fatalf("expected only a3 with genomic data, got %d", len(got))
	}

	got = Filter(herd, FilterOptions{HasActiveWorkflow: &yes})
	if len(got) != 1 || got[0].ID != "a4" {
		t.Fatalf("expected only a4 with active workflow, got %d", len(got))
	}
}

func TestFilter_CustomerAndLocationSubstring(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := Filter(herd, FilterOptions{Customer: "sarah"})
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("customer match should be case-insensitive substring, got %d", len(got))
	}

	got = Filter(herd, FilterOptions{Location: "barn"})
	if len(got) != 2 {
		t.Fatalf("expected 2 in barns, got %d", len(got))
	}
}

func TestFilter_AgeAndDateRanges(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := Filter(herd, FilterOptions{AgeRange: &AgeRange{Min: 5, Max: 10}})
	// a4 no tiene edad: el rango no lo excluye. a2 (6) y a3 (8) entran.
	if len(got) != 3 {
		t.Fatalf("expected 3 (a2, a3 and ageless a4), got %d", len(got))
	}

	got = Filter(herd, FilterOptions{DateRange: &DateRange{Start: now.AddDate(0, 0, -7), End: now}})
	if len(got) != 1 || got[0].ID != "a4" {
		t.Fatalf("expected only a4 registered this week, got %d", len(got))
	}
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := Filter(herd, FilterOptions{Status: []Status{StatusActive}})
	if len(got) != 3 || got[0].ID != "a1" || got[1].ID != "a2" || got[2].ID != "a4" {
		t.Fatalf("filter must preserve input order, got %+v", got)
	}
}

// -------------------------
// SortBy
// -------------------------

func TestSortBy(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := SortBy(herd, SortByName, SortAsc)
	if got[0].Name != "Bella" || got[3].Name != "Thunder" {
		t.Fatalf("unexpected name order: %s .. %s", got[0].Name, got[3].Name)
	}

	got = SortBy(herd, SortByAge, SortDesc)
	if got[0].ID != "a3" {
		t.Fatalf("expected oldest first, got %s", got[0].ID)
	}
	// Sin edad cuenta como 0: último en desc.
	if got[3].ID != "a4" {
		t.Fatalf("expected ageless last, got %s", got[3].ID)
	}

	// Clave desconocida cae a registry ID.
	got = SortBy(herd, SortKey("bogus"), SortAsc)
	if got[0].RegistryID != "BV-2025-001" || got[3].RegistryID != "EQ-2025-001" {
		t.Fatalf("unknown key must fall back to registry ID order, got %s .. %s", got[0].RegistryID, got[3].RegistryID)
	}

	// El input no se muta.
	if herd[0].ID != "a1" || herd[3].ID != "a4" {
		t.Fatal("SortBy must not mutate its input")
	}
}

// -------------------------
// Stats
// -------------------------

func TestStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	s := Stats(DefaultConfig(), herd, now)

	if s.Total != 4 || s.Active != 3 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.BySpecies[SpeciesBovine] != 2 || s.BySpecies[SpeciesCamel] != 1 || s.BySpecies[SpeciesEquine] != 1 {
		t.Fatalf("unexpected species counts: %+v", s.BySpecies)
	}
	// Los mapas vienen pre-sembrados en cero para todas las claves conocidas.
	if _, ok := s.BySpecies[SpeciesSwine]; !ok {
		t.Fatal("expected zero-seeded entry for SWINE")
	}
	if s.BySpecies[SpeciesSwine] != 0 {
		t.Fatalf("expected 0 swine, got %d", s.BySpecies[SpeciesSwine])
	}

	// ByRole cuenta solo asignaciones activas: el Donor revocado de a2 no suma.
	if s.ByRole[RoleDonor] != 1 {
		t.Fatalf("expected 1 active donor, got %d", s.ByRole[RoleDonor])
	}
	if s.ByRole[RoleRecipient] != 1 || s.ByRole[RoleSire] != 1 || s.ByRole[RoleReference] != 1 {
		t.Fatalf("unexpected role counts: %+v", s.ByRole)
	}
	if s.ByRole[RoleLabSample] != 0 {
		t.Fatalf("expected 0 lab samples, got %d", s.ByRole[RoleLabSample])
	}

	if s.WithInternalNumbers != 1 || s.WithActiveWorkflows != 1 || s.WithGenomicData != 1 {
		t.Fatalf("unexpected flag counts: %+v", s)
	}
	if s.RecentlyAdded != 1 {
		t.Fatalf("expected 1 recently added, got %d", s.RecentlyAdded)
	}
}

// -------------------------
// Warnings
// -------------------------

func TestWarnings(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	stale := now.AddDate(0, -8, 0)
	overdue := now.AddDate(0, 0, -3)

	a := Animal{
		Status: StatusActive,
		Roles: []RoleAssignment{
			{Role: RoleReference, IsActive: true},
		},
		ActivityData: &ActivityData{TotalRecords: 3, LastActivity: &stale},
		WorkflowData: &WorkflowData{Current: &WorkflowSummary{Name: "Genotyping", DueDate: &overdue}},
	}

	got := Warnings(a, now)
	want := []string{
		"Missing internal number",
		"No recent activity (6+ months)",
		"Reference animal missing genomic data",
		"Overdue workflow task",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d warnings, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("warning %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	// Animal sano: sin warnings.
	healthy := Animal{
		Status:                StatusActive,
		CurrentInternalNumber: &CurrentInternalNumber{InternalNumber: "INT-2025-0001", IsActive: true},
	}
	if got := Warnings(healthy, now); len(got) != 0 {
		t.Fatalf("expected no warnings, got %v", got)
	}
}

// -------------------------
// ForModule
// -------------------------

func TestForModule(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	herd := sampleHerd(now)

	got := ForModule(herd, "flushing")
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("flushing expects active donors, got %d", len(got))
	}

	// a3 es Sire pero SOLD: breeding pide estado activo.
	got = ForModule(herd, "breeding")
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("breeding expects active donors/sires, got %d", len(got))
	}

	got = ForModule(herd, "vaccination")
	if len(got) != 3 {
		t.Fatalf("vaccination expects all active animals, got %d", len(got))
	}

	// Módulo desconocido: colección completa.
	got = ForModule(herd, "astrology")
	if len(got) != len(herd) {
		t.Fatalf("unknown module must return everything, got %d", len(got))
	}
}
