package animals

import "testing"

func TestNextInSequence_EmptyNamespace(t *testing.T) {
	got := NextInSequence(SequenceFormat{Prefix: "BV", Year: 2025, Width: 3}, nil)
	if got != "BV-2025-001" {
		t.Fatalf("expected BV-2025-001, got %s", got)
	}
}

func TestNextInSequence_MaxPlusOne(t *testing.T) {
	existing := []string{"BV-2025-001", "BV-2025-003"}
	got := NextInSequence(SequenceFormat{Prefix: "BV", Year: 2025, Width: 3}, existing)
	// Huecos no se rellenan: max+1.
	if got != "BV-2025-004" {
		t.Fatalf("expected BV-2025-004, got %s", got)
	}
}

func TestNextInSequence_IgnoresOtherNamespacesAndGarbage(t *testing.T) {
	existing := []string{
		"BV-2024-099",  // otro año
		"EQ-2025-050",  // otro prefijo
		"BV-2025-abc",  // malformado
		"not-an-id",    // basura
		"BV-2025-0002", // sufijo con más dígitos: igual cuenta como 2
	}
	got := NextInSequence(SequenceFormat{Prefix: "BV", Year: 2025, Width: 3}, existing)
	if got != "BV-2025-003" {
		t.Fatalf("expected BV-2025-003, got %s", got)
	}
}

func TestNextInSequence_WidthOverflow(t *testing.T) {
	existing := []string{"BV-2025-999"}
	got := NextInSequence(SequenceFormat{Prefix: "BV", Year: 2025, Width: 3}, existing)
	// %0*d no trunca: el sufijo simplemente crece.
	if got != "BV-2025-1000" {
		t.Fatalf("expected BV-2025-1000, got %s", got)
	}
}

func TestNextRegistryID_KnownAndUnknownSpecies(t *testing.T) {
	cfg := DefaultConfig()

	got := NextRegistryID(cfg, SpeciesCamel, 2025, []string{"CM-2025-007"})
	if got != "CM-2025-008" {
		t.Fatalf("expected CM-2025-008, got %s", got)
	}

	got = NextRegistryID(cfg, Species("DRAGON"), 2025, nil)
	if got != "XX-2025-001" {
		t.Fatalf("expected XX-2025-001 for unknown species, got %s", got)
	}
}

func TestNextInternalNumber(t *testing.T) {
	got := NextInternalNumber(2025, []string{"INT-2025-0001", "INT-2025-0041", "INT-2024-9999"})
	if got != "INT-2025-0042" {
		t.Fatalf("expected INT-2025-0042, got %s", got)
	}

	got = NextInternalNumber(2025, nil)
	if got != "INT-2025-0001" {
		t.Fatalf("expected INT-2025-0001, got %s", got)
	}
}

func TestNextInSequence_Deterministic(t *testing.T) {
	existing := []string{"BV-2025-010", "BV-2025-002"}
	f := SequenceFormat{Prefix: "BV", Year: 2025, Width: 3}

	first := NextInSequence(f, existing)
	second := NextInSequence(f, existing)
	if first != second {
		t.Fatalf("generator must be pure: %s != %s", first, second)
	}
}
