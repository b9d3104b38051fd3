package animals

import (
	"context"
	"errors"
	"testing"

	"animal-registry/internal/ports/registrylookup"
)

// fakeLookup responde siempre lo mismo y graba la última consulta.
type fakeLookup struct {
	exists bool
	err    error

	lastField   registrylookup.Field
	lastValue   string
	lastExclude string
}

func (f *fakeLookup) Exists(_ context.Context, field registrylookup.Field, value, excludeID string) (bool, error) {
	f.lastField = field
	f.lastValue = value
	f.lastExclude = excludeID
	return f.exists, f.err
}

func TestCheckUnique_Available(t *testing.T) {
	lookup := &fakeLookup{exists: false}

	d, err := CheckUnique(context.Background(), lookup, registrylookup.FieldRegistryID, "BV-2025-001", "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != nil {
		t.Fatalf("expected no diagnostic, got %+v", d)
	}
	if lookup.lastValue != "BV-2025-001" || lookup.lastExclude != "a1" {
		t.Fatalf("unexpected query: %+v", lookup)
	}
}

func TestCheckUnique_Duplicate(t *testing.T) {
	lookup := &fakeLookup{exists: true}

	d, err := CheckUnique(context.Background(), lookup, registrylookup.FieldRegistryID, "BV-2025-001", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil || d.Code != CodeDuplicateValue || d.Severity != SeverityError {
		t.Fatalf("expected DUPLICATE_VALUE error, got %+v", d)
	}
	if d.Message != "Registry ID already exists" {
		t.Fatalf("unexpected message: %s", d.Message)
	}
	if d.Field != "registryID" {
		t.Fatalf("unexpected field: %s", d.Field)
	}
}

func TestCheckUnique_MicrochipLabel(t *testing.T) {
	lookup := &fakeLookup{exists: true}

	d, err := CheckUnique(context.Background(), lookup, registrylookup.FieldMicrochip, "985112001234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil || d.Message != "Microchip already exists" {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
}

func TestCheckUnique_LookupFailure(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}

	d, err := CheckUnique(context.Background(), lookup, registrylookup.FieldRegistryID, "BV-2025-001", "")
	// Fallo de lookup jamás se interpreta como válido ni como duplicado.
	if d != nil {
		t.Fatalf("expected no diagnostic on failure, got %+v", d)
	}
	if !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

func TestCheckUnique_EmptyValueSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("must not be called")}

	d, err := CheckUnique(context.Background(), lookup, registrylookup.FieldMicrochip, "  ", "")
	if err != nil || d != nil {
		t.Fatalf("empty value must skip the lookup, got d=%+v err=%v", d, err)
	}
	if lookup.lastValue != "" {
		t.Fatal("lookup must not be queried for empty values")
	}
}

func TestCheckUnique_UnsupportedField(t *testing.T) {
	lookup := &fakeLookup{}

	_, err := CheckUnique(context.Background(), lookup, registrylookup.Field("name"), "Bella", "")
	if err == nil {
		t.Fatal("expected error for unsupported field")
	}
}
