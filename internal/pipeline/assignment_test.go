package pipeline

import (
	"errors"
	"testing"

	"github.com/aidanlsb/magpie/internal/fieldpath"
)

func TestParseAssignment(t *testing.T) {
	t.Run("typed value", func(t *testing.T) {
		a, err := ParseAssignment("general/enabled=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Path.String() != "general/enabled" {
			t.Errorf("path = %q", a.Path.String())
		}
		if a.Value != false {
			t.Errorf("value = %#v, want false", a.Value)
		}
	})

	t.Run("plain string value", func(t *testing.T) {
		a, err := ParseAssignment("general/category=Apps")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Value != "Apps" {
			t.Errorf("value = %#v", a.Value)
		}
	})

	t.Run("value may contain equals", func(t *testing.T) {
		a, err := ParseAssignment("general/notes=a=b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Path.String() != "general/notes" || a.Value != "a=b" {
			t.Errorf("unexpected assignment: %+v", a)
		}
	})

	t.Run("empty value is null", func(t *testing.T) {
		a, err := ParseAssignment("general/notes=")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Value != nil {
			t.Errorf("value = %#v, want nil", a.Value)
		}
	})

	t.Run("missing equals", func(t *testing.T) {
		if _, err := ParseAssignment("general/enabled"); !errors.Is(err, ErrInvalidAssignment) {
			t.Errorf("expected ErrInvalidAssignment, got %v", err)
		}
	})

	t.Run("bad path", func(t *testing.T) {
		if _, err := ParseAssignment("=true"); !errors.Is(err, fieldpath.ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("string form round trips", func(t *testing.T) {
		a, err := ParseAssignment("general/enabled=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.String() != "general/enabled=false" {
			t.Errorf("String() = %q", a.String())
		}
	})
}

func TestParseAssignments(t *testing.T) {
	assignments, err := ParseAssignments([]string{"a=1", "b/c=two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assignments) != 2 || assignments[0].Value != 1 || assignments[1].Value != "two" {
		t.Errorf("unexpected assignments: %+v", assignments)
	}

	if _, err := ParseAssignments([]string{"a=1", "broken"}); err == nil {
		t.Error("expected an error for the malformed argument")
	}
}
