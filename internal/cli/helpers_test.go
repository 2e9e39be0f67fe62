package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aidanlsb/magpie/internal/cache"
	"github.com/aidanlsb/magpie/internal/fieldpath"
	"github.com/aidanlsb/magpie/internal/literal"
	"github.com/aidanlsb/magpie/internal/pipeline"
	"github.com/aidanlsb/magpie/internal/predicate"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"no records", pipeline.ErrNoRecords, ErrNoRecordsSelected},
		{"wrapped no records", fmt.Errorf("context: %w", pipeline.ErrNoRecords), ErrNoRecordsSelected},
		{"confirmation denied", pipeline.ErrConfirmationDenied, ErrConfirmationDenied},
		{"bad assignment", pipeline.ErrInvalidAssignment, ErrInvalidInput},
		{"malformed path", fieldpath.ErrMalformed, ErrMalformedPath},
		{"unsupported path", fieldpath.ErrUnsupported, ErrUnsupportedPath},
		{"bad filter", predicate.ErrInvalidFilter, ErrInvalidFilter},
		{"bad value", &literal.InvalidValueError{Text: "x"}, ErrInvalidValue},
		{"offline mutation", cache.ErrOffline, ErrCacheError},
		{"anything else", errors.New("connection refused"), ErrServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyError(tc.err); got != tc.want {
				t.Errorf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestRenderValue(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "Apps", "Apps"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"null", nil, "null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderValue(tc.value); got != tc.want {
				t.Errorf("renderValue(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}

	t.Run("mapping renders as yaml", func(t *testing.T) {
		got := renderValue(map[string]any{"enabled": true})
		if got != "enabled: true" {
			t.Errorf("renderValue = %q", got)
		}
	})
}

func TestJSONValue(t *testing.T) {
	got := jsonValue(fieldpath.Absent)
	marker, ok := got.(map[string]any)
	if !ok || marker["absent"] != true {
		t.Errorf("expected absent marker, got %#v", got)
	}
	if jsonValue(nil) != nil {
		t.Error("null must stay null, not become a marker")
	}
	if jsonValue("x") != "x" {
		t.Error("plain values pass through")
	}
}
