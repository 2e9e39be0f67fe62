package literal

import (
	"reflect"
	"testing"
)

func TestCoerce(t *testing.T) {
	cases := []struct {
		name string
		text string
		want any
	}{
		{"integer", "123", 123},
		{"negative integer", "-7", -7},
		{"float", "1.5", 1.5},
		{"single-quoted string", "'abc'", "abc"},
		{"double-quoted string", `"abc"`, "abc"},
		{"quoted number stays string", "'123'", "123"},
		{"boolean true", "true", true},
		{"boolean false", "false", false},
		{"python-style boolean", "True", true},
		{"null", "null", nil},
		{"tilde null", "~", nil},
		{"plain string fallback", "not-a-literal", "not-a-literal"},
		{"string with spaces", "Install Zoom", "Install Zoom"},
		{"sequence", "[1, 2, 3]", []any{1, 2, 3}},
		{"mixed sequence", `[1, 'two', true]`, []any{1, "two", true}},
		{"mapping", "{category: Apps, enabled: true}", map[string]any{"category": "Apps", "enabled": true}},
		{"nested", "{scope: {all_computers: false}}", map[string]any{"scope": map[string]any{"all_computers": false}}},
		{"empty text is null", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Coerce(%q) = %#v, want %#v", tc.text, got, tc.want)
			}
		})
	}
}

func TestCoerceNonLiteralScalars(t *testing.T) {
	// YAML resolves a few scalar shapes the literal grammar doesn't include;
	// those inputs stay plain strings.
	cases := []string{
		"2021-06-01",
		"2021-06-01T10:00:00Z",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			got, err := Coerce(text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != text {
				t.Errorf("Coerce(%q) = %#v, want the text unchanged", text, got)
			}
		})
	}
}

func TestCoerceIdempotentOnStrings(t *testing.T) {
	got, err := Coerce("not-a-literal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := Coerce(got.(string))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != again {
		t.Errorf("coercion not stable: %v then %v", got, again)
	}
}
