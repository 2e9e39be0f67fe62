// Package literal coerces CLI-supplied text into typed record values.
//
// Values are parsed with a literal-only grammar (a superset of JSON:
// quoted strings, numbers, booleans, null, and bracket/brace literals with
// literal contents). Text that does not parse as a literal is kept as a
// plain string. No expression is ever evaluated.
package literal

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// InvalidValueError reports text that parsed as a literal but produced a
// value the record model cannot represent.
type InvalidValueError struct {
	Text string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("cannot represent update value %q as record data", e.Text)
}

// errNotLiteral marks parse results outside the literal grammar (YAML
// resolves a few extra scalar types, like timestamps); the raw text is kept
// as a string instead.
var errNotLiteral = errors.New("not a literal value")

// Coerce parses text into a typed value: string, number, boolean, null, or
// a sequence/mapping of further literals. Unparseable text falls back to the
// plain string unchanged.
func Coerce(text string) (any, error) {
	var parsed any
	if err := yaml.Unmarshal([]byte(text), &parsed); err != nil {
		return text, nil
	}
	normalized, err := normalize(parsed)
	if errors.Is(err, errNotLiteral) {
		return text, nil
	}
	if err != nil {
		return nil, &InvalidValueError{Text: text}
	}
	return normalized, nil
}

// normalize validates that a parsed value contains only representable
// literals, recursively.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return val, nil
	case time.Time:
		// Dates are not part of the literal grammar; the caller keeps the
		// original text.
		return nil, errNotLiteral
	case []byte:
		return nil, errNotLiteral
	case []any:
		for i, item := range val {
			norm, err := normalize(item)
			if err != nil {
				return nil, err
			}
			val[i] = norm
		}
		return val, nil
	case map[string]any:
		for key, item := range val {
			norm, err := normalize(item)
			if err != nil {
				return nil, err
			}
			val[key] = norm
		}
		return val, nil
	default:
		return nil, fmt.Errorf("unrepresentable literal type %T", v)
	}
}
