package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aidanlsb/magpie/internal/fieldpath"
	"github.com/aidanlsb/magpie/internal/literal"
)

// ErrInvalidAssignment indicates an update argument that is not of the form
// path=value.
var ErrInvalidAssignment = errors.New("invalid update assignment")

// Assignment is one parsed path=value update to apply to a record's fields.
type Assignment struct {
	Path  fieldpath.Path
	Value any

	// raw keeps the original value text for summaries and the audit log.
	raw string
}

// ParseAssignment parses a "path=value" argument. The value text is coerced
// into a typed literal; text that is not a literal stays a plain string.
func ParseAssignment(arg string) (Assignment, error) {
	key, rawValue, found := strings.Cut(arg, "=")
	if !found {
		return Assignment{}, fmt.Errorf("%w: %q (use path=value)", ErrInvalidAssignment, arg)
	}
	path, err := fieldpath.Parse(key)
	if err != nil {
		return Assignment{}, err
	}
	value, err := literal.Coerce(rawValue)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Path: path, Value: value, raw: rawValue}, nil
}

// ParseAssignments parses a batch of update arguments, preserving order.
func ParseAssignments(args []string) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(args))
	for _, arg := range args {
		a, err := ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// String returns the assignment in its original path=value form.
func (a Assignment) String() string {
	return a.Path.String() + "=" + a.raw
}
