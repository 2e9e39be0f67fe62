// Package fieldpath reads and writes nested record fields addressed by
// slash-delimited path expressions like "scope/all_computers".
//
// Records are trees of mappings (string keys), sequences, and scalars.
// Mapping nodes are traversed by key. Sequence nodes are transparent on
// reads: the remaining path is resolved against each element in order and
// the first hit wins. Sequences are never writable containers.
package fieldpath

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins path segments in the user-facing expression syntax.
const Separator = "/"

var (
	// ErrMalformed indicates an empty or syntactically invalid path expression.
	ErrMalformed = errors.New("malformed path")

	// ErrUnsupported indicates a write through a read-only traversal point
	// (a sequence node).
	ErrUnsupported = errors.New("unsupported path")
)

// Path is an ordered sequence of segments. A Path is stateless and may be
// applied to any record tree.
type Path struct {
	segments []string
}

// Parse splits a slash-delimited expression into a Path.
// Empty expressions and empty segments are rejected.
func Parse(expr string) (Path, error) {
	if strings.TrimSpace(expr) == "" {
		return Path{}, fmt.Errorf("%w: empty expression", ErrMalformed)
	}
	segments := strings.Split(expr, Separator)
	for _, seg := range segments {
		if seg == "" {
			return Path{}, fmt.Errorf("%w: empty segment in %q", ErrMalformed, expr)
		}
	}
	return Path{segments: segments}, nil
}

// MustParse is Parse for compile-time-constant expressions; it panics on error.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the expression form of the path.
func (p Path) String() string {
	return strings.Join(p.segments, Separator)
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsZero reports whether the path was never parsed.
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}

// absentValue is the unexported type behind Absent, so no record value can
// collide with it.
type absentValue struct{}

func (absentValue) String() string { return "<absent>" }

// Absent is the distinguished result of resolving a path that is not present
// in a record. It is distinguishable from an explicit null.
var Absent any = absentValue{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}

// Resolve walks the path through tree and returns the value found, or Absent
// if any mapping segment is missing. A missing path is not an error.
func Resolve(tree map[string]any, p Path) any {
	return resolve(tree, p.segments)
}

func resolve(node any, segments []string) any {
	if len(segments) == 0 {
		return node
	}
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[segments[0]]
		if !ok {
			return Absent
		}
		return resolve(child, segments[1:])
	case []any:
		// The segment is not an index: resolve the remaining path inside
		// whichever element has it, first hit wins.
		for _, elem := range n {
			if v := resolve(elem, segments); !IsAbsent(v) {
				return v
			}
		}
		return Absent
	default:
		return Absent
	}
}

// Assign sets value at the path inside tree, in place. Missing intermediate
// mapping keys are created as empty mappings; a scalar in the way of an
// intermediate segment is replaced by an empty mapping. The final key is set
// unconditionally, whatever was there before. Sibling keys off the path are
// never touched.
//
// Writing through a sequence node fails with ErrUnsupported: sequences are
// read-only traversal points.
func Assign(tree map[string]any, p Path, value any) error {
	if len(p.segments) == 0 {
		return fmt.Errorf("%w: empty path", ErrMalformed)
	}
	node := tree
	for i, seg := range p.segments[:len(p.segments)-1] {
		child, ok := node[seg]
		if !ok {
			next := map[string]any{}
			node[seg] = next
			node = next
			continue
		}
		switch c := child.(type) {
		case map[string]any:
			node = c
		case []any:
			return fmt.Errorf("%w: %q traverses a sequence at %q",
				ErrUnsupported, p, strings.Join(p.segments[:i+1], Separator))
		default:
			next := map[string]any{}
			node[seg] = next
			node = next
		}
	}
	node[p.segments[len(p.segments)-1]] = value
	return nil
}
