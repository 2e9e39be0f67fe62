// Package predicate filters record values with path/operator/operand
// expressions like "scope/all_computers==false".
package predicate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aidanlsb/magpie/internal/fieldpath"
)

// Op is a comparison operator.
type Op string

// Supported operators, in the user-facing expression syntax.
const (
	OpEquals    Op = "=="
	OpNotEquals Op = "!="
	OpMatches   Op = "~="
)

// Sentinel operands for non-string values. Booleans compare equal to "True"
// or "False", null compares equal to "None".
const (
	SentinelTrue  = "True"
	SentinelFalse = "False"
	SentinelNull  = "None"
)

// ErrInvalidFilter indicates a filter expression that could not be parsed.
var ErrInvalidFilter = errors.New("invalid filter expression")

// Predicate is a single path + operator + operand test against a record.
type Predicate struct {
	Path    fieldpath.Path
	Op      Op
	Operand string

	// re is precompiled for OpMatches so a bad pattern fails at parse time,
	// before any record is touched.
	re *regexp.Regexp
}

// Parse parses a filter expression of the form "path<op>operand", where op
// is one of ==, != or ~=. The operand is taken verbatim (it may be empty).
func Parse(expr string) (Predicate, error) {
	idx, op := findOperator(expr)
	if idx < 0 {
		return Predicate{}, fmt.Errorf("%w: %q has no operator (expected ==, != or ~=)", ErrInvalidFilter, expr)
	}
	path, err := fieldpath.Parse(expr[:idx])
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	p := Predicate{
		Path:    path,
		Op:      op,
		Operand: expr[idx+len(op):],
	}
	if op == OpMatches {
		re, err := regexp.Compile(p.Operand)
		if err != nil {
			return Predicate{}, fmt.Errorf("%w: bad pattern %q: %v", ErrInvalidFilter, p.Operand, err)
		}
		p.re = re
	}
	return p, nil
}

// ParseAll parses a list of filter expressions, preserving order.
func ParseAll(exprs []string) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(exprs))
	for _, expr := range exprs {
		p, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// findOperator returns the earliest operator occurrence so the operand may
// itself contain operator characters (a regex, say).
func findOperator(expr string) (int, Op) {
	best, bestOp := -1, Op("")
	for _, op := range []Op{OpEquals, OpNotEquals, OpMatches} {
		if idx := strings.Index(expr, string(op)); idx >= 0 && (best < 0 || idx < best) {
			best, bestOp = idx, op
		}
	}
	return best, bestOp
}

// String returns the expression form of the predicate.
func (p Predicate) String() string {
	return p.Path.String() + string(p.Op) + p.Operand
}

// Match resolves the predicate's path in the given field tree and tests the
// resulting value.
func (p Predicate) Match(fields map[string]any) bool {
	return p.test(fieldpath.Resolve(fields, p.Path))
}

// Matches tests a single already-resolved value against operand under op.
// It is the operator contract used by Match; a bad OpMatches pattern simply
// never matches here (Parse rejects it up front).
func Matches(value any, operand string, op Op) bool {
	p := Predicate{Op: op, Operand: operand}
	if op == OpMatches {
		p.re, _ = regexp.Compile(operand)
	}
	return p.test(value)
}

func (p Predicate) test(value any) bool {
	// A sequence value delegates to its first element only, never any-of:
	// existing filters would change meaning if every element were consulted.
	if seq, ok := value.([]any); ok {
		if len(seq) == 0 {
			return p.Op == OpNotEquals
		}
		return p.test(seq[0])
	}

	switch p.Op {
	case OpEquals:
		return equals(value, p.Operand)
	case OpNotEquals:
		// Any value/operand combination not recognized by equals lands on
		// "not equal". Unknown shapes must not slip past an equals filter.
		return !equals(value, p.Operand)
	case OpMatches:
		return p.regexMatch(value)
	}
	return false
}

// equals recognizes strings, booleans against their "True"/"False" sentinels,
// and null against "None". Everything else (absent included) is not equal.
func equals(value any, operand string) bool {
	switch v := value.(type) {
	case string:
		return v == operand
	case bool:
		if v {
			return operand == SentinelTrue
		}
		return operand == SentinelFalse
	case nil:
		return operand == SentinelNull
	}
	return false
}

func (p Predicate) regexMatch(value any) bool {
	switch v := value.(type) {
	case string:
		if p.re == nil {
			return false
		}
		return p.re.MatchString(v)
	case bool, nil:
		// Sentinel values have no text to search; fall back to equality.
		return equals(value, p.Operand)
	}
	return false
}
