// Package pipeline implements the selection-and-mutation workflow: gather
// candidate records, order them, filter with predicates, confirm, and apply
// a batched action with per-record outcomes.
//
// Processing is single-threaded and sequential. A failure on one record
// never prevents the next from being attempted, and there is no rollback:
// the batch is best-effort, not a transaction.
package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aidanlsb/magpie/internal/fieldpath"
	"github.com/aidanlsb/magpie/internal/predicate"
	"github.com/aidanlsb/magpie/internal/record"
)

// Source is the record collaborator: lookup, ordering, and persistence.
// Lookups that find nothing return (nil, nil); errors are transport-level.
type Source interface {
	FindByName(name string) (*record.Record, error)
	FindByRegex(pattern string) ([]*record.Record, error)
	FindByID(id int) (*record.Record, error)
	Create(name string) (*record.Record, error)
	Save(rec *record.Record) error
	Delete(rec *record.Record) error
	Refresh(rec *record.Record) (*record.Record, error)
	Less(a, b *record.Record) bool
}

// Confirmer supplies the interactive confirmation token.
type Confirmer interface {
	// Interactive reports whether a prompt can be shown at all.
	Interactive() bool
	// Confirm prompts and returns the operator's answer.
	Confirm(prompt string) bool
}

// Sleeper waits out the safety cooldown. Injected so tests run without
// real timers.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(d time.Duration)

// Sleep calls f.
func (f SleeperFunc) Sleep(d time.Duration) { f(d) }

// DefaultCooldown is the fixed brake applied before a forced
// (non-interactive) mutation executes.
const DefaultCooldown = 3 * time.Second

// Structural errors: these abort the run before any mutation begins.
var (
	// ErrNoRecords indicates an action was requested against zero candidates.
	ErrNoRecords = errors.New("no records matched the selection")
	// ErrConfirmationDenied indicates the operator declined, or quiet mode
	// required --force and it was absent.
	ErrConfirmationDenied = errors.New("confirmation denied")
)

// Selector names the candidate records: any mix of exact names, name
// patterns, and numeric ids. The result is the union of all lookups.
type Selector struct {
	Names    []string
	Patterns []string
	IDs      []int
}

// IsEmpty reports whether no lookup was requested.
func (s Selector) IsEmpty() bool {
	return len(s.Names) == 0 && len(s.Patterns) == 0 && len(s.IDs) == 0
}

// Plan is a fully parsed, validated description of one pipeline run. The
// confirmation and cooldown requirements are decided up front from the plan
// rather than as ambient side effects during apply.
type Plan struct {
	Action      Action
	Selector    Selector
	Filters     []predicate.Predicate
	Assignments []Assignment

	// CreateName is the record to create for ActionCreate.
	CreateName string

	// Force satisfies the confirmation token without a prompt.
	Force bool
	// Quiet forbids prompting; mutations then require Force.
	Quiet bool
	// SkipCooldown disables the forced-mutation safety delay.
	SkipCooldown bool
	// Verify re-fetches each record after a successful save.
	Verify bool
}

// Outcome is the per-record result of an apply step.
type Outcome struct {
	Record *record.Record
	Err    error
}

// OK reports whether the record's action succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Result aggregates one pipeline run. Individual record failures live in
// Outcomes; Run itself only errors on structurally invalid input.
type Result struct {
	Selected  []*record.Record
	Outcomes  []Outcome
	Attempted int
	Succeeded int
}

// Failed returns the number of failed outcomes.
func (r *Result) Failed() int { return r.Attempted - r.Succeeded }

// Runner executes plans against a Source with injected confirmation and
// cooldown collaborators.
type Runner struct {
	Source    Source
	Confirmer Confirmer
	Sleeper   Sleeper
	Cooldown  time.Duration
}

// Run executes the plan. The terminal result carries per-record outcomes
// and counts; it is non-nil whenever error is nil.
func (r *Runner) Run(plan Plan) (*Result, error) {
	if err := r.validate(plan); err != nil {
		return nil, err
	}

	if plan.Action.Point() == RunBeforeSelection {
		return r.runCreate(plan)
	}

	selected, err := r.Select(plan.Selector, plan.Filters)
	if err != nil {
		return nil, err
	}

	result := &Result{Selected: selected}
	if !plan.Action.Mutates() {
		return result, nil
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoRecords, plan.Action)
	}

	forced, err := r.confirm(plan, len(selected))
	if err != nil {
		return nil, err
	}
	r.cooldown(plan, forced)

	for _, rec := range selected {
		result.Outcomes = append(result.Outcomes, r.apply(plan, rec))
	}
	result.Attempted = len(result.Outcomes)
	for _, o := range result.Outcomes {
		if o.OK() {
			result.Succeeded++
		}
	}
	return result, nil
}

func (r *Runner) validate(plan Plan) error {
	spec := plan.Action.spec()
	switch plan.Action {
	case ActionCreate:
		if plan.CreateName == "" {
			return fmt.Errorf("%s requires a record name", spec.name)
		}
	case ActionUpdate:
		if len(plan.Assignments) < spec.minArgs {
			return fmt.Errorf("%s requires at least one path=value assignment", spec.name)
		}
	}
	return nil
}

func (r *Runner) runCreate(plan Plan) (*Result, error) {
	forced, err := r.confirm(plan, 1)
	if err != nil {
		return nil, err
	}
	r.cooldown(plan, forced)

	result := &Result{Attempted: 1}
	rec, err := r.Source.Create(plan.CreateName)
	if err != nil {
		result.Outcomes = []Outcome{{Record: &record.Record{Name: plan.CreateName}, Err: err}}
		return result, nil
	}
	result.Outcomes = []Outcome{{Record: rec}}
	result.Selected = []*record.Record{rec}
	result.Succeeded = 1
	return result, nil
}

// Select gathers candidates from every lookup mode, orders them by the
// source's natural ordering, and keeps those passing every filter.
func (r *Runner) Select(sel Selector, filters []predicate.Predicate) ([]*record.Record, error) {
	candidates, err := r.gather(sel)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return r.Source.Less(candidates[i], candidates[j])
	})

	if len(filters) == 0 {
		return candidates, nil
	}
	kept := make([]*record.Record, 0, len(candidates))
	for _, rec := range candidates {
		if matchesAll(rec, filters) {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

func (r *Runner) gather(sel Selector) ([]*record.Record, error) {
	var candidates []*record.Record
	for _, name := range sel.Names {
		rec, err := r.Source.FindByName(name)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			candidates = append(candidates, rec)
		}
	}
	for _, pattern := range sel.Patterns {
		recs, err := r.Source.FindByRegex(pattern)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, recs...)
	}
	for _, id := range sel.IDs {
		rec, err := r.Source.FindByID(id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			candidates = append(candidates, rec)
		}
	}
	return candidates, nil
}

func matchesAll(rec *record.Record, filters []predicate.Predicate) bool {
	for _, f := range filters {
		if !f.Match(rec.Fields) {
			return false
		}
	}
	return true
}

// confirm resolves the confirmation token. It returns forced=true when the
// run proceeds on the force flag alone, which is what arms the cooldown.
func (r *Runner) confirm(plan Plan, count int) (bool, error) {
	if !plan.Action.Mutates() {
		return false, nil
	}
	if plan.Force {
		return true, nil
	}
	if plan.Quiet || r.Confirmer == nil || !r.Confirmer.Interactive() {
		// Fail closed: no terminal, no prompt, no mutation.
		return false, fmt.Errorf("%w: %s of %d record(s) requires --force in non-interactive mode",
			ErrConfirmationDenied, plan.Action, count)
	}
	prompt := fmt.Sprintf("%s %d record(s)?", plan.Action, count)
	if !r.Confirmer.Confirm(prompt) {
		return false, fmt.Errorf("%w: %s aborted by operator", ErrConfirmationDenied, plan.Action)
	}
	return false, nil
}

func (r *Runner) cooldown(plan Plan, forced bool) {
	if !forced || plan.SkipCooldown || r.Sleeper == nil {
		return
	}
	d := r.Cooldown
	if d <= 0 {
		d = DefaultCooldown
	}
	r.Sleeper.Sleep(d)
}

// apply executes the action on one record. Update assignments are
// all-or-nothing at the reporting level: the first failing assignment marks
// the record failed and skips its save, though earlier assignments may
// already have landed on the in-memory tree.
func (r *Runner) apply(plan Plan, rec *record.Record) Outcome {
	switch plan.Action {
	case ActionDelete:
		if err := r.Source.Delete(rec); err != nil {
			return Outcome{Record: rec, Err: fmt.Errorf("delete %s: %w", rec.DisplayName(), err)}
		}
		return Outcome{Record: rec}
	case ActionUpdate:
		if rec.Fields == nil {
			rec.Fields = map[string]any{}
		}
		for _, a := range plan.Assignments {
			if err := fieldpath.Assign(rec.Fields, a.Path, a.Value); err != nil {
				return Outcome{Record: rec, Err: fmt.Errorf("update %s: %w", rec.DisplayName(), err)}
			}
		}
		if err := r.Source.Save(rec); err != nil {
			return Outcome{Record: rec, Err: fmt.Errorf("save %s: %w", rec.DisplayName(), err)}
		}
		if plan.Verify {
			fresh, err := r.Source.Refresh(rec)
			if err != nil {
				return Outcome{Record: rec, Err: fmt.Errorf("verify %s: %w", rec.DisplayName(), err)}
			}
			*rec = *fresh
		}
		return Outcome{Record: rec}
	default:
		return Outcome{Record: rec, Err: fmt.Errorf("action %s cannot be applied per record", plan.Action)}
	}
}

// Project resolves path in each record, pairing the record with the value
// found (or the Absent sentinel).
func Project(recs []*record.Record, path fieldpath.Path) []Projection {
	out := make([]Projection, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Projection{Record: rec, Value: fieldpath.Resolve(rec.Fields, path)})
	}
	return out
}

// Projection pairs a record with the value at a requested path.
type Projection struct {
	Record *record.Record
	Value  any
}
