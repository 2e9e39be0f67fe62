package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/api"
	"github.com/aidanlsb/magpie/internal/audit"
	"github.com/aidanlsb/magpie/internal/cache"
	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/fieldpath"
	"github.com/aidanlsb/magpie/internal/literal"
	"github.com/aidanlsb/magpie/internal/pipeline"
	"github.com/aidanlsb/magpie/internal/predicate"
	"github.com/aidanlsb/magpie/internal/record"
	"github.com/aidanlsb/magpie/internal/ui"
)

// selectorFlags carries the shared record-selection flags.
type selectorFlags struct {
	names    []string
	patterns []string
	ids      []int
	filters  []string
}

func addSelectorFlags(cmd *cobra.Command, f *selectorFlags) {
	cmd.Flags().StringArrayVar(&f.names, "name", nil, "Select by exact name (repeatable)")
	cmd.Flags().StringArrayVar(&f.patterns, "match", nil, "Select by name regex (repeatable)")
	cmd.Flags().IntSliceVar(&f.ids, "id", nil, "Select by numeric id (repeatable)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Keep only records matching path==value, path!=value, or path~=regex (repeatable)")
}

func (f *selectorFlags) selector() pipeline.Selector {
	return pipeline.Selector{Names: f.names, Patterns: f.patterns, IDs: f.ids}
}

func (f *selectorFlags) predicates() ([]predicate.Predicate, error) {
	return predicate.ParseAll(f.filters)
}

// snapshotSource wraps the API client so every fetched record lands in the
// local cache and deletions evict it. Cache failures never fail the lookup.
type snapshotSource struct {
	pipeline.Source
	store *cache.Store
}

func (s *snapshotSource) put(rec *record.Record) {
	if rec != nil {
		_ = s.store.Put(rec)
	}
}

func (s *snapshotSource) FindByName(name string) (*record.Record, error) {
	rec, err := s.Source.FindByName(name)
	if err == nil {
		s.put(rec)
	}
	return rec, err
}

func (s *snapshotSource) FindByID(id int) (*record.Record, error) {
	rec, err := s.Source.FindByID(id)
	if err == nil {
		s.put(rec)
	}
	return rec, err
}

func (s *snapshotSource) FindByRegex(pattern string) ([]*record.Record, error) {
	recs, err := s.Source.FindByRegex(pattern)
	if err == nil {
		for _, rec := range recs {
			s.put(rec)
		}
	}
	return recs, err
}

func (s *snapshotSource) Create(name string) (*record.Record, error) {
	rec, err := s.Source.Create(name)
	if err == nil {
		s.put(rec)
	}
	return rec, err
}

func (s *snapshotSource) Save(rec *record.Record) error {
	if err := s.Source.Save(rec); err != nil {
		return err
	}
	s.put(rec)
	return nil
}

func (s *snapshotSource) Delete(rec *record.Record) error {
	if err := s.Source.Delete(rec); err != nil {
		return err
	}
	_ = s.store.Remove(rec.Kind, rec.ID)
	return nil
}

func (s *snapshotSource) Refresh(rec *record.Record) (*record.Record, error) {
	fresh, err := s.Source.Refresh(rec)
	if err == nil {
		s.put(fresh)
	}
	return fresh, err
}

// newSource builds the record source for a command: the API client with
// write-through snapshots, or the read-only cache when --cached is set.
// The returned closer must be called when the command is done.
func newSource(kind string, cached bool) (pipeline.Source, func(), error) {
	store, storeErr := cache.Open(getConfig().DefaultCachePath())

	if cached {
		if storeErr != nil {
			return nil, nil, storeErr
		}
		return &cache.Source{Store: store, Kind: kind}, func() { _ = store.Close() }, nil
	}

	srv, err := getConfig().GetServer(serverName)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	client, err := api.New(srv.URL, srv.Token, kind)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}
	if storeErr != nil {
		// A broken cache shouldn't block server work; run without snapshots.
		return client, func() {}, nil
	}
	return &snapshotSource{Source: client, store: store}, func() { _ = store.Close() }, nil
}

// newRunner wires the pipeline with the terminal confirmer and a real clock.
func newRunner(src pipeline.Source) *pipeline.Runner {
	return &pipeline.Runner{
		Source:    src,
		Confirmer: terminalConfirmer{},
		Sleeper:   pipeline.SleeperFunc(time.Sleep),
		Cooldown:  pipeline.DefaultCooldown,
	}
}

// newAuditLogger returns a logger for this run, honoring the config switch.
func newAuditLogger() *audit.Logger {
	return audit.New(config.DefaultAuditPath(), getConfig().IsAuditEnabled())
}

// renderValue formats a resolved field value for text output.
func renderValue(v any) string {
	if fieldpath.IsAbsent(v) {
		return ui.Hint("<absent>")
	}
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(val)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(string(data), "\n")
}

// jsonValue converts a resolved value for the JSON envelope; Absent becomes
// an explicit marker object so it stays distinguishable from null.
func jsonValue(v any) any {
	if fieldpath.IsAbsent(v) {
		return map[string]any{"absent": true}
	}
	return v
}

// classifyError maps structural pipeline errors onto stable codes.
func classifyError(err error) string {
	var invalidValue *literal.InvalidValueError
	switch {
	case errors.Is(err, pipeline.ErrNoRecords):
		return ErrNoRecordsSelected
	case errors.Is(err, pipeline.ErrConfirmationDenied):
		return ErrConfirmationDenied
	case errors.Is(err, pipeline.ErrInvalidAssignment):
		return ErrInvalidInput
	case errors.Is(err, fieldpath.ErrMalformed):
		return ErrMalformedPath
	case errors.Is(err, fieldpath.ErrUnsupported):
		return ErrUnsupportedPath
	case errors.Is(err, predicate.ErrInvalidFilter):
		return ErrInvalidFilter
	case errors.As(err, &invalidValue):
		return ErrInvalidValue
	case errors.Is(err, cache.ErrOffline):
		return ErrCacheError
	default:
		return ErrServerError
	}
}

// outcomeView is the JSON shape of one per-record result.
type outcomeView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// printOutcomes reports a mutation batch in the requested output mode and
// returns a non-nil error when any record failed, so the process exit
// status reflects it. Warnings are non-fatal notes (a failed audit write).
func printOutcomes(action string, result *pipeline.Result, warnings []string) error {
	views := make([]outcomeView, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		view := outcomeView{ID: o.Record.ID, Name: o.Record.Name, OK: o.OK()}
		if o.Err != nil {
			view.Error = o.Err.Error()
		}
		views = append(views, view)
	}

	if isJSONOutput() {
		outputJSON(Response{
			OK: result.Failed() == 0,
			Data: map[string]any{
				"action":    action,
				"results":   views,
				"attempted": result.Attempted,
				"succeeded": result.Succeeded,
				"failed":    result.Failed(),
			},
			Warnings: warnings,
			Meta:     &Meta{Count: result.Attempted},
		})
		if result.Failed() > 0 {
			return errReported
		}
		return nil
	}

	for _, w := range warnings {
		fmt.Println(ui.Warning(w))
	}
	for _, o := range result.Outcomes {
		if o.OK() {
			fmt.Println(ui.Successf("%s %s", action, ui.Name(o.Record.DisplayName())))
		} else {
			fmt.Println(ui.Errorf("%v", o.Err))
		}
	}
	fmt.Printf("%s: %d attempted, %d succeeded, %d failed\n",
		action, result.Attempted, result.Succeeded, result.Failed())
	if result.Failed() > 0 {
		return fmt.Errorf("%d of %d record(s) failed", result.Failed(), result.Attempted)
	}
	return nil
}

// logOutcomes appends one audit entry per attempted record and returns any
// write failures as warnings for the caller to report.
func logOutcomes(logger *audit.Logger, op, kind string, changes []string, result *pipeline.Result) []string {
	if !logger.Enabled() {
		return nil
	}
	var warnings []string
	for _, o := range result.Outcomes {
		entry := audit.Entry{
			Operation: op,
			Kind:      kind,
			RecordID:  o.Record.ID,
			Name:      o.Record.Name,
			Changes:   changes,
		}
		if o.Err != nil {
			entry.Error = o.Err.Error()
		}
		if err := logger.Log(entry); err != nil {
			warnings = append(warnings, fmt.Sprintf("audit log write failed: %v", err))
		}
	}
	return warnings
}

func assignmentStrings(assignments []pipeline.Assignment) []string {
	out := make([]string, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, a.String())
	}
	return out
}
