package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/fieldpath"
	"github.com/aidanlsb/magpie/internal/pipeline"
	"github.com/aidanlsb/magpie/internal/record"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	listFlags     selectorFlags
	listPathExpr  string
	listNamesOnly bool
	listCached    bool
)

var listCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "Select and print records from a collection",
	Long: `List records of a kind, optionally narrowed by selectors and filters.

With no selector, every record in the collection is listed. Filters test a
field addressed by a slash path against a literal operand.

Examples:
  mag list policies
  mag list policies --match '^Install' --filter general/enabled==True
  mag list groups --filter scope/all_computers==false --path general/category
  mag list policies --cached --names-only`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	kind := args[0]

	preds, err := listFlags.predicates()
	if err != nil {
		return handleError(classifyError(err), err, "Filters look like path==value, path!=value, or path~=regex")
	}

	src, closer, err := newSource(kind, listCached)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	defer closer()

	sel := listFlags.selector()
	if sel.IsEmpty() {
		// No selector means the whole collection: the empty pattern matches
		// every name.
		sel.Patterns = []string{""}
	}

	recs, err := newRunner(src).Select(sel, preds)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	return printSelected(recs, listPathExpr, listNamesOnly)
}

// printSelected reports a selection in the requested output mode: name-only,
// a per-record path projection, or the full record dump.
func printSelected(recs []*record.Record, pathExpr string, namesOnly bool) error {
	var path fieldpath.Path
	if pathExpr != "" {
		var err error
		path, err = fieldpath.Parse(pathExpr)
		if err != nil {
			return handleError(ErrMalformedPath, err, "Paths look like general/category")
		}
	}

	if isJSONOutput() {
		if namesOnly {
			names := make([]string, 0, len(recs))
			for _, rec := range recs {
				names = append(names, rec.Name)
			}
			outputSuccess(map[string]any{"names": names}, &Meta{Count: len(recs)})
			return nil
		}
		if !path.IsZero() {
			type projectionView struct {
				ID    int    `json:"id"`
				Name  string `json:"name"`
				Value any    `json:"value"`
			}
			views := make([]projectionView, 0, len(recs))
			for _, p := range pipeline.Project(recs, path) {
				views = append(views, projectionView{ID: p.Record.ID, Name: p.Record.Name, Value: jsonValue(p.Value)})
			}
			outputSuccess(map[string]any{"path": path.String(), "records": views}, &Meta{Count: len(recs)})
			return nil
		}
		outputSuccess(map[string]any{"records": recs}, &Meta{Count: len(recs)})
		return nil
	}

	switch {
	case namesOnly:
		for _, rec := range recs {
			fmt.Println(rec.Name)
		}
	case !path.IsZero():
		for _, p := range pipeline.Project(recs, path) {
			fmt.Printf("%s: %s\n", ui.Name(p.Record.DisplayName()), renderValue(p.Value))
		}
	default:
		for i, rec := range recs {
			if i > 0 {
				fmt.Println("---")
			}
			doc, err := rec.YAML()
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			fmt.Print(doc)
		}
	}
	fmt.Println(ui.Hint(fmt.Sprintf("%d record(s)", len(recs))))
	return nil
}

func init() {
	addSelectorFlags(listCmd, &listFlags)
	listCmd.Flags().StringVar(&listPathExpr, "path", "", "Print only the value at this path per record")
	listCmd.Flags().BoolVar(&listNamesOnly, "names-only", false, "Print record names only")
	listCmd.Flags().BoolVar(&listCached, "cached", false, "Look up local snapshots instead of the server")
	rootCmd.AddCommand(listCmd)
}
