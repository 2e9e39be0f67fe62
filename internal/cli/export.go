package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/export"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	exportFlags  selectorFlags
	exportDir    string
	exportCached bool
)

var exportCmd = &cobra.Command{
	Use:   "export <kind>",
	Short: "Write selected records to disk as YAML files",
	Long: `Export every selected record into a directory, one YAML document per
record, named after the record's slugged name and id.

Examples:
  mag export policies --dir ./backup
  mag export policies --match '^Install' --dir ./apps --cached`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	kind := args[0]

	preds, err := exportFlags.predicates()
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	src, closer, err := newSource(kind, exportCached)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	defer closer()

	sel := exportFlags.selector()
	if sel.IsEmpty() {
		sel.Patterns = []string{""}
	}
	recs, err := newRunner(src).Select(sel, preds)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	paths, err := export.Write(exportDir, recs)
	if err != nil {
		return handleError(ErrFileWriteError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"dir": exportDir, "files": paths}, &Meta{Count: len(paths)})
		return nil
	}
	for _, path := range paths {
		fmt.Println(ui.Successf("wrote %s", ui.Name(path)))
	}
	fmt.Println(ui.Hint(fmt.Sprintf("%d file(s)", len(paths))))
	return nil
}

func init() {
	addSelectorFlags(exportCmd, &exportFlags)
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write YAML files into")
	exportCmd.Flags().BoolVar(&exportCached, "cached", false, "Export local snapshots instead of fetching")
	rootCmd.AddCommand(exportCmd)
}
