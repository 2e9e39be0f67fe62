package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/fieldpath"
	"github.com/aidanlsb/magpie/internal/record"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	getPathExpr string
	getCached   bool
)

var getCmd = &cobra.Command{
	Use:   "get <kind> <name-or-id>",
	Short: "Print a single record",
	Long: `Fetch one record by exact name, or by id when the argument is numeric.

Examples:
  mag get policies "Install Zoom"
  mag get policies 42 --path scope/all_computers`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	kind, ref := args[0], args[1]

	src, closer, err := newSource(kind, getCached)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	defer closer()

	var rec *record.Record
	if id, idErr := strconv.Atoi(ref); idErr == nil {
		rec, err = src.FindByID(id)
	} else {
		rec, err = src.FindByName(ref)
	}
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	if rec == nil {
		return handleErrorMsg(ErrRecordNotFound,
			fmt.Sprintf("no %s record named %q", kind, ref),
			"Use 'mag list "+kind+" --names-only' to see what exists")
	}

	if getPathExpr != "" {
		path, err := fieldpath.Parse(getPathExpr)
		if err != nil {
			return handleError(ErrMalformedPath, err, "Paths look like general/category")
		}
		value := fieldpath.Resolve(rec.Fields, path)
		if isJSONOutput() {
			outputSuccess(map[string]any{
				"id": rec.ID, "name": rec.Name, "path": path.String(), "value": jsonValue(value),
			}, nil)
			return nil
		}
		fmt.Printf("%s: %s\n", ui.Name(rec.DisplayName()), renderValue(value))
		return nil
	}

	if isJSONOutput() {
		outputSuccess(rec, nil)
		return nil
	}
	doc, err := rec.YAML()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	fmt.Print(doc)
	return nil
}

func init() {
	getCmd.Flags().StringVar(&getPathExpr, "path", "", "Print only the value at this path")
	getCmd.Flags().BoolVar(&getCached, "cached", false, "Look up the local snapshot instead of the server")
	rootCmd.AddCommand(getCmd)
}
