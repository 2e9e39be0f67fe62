package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/pipeline"
)

var (
	deleteFlags      selectorFlags
	deleteForce      bool
	deleteNoCooldown bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <kind>",
	Short: "Delete selected records",
	Long: `Delete every selected record from the server.

Deletion prompts for confirmation; --force skips the prompt but adds a
3-second cooldown. In --quiet mode --force is required. Failures are
per-record: the batch keeps going and the summary reports counts.

Examples:
  mag delete policies --name "Old Policy"
  mag delete policies --match '^Test ' --filter general/enabled==False --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	kind := args[0]

	preds, err := deleteFlags.predicates()
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	src, closer, err := newSource(kind, false)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	defer closer()

	plan := pipeline.Plan{
		Action:       pipeline.ActionDelete,
		Selector:     deleteFlags.selector(),
		Filters:      preds,
		Force:        deleteForce,
		Quiet:        quietMode,
		SkipCooldown: deleteNoCooldown,
	}
	result, err := newRunner(src).Run(plan)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	warnings := logOutcomes(newAuditLogger(), "delete", kind, nil, result)
	return printOutcomes("delete", result, warnings)
}

func init() {
	addSelectorFlags(deleteCmd, &deleteFlags)
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
	deleteCmd.Flags().BoolVar(&deleteNoCooldown, "no-cooldown", false, "Skip the forced-mutation safety delay")
	rootCmd.AddCommand(deleteCmd)
}
