package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/pipeline"
)

var (
	updateFlags      selectorFlags
	updateForce      bool
	updateNoCooldown bool
	updateVerify     bool
)

var updateCmd = &cobra.Command{
	Use:   "update <kind> <path=value>...",
	Short: "Apply field assignments to selected records",
	Long: `Update every selected record by assigning values at slash paths, then
save each record back to the server.

Values are parsed as literals (numbers, true/false/null, quoted strings,
[...] and {...} structures); anything else is a plain string. Missing
intermediate keys are created; writing through a list is refused.

The update prompts for confirmation; --force skips the prompt but adds a
3-second cooldown (see 'mag docs safety'). In --quiet mode --force is
required.

Examples:
  mag update policies --name "Install Zoom" general/enabled=false
  mag update policies --match '^Test ' general/category=QA --force
  mag update groups --id 7 scope/all_computers=true --verify`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	kind := args[0]

	assignments, err := pipeline.ParseAssignments(args[1:])
	if err != nil {
		return handleError(classifyError(err), err, "Assignments look like path=value")
	}
	preds, err := updateFlags.predicates()
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	src, closer, err := newSource(kind, false)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	defer closer()

	plan := pipeline.Plan{
		Action:       pipeline.ActionUpdate,
		Selector:     updateFlags.selector(),
		Filters:      preds,
		Assignments:  assignments,
		Force:        updateForce,
		Quiet:        quietMode,
		SkipCooldown: updateNoCooldown,
		Verify:       updateVerify,
	}
	result, err := newRunner(src).Run(plan)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	warnings := logOutcomes(newAuditLogger(), "update", kind, assignmentStrings(assignments), result)
	return printOutcomes("update", result, warnings)
}

func init() {
	addSelectorFlags(updateCmd, &updateFlags)
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Skip the confirmation prompt")
	updateCmd.Flags().BoolVar(&updateNoCooldown, "no-cooldown", false, "Skip the forced-mutation safety delay")
	updateCmd.Flags().BoolVar(&updateVerify, "verify", false, "Re-fetch each record after saving")
	rootCmd.AddCommand(updateCmd)
}
