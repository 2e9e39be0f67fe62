package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/pipeline"
)

var (
	createForce      bool
	createNoCooldown bool
)

var createCmd = &cobra.Command{
	Use:   "create <kind> <name>",
	Short: "Create a new record",
	Long: `Create an empty record with the given name. The server assigns the id;
fill fields in afterwards with 'mag update'.

Examples:
  mag create policies "Install Zoom"
  mag create groups Engineering --force`,
	Args: cobra.ExactArgs(2),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	kind, name := args[0], args[1]

	src, closer, err := newSource(kind, false)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}
	defer closer()

	plan := pipeline.Plan{
		Action:       pipeline.ActionCreate,
		CreateName:   name,
		Force:        createForce,
		Quiet:        quietMode,
		SkipCooldown: createNoCooldown,
	}
	result, err := newRunner(src).Run(plan)
	if err != nil {
		return handleError(classifyError(err), err, "")
	}

	warnings := logOutcomes(newAuditLogger(), "create", kind, nil, result)
	return printOutcomes("create", result, warnings)
}

func init() {
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "Skip the confirmation prompt")
	createCmd.Flags().BoolVar(&createNoCooldown, "no-cooldown", false, "Skip the forced-mutation safety delay")
	rootCmd.AddCommand(createCmd)
}
