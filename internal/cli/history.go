package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/magpie/internal/audit"
	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/ui"
)

var (
	historyKind  string
	historyID    int
	historySince string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Read the mutation audit log",
	Long: `Print past create/update/delete operations from the audit log. Entries
from one run share a batch id.

Examples:
  mag history
  mag history --since 24h
  mag history --kind policies --id 42`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := config.DefaultAuditPath()

	var entries []audit.Entry
	var err error
	switch {
	case historyKind != "" && cmd.Flags().Changed("id"):
		entries, err = audit.ReadForRecord(path, historyKind, historyID)
	case historySince != "":
		since, parseErr := parseSince(historySince)
		if parseErr != nil {
			return handleError(ErrInvalidInput, parseErr, "Use a duration like 24h or an RFC3339 timestamp")
		}
		entries, err = audit.ReadSince(path, since)
	default:
		entries, err = audit.Read(path)
	}
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"entries": entries}, &Meta{Count: len(entries)})
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-6s %s %s", e.Timestamp.Format(time.RFC3339), e.Operation,
			e.Kind, ui.Name(e.Name))
		if len(e.Changes) > 0 {
			line += "  " + fmt.Sprint(e.Changes)
		}
		if e.Error != "" {
			line += "  " + ui.Error(e.Error)
		}
		fmt.Println(line)
	}
	fmt.Println(ui.Hint(fmt.Sprintf("%d entries", len(entries))))
	return nil
}

func parseSince(value string) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	return time.Parse(time.RFC3339, value)
}

func init() {
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Only entries for this record kind")
	historyCmd.Flags().IntVar(&historyID, "id", 0, "Only entries for this record id (with --kind)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only entries newer than a duration (24h) or RFC3339 time")
	rootCmd.AddCommand(historyCmd)
}
