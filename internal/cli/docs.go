package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/aidanlsb/magpie/docs"
	"github.com/aidanlsb/magpie/internal/ui"
)

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the bundled user guide",
	Long: `Show a guide topic rendered for the terminal, or list topics when none
is given. For command docs, use: mag help <command>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func runDocs(cmd *cobra.Command, args []string) error {
	topics, err := docsTopics()
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	if len(args) == 0 {
		if isJSONOutput() {
			outputSuccess(map[string]any{"topics": topics}, &Meta{Count: len(topics)})
			return nil
		}
		fmt.Println(ui.Header("Guide topics"))
		for _, topic := range topics {
			fmt.Printf("  %s\n", topic)
		}
		fmt.Println(ui.Hint("mag docs <topic>"))
		return nil
	}

	topic := strings.TrimSuffix(args[0], ".md")
	content, err := fs.ReadFile(builtindocs.FS, path.Join("guide", topic+".md"))
	if err != nil {
		return handleErrorMsg(ErrInvalidInput,
			fmt.Sprintf("unknown topic %q", topic),
			"Run 'mag docs' to list topics")
	}

	if isJSONOutput() {
		outputSuccess(map[string]any{"topic": topic, "content": string(content)}, nil)
		return nil
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(string(content))
		return nil
	}
	rendered, err := ui.RenderMarkdown(string(content), ui.DefaultTermWidth)
	if err != nil {
		fmt.Print(string(content))
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func docsTopics() ([]string, error) {
	entries, err := fs.ReadDir(builtindocs.FS, "guide")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		topics = append(topics, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics, nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
