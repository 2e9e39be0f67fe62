package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/magpie/internal/ui"
)

// terminalConfirmer gates mutations on an interactive yes. It is only
// Interactive when both ends are real terminals and output is for a human;
// the pipeline fails closed otherwise.
type terminalConfirmer struct{}

func (terminalConfirmer) Interactive() bool {
	if isJSONOutput() {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

func (c terminalConfirmer) Confirm(prompt string) bool {
	if prompt == "" {
		prompt = "Apply changes?"
	}
	fmt.Printf("%s %s ", prompt, ui.Hint("[y/N]"))
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
