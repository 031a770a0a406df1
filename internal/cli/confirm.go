package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/vaultreg/internal/paths"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

var (
	promptInput io.Reader = os.Stdin

	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
	}
)

func shouldPromptForConfirm() bool {
	if isJSONOutput() {
		return false
	}
	return isInteractive()
}

func promptForConfirm(message string) bool {
	if !shouldPromptForConfirm() {
		return false
	}
	if message == "" {
		message = "Continue?"
	}
	fmt.Fprintf(stderr, "%s %s ", message, ui.Hint("[y/N]"))
	reader := bufio.NewReader(promptInput)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// ttyPrompter answers paths.Prompter questions on the terminal.
type ttyPrompter struct{}

func (ttyPrompter) Confirm(message string) bool { return promptForConfirm(message) }

// prompter returns nil when no one is there to answer.
func prompter() paths.Prompter {
	if !shouldPromptForConfirm() {
		return nil
	}
	return ttyPrompter{}
}
