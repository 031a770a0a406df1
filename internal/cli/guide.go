package cli

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/aidanlsb/vaultreg/docs"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

var (
	guideStdoutIsTerminal = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
	guideDisplay          = ui.StdoutDisplay
	guideMarkdownRender   = ui.RenderMarkdown
)

var guideCmd = &cobra.Command{
	Use:   "guide [topic]",
	Short: "Read the bundled guide",
	Long: `Read the bundled guide. Without a topic the whole guide is shown;
"vaultreg guide --list" lists the topics.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		if list {
			return runGuideList()
		}

		var (
			body  string
			topic builtindocs.Topic
		)
		if len(args) == 1 {
			t, err := builtindocs.Lookup(args[0])
			if err != nil {
				return handleError(err, "Run 'vaultreg guide --list' to see topics")
			}
			topic, body = t, t.Body
		} else {
			content, err := builtindocs.Guide()
			if err != nil {
				return handleError(err, "")
			}
			body = string(content)
		}

		if isJSONOutput() {
			data := map[string]any{"content": body}
			if topic.ID != "" {
				data["id"] = topic.ID
				data["title"] = topic.Title
			}
			outputSuccess(data, nil)
			return nil
		}

		if !guideStdoutIsTerminal() {
			printf("%s", body)
			return nil
		}
		rendered, err := guideMarkdownRender(body, guideDisplay().Width)
		if err != nil {
			printf("%s", body)
			return nil
		}
		printf("%s", rendered)
		return nil
	},
}

func runGuideList() error {
	topics, err := builtindocs.Topics()
	if err != nil {
		return handleError(err, "")
	}
	if isJSONOutput() {
		outputSuccess(map[string]any{"topics": topics}, &Meta{Count: len(topics)})
		return nil
	}
	table := ui.NewTable(2, guideDisplay())
	for _, t := range topics {
		table.AddRow(ui.VaultName(t.ID), t.Title)
	}
	printf("%s", table.String())
	return nil
}

func init() {
	guideCmd.Flags().Bool("list", false, "List guide topics")
	rootCmd.AddCommand(guideCmd)
}
