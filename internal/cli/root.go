// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultreg/internal/registry"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

var (
	// Global flags
	skillRootFlag   string
	skillNameFlag   string
	projectRootFlag string
	dataRootFlag    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vaultreg",
	Short: "Obsidian vault registry and CLI passthrough",
	Long: `vaultreg tracks which Obsidian vaults a skill works with, which one is
active, and which folder inside it operations should target. It forwards
commands to the Obsidian CLI against the selected vault and refuses
destructive ones unless --force-delete is given.

State lives in <project>/.skills-data/<skill>/vaults.json.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI. The returned error has already been printed; pass it
// to ExitCode for the process status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(err)
	}
	return err
}

func reportError(err error) {
	var ce *commandError
	if !errors.As(err, &ce) {
		if jsonOutput {
			outputError(ErrorInfo{Code: ErrInvalidInput, Message: err.Error(), ExitCode: ExitInvalidInput}, nil)
			return
		}
		fmt.Fprintln(stderr, ui.Error(err.Error()))
		fmt.Fprintln(stderr, ui.Hint("Run 'vaultreg --help' for usage."))
		return
	}
	if ce.reported {
		return
	}
	fmt.Fprintln(stderr, ui.Error(ce.Error()))
	if ce.suggestion != "" {
		fmt.Fprintln(stderr, ui.Hint(ce.suggestion))
	}
}

// usageArgs wraps a positional-args validator so its failures classify as
// invalid input.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return handleError(fmt.Errorf("%w: %v", registry.ErrInvalidInput, err), "Run '"+cmd.CommandPath()+" --help' for usage")
		}
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&skillRootFlag, "skill-root", "", "Skill directory (default: $VAULTREG_SKILL_ROOT or the executable's parent)")
	rootCmd.PersistentFlags().StringVar(&skillNameFlag, "skill-name", "", "Skill name used for the data directory")
	rootCmd.PersistentFlags().StringVar(&projectRootFlag, "project-root", "", "Project root holding .skills-data")
	rootCmd.PersistentFlags().StringVar(&dataRootFlag, "data-root", "", "Directory holding per-skill data directories")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return handleError(fmt.Errorf("%w: %v", registry.ErrInvalidInput, err), "Run '"+cmd.CommandPath()+" --help' for usage")
	})
}
