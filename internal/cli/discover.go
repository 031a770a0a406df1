package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultreg/internal/discovery"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

var (
	discoverMerge  bool
	discoverConfig []string
	discoverBinary string
)

type discoverResult struct {
	Method     string                `json:"method"`
	Candidates []discovery.Candidate `json:"candidates"`
	Merged     bool                  `json:"merged"`
	Added      []vaultRow            `json:"added,omitempty"`
	Kept       []string              `json:"kept,omitempty"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find vaults Obsidian already knows about",
	Long: `Find vaults Obsidian already knows about.

The Obsidian CLI is asked first ("obsidian vaults verbose"). If it is missing
or fails, Obsidian's vaults.json or obsidian.json is read from the platform
config directory instead.

Without --merge the candidates are only listed. With --merge, vaults whose path
is not registered are added; existing entries and the active vault are left
as they are.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		engine := &discovery.Engine{
			Runner:          newRunner(),
			Binary:          app.binary(discoverBinary),
			ExtraEnv:        app.env.Passthrough(),
			ConfigFiles:     discoverConfig,
			ExtraConfigDirs: app.cfg.ObsidianConfigDirs,
		}
		found, err := engine.Discover(cmd.Context())
		if err != nil {
			return handleError(err, "")
		}

		result := discoverResult{
			Method:     found.Method,
			Candidates: found.Candidates,
			Merged:     discoverMerge,
		}
		if result.Candidates == nil {
			result.Candidates = []discovery.Candidate{}
		}

		added := 0
		if discoverMerge {
			report, err := discovery.Merge(reg, found.Candidates)
			if err != nil {
				return handleError(err, "")
			}
			if len(report.Added) > 0 {
				if err := saveRegistry(app, reg); err != nil {
					return err
				}
			}
			for _, e := range report.Added {
				result.Added = append(result.Added, newVaultRow(reg, e))
			}
			for _, e := range report.Kept {
				result.Kept = append(result.Kept, e.Name)
			}
			added = len(report.Added)
		}
		if err := app.log.LogDiscovery(found.Method, len(found.Candidates), added, found.CLIError); err != nil && !isJSONOutput() {
			fmt.Fprintln(stderr, ui.Warningf("could not write operation log: %v", err))
		}

		if isJSONOutput() {
			outputSuccess(result, &Meta{Count: len(result.Candidates), RegistryPath: app.store.Path()})
			return nil
		}

		if len(result.Candidates) == 0 {
			printf("No vaults found.\n")
			printf("%s\n", ui.Hint("Register one with 'vaultreg add --path <dir>'."))
			return nil
		}

		printf("%s %s\n", ui.Header("Discovered vaults"), ui.Hint("via "+result.Method))
		table := ui.NewTable(2, nil)
		for _, c := range result.Candidates {
			table.AddRow(c.Name, c.Path)
		}
		printf("%s", table.String())

		if !discoverMerge {
			printf("\n%s\n", ui.Hint("Run with --merge to add them to the registry."))
			return nil
		}
		printf("\n")
		for _, row := range result.Added {
			printf("%s\n", ui.Successf("Added %s -> %s", ui.VaultName(row.Name), row.Path))
		}
		if len(result.Kept) > 0 {
			printf("%s %s\n", ui.Info("Already registered: "+strings.Join(result.Kept, ", ")), ui.Hint(ui.Count(len(result.Kept), "vault", "vaults")))
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverMerge, "merge", false, "Add new vaults to the registry")
	discoverCmd.Flags().StringArrayVar(&discoverConfig, "config", nil, "Obsidian config file to read instead of the platform ones (repeatable)")
	discoverCmd.Flags().StringVar(&discoverBinary, "binary", "", "Obsidian CLI binary")
	rootCmd.AddCommand(discoverCmd)
}
