package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultreg/internal/registry"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

type vaultRow struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Workdir   string `json:"workdir"`
	Source    string `json:"source,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	IsActive  bool   `json:"is_active"`
	HasMarker bool   `json:"has_marker"`
}

func newVaultRow(reg *registry.Registry, e registry.VaultEntry) vaultRow {
	return vaultRow{
		Name:      e.Name,
		Path:      e.Path,
		Workdir:   e.Workdir,
		Source:    e.Source,
		UpdatedAt: e.UpdatedAt,
		IsActive:  reg.Active == e.Name,
		HasMarker: registry.IsVaultRoot(e.Path),
	}
}

var (
	addPath         string
	addName         string
	addWorkdir      string
	addForce        bool
	addAllowMissing bool
	addSetActive    bool

	removeName    string
	setActiveName string

	setWorkdirName  string
	setWorkdirValue string
)

const corruptSuggestion = "Fix or move the registry file; it is never rewritten while unreadable"

// loadRegistry resolves the context and reads the registry, returning
// already-handled errors.
func loadRegistry() (*appContext, *registry.Registry, error) {
	app, err := loadAppContext()
	if err != nil {
		return nil, nil, handleError(err, "Pass --project-root or --data-root")
	}
	reg, err := app.store.Load()
	if err != nil {
		return nil, nil, handleError(err, corruptSuggestion)
	}
	return app, reg, nil
}

// saveRegistry persists reg, returning an already-handled error.
func saveRegistry(app *appContext, reg *registry.Registry) error {
	if err := app.store.Save(reg); err != nil {
		return handleError(err, "")
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered vaults",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		rows := make([]vaultRow, 0, reg.Len())
		for entry := range reg.List() {
			rows = append(rows, newVaultRow(reg, entry))
		}

		if isJSONOutput() {
			var active any
			if reg.Active != "" {
				active = reg.Active
			}
			outputSuccess(map[string]any{
				"active": active,
				"vaults": rows,
			}, &Meta{Count: len(rows), RegistryPath: app.store.Path()})
			return nil
		}

		if len(rows) == 0 {
			printf("No vaults registered.\n")
			printf("%s\n", ui.Hint("Run 'vaultreg discover --merge' or 'vaultreg add --path <dir>'."))
			return nil
		}

		table := ui.NewTable(4, nil)
		for _, row := range rows {
			marker := " "
			if row.IsActive {
				marker = ui.SymbolActive
			}
			path := row.Path
			if !row.HasMarker {
				path += " " + ui.SymbolWarning
			}
			table.AddRow(marker, ui.VaultName(row.Name), row.Workdir, path)
		}
		printf("%s", table.String())
		printf("\n%s %s\n", ui.Hint("registry:"), app.store.Path())
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a vault",
	Long: `Register a vault directory under a name.

The directory must contain .obsidian/ unless --allow-missing is given.
The name defaults to the directory's base name.`,
	Example: `  vaultreg add --path ~/Notes --name notes --set-active
  vaultreg add --path /Volumes/usb/Archive --allow-missing`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		entry, err := reg.Add(addName, addPath, registry.AddOptions{
			Workdir:            addWorkdir,
			Overwrite:          addForce,
			AllowMissingMarker: addAllowMissing,
			SetActive:          addSetActive,
		})
		logName, logPath := entry.Name, entry.Path
		if err != nil {
			logName, logPath = addName, addPath
		}
		app.logResult("add", logName, logPath, err, nil)
		if err != nil {
			return handleError(err, addSuggestion(err))
		}
		if err := saveRegistry(app, reg); err != nil {
			return err
		}

		row := newVaultRow(reg, entry)
		var warnings []Warning
		if !row.HasMarker {
			warnings = append(warnings, Warning{
				Code:    WarnMissingMarker,
				Message: fmt.Sprintf("%s has no .obsidian directory", entry.Path),
			})
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(row, warnings, &Meta{RegistryPath: app.store.Path()})
			return nil
		}
		printf("%s\n", ui.Successf("Added %s -> %s", ui.VaultName(entry.Name), ui.FilePath(entry.Path)))
		if row.IsActive {
			printf("%s\n", ui.Infof("Active vault is now %s", entry.Name))
		}
		for _, w := range warnings {
			printf("%s\n", ui.Warning(w.Message))
		}
		return nil
	},
}

func addSuggestion(err error) string {
	code, _ := classify(err)
	switch code {
	case ErrDuplicateName:
		return "Choose another --name or pass --force to replace it"
	case ErrVaultInvalid:
		return "Pass --allow-missing to register it anyway"
	}
	return ""
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Unregister a vault",
	Long:  "Unregister a vault. The vault directory is not touched.",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		wasActive := reg.Active
		entry, err := reg.Remove(removeName)
		app.logResult("remove", removeName, entry.Path, err, nil)
		if err != nil {
			return handleError(err, "Run 'vaultreg list' to see registered vaults")
		}
		if err := saveRegistry(app, reg); err != nil {
			return err
		}

		var warnings []Warning
		if wasActive == entry.Name {
			warnings = append(warnings, Warning{
				Code:    WarnActiveCleared,
				Message: fmt.Sprintf("%s was the active vault; no vault is active now", entry.Name),
			})
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]any{
				"removed": entry.Name,
				"path":    entry.Path,
			}, warnings, &Meta{RegistryPath: app.store.Path()})
			return nil
		}
		printf("%s\n", ui.Successf("Removed %s", ui.VaultName(entry.Name)))
		for _, w := range warnings {
			printf("%s\n", ui.Info(w.Message))
		}
		return nil
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "set-active",
	Short: "Select the vault used when none is named",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		entry, err := reg.SetActive(setActiveName)
		app.logResult("set-active", setActiveName, entry.Path, err, nil)
		if err != nil {
			return handleError(err, "Run 'vaultreg list' to see registered vaults")
		}
		if err := saveRegistry(app, reg); err != nil {
			return err
		}

		if isJSONOutput() {
			outputSuccess(newVaultRow(reg, entry), &Meta{RegistryPath: app.store.Path()})
			return nil
		}
		printf("%s\n", ui.Successf("Active vault set to %s -> %s", ui.VaultName(entry.Name), ui.FilePath(entry.Path)))
		return nil
	},
}

var setWorkdirCmd = &cobra.Command{
	Use:   "set-workdir",
	Short: "Set the folder operations target inside a vault",
	Long: `Set the working folder of a vault, relative to its root.

"." is the vault root. The folder is not checked on disk, so it can be set
while the vault is offline. Without --name the active vault is changed.`,
	Example: `  vaultreg set-workdir --workdir Projects/2026
  vaultreg set-workdir --name work --workdir .`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		entry, err := reg.SetWorkdir(setWorkdirName, setWorkdirValue)
		app.logResult("set-workdir", entry.Name, entry.Path, err, map[string]any{"workdir": setWorkdirValue})
		if err != nil {
			return handleError(err, "")
		}
		if err := saveRegistry(app, reg); err != nil {
			return err
		}

		if isJSONOutput() {
			outputSuccess(newVaultRow(reg, entry), &Meta{RegistryPath: app.store.Path()})
			return nil
		}
		printf("%s\n", ui.Successf("Working folder of %s set to %s", ui.VaultName(entry.Name), entry.Workdir))
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the active vault",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		entry, ok := reg.ActiveEntry()
		if isJSONOutput() {
			var data any
			if ok {
				row := newVaultRow(reg, entry)
				data = map[string]any{
					"active":       row,
					"workdir_path": entry.WorkdirPath(),
				}
			} else {
				data = map[string]any{"active": nil}
			}
			outputSuccess(data, &Meta{RegistryPath: app.store.Path()})
			return nil
		}

		if !ok {
			printf("No active vault.\n")
			printf("%s\n", ui.Hint("Run 'vaultreg set-active --name <name>'."))
			return nil
		}
		printf("%s %s\n", ui.Header("active: "), ui.VaultName(entry.Name))
		printf("%s %s\n", ui.Header("path:   "), entry.Path)
		printf("%s %s\n", ui.Header("workdir:"), entry.Workdir)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addPath, "path", "", "Vault directory")
	addCmd.Flags().StringVar(&addName, "name", "", "Registry name (default: directory name)")
	addCmd.Flags().StringVar(&addWorkdir, "workdir", registry.RootWorkdir, "Working folder inside the vault")
	addCmd.Flags().BoolVar(&addForce, "force", false, "Replace an entry with the same name")
	addCmd.Flags().BoolVar(&addAllowMissing, "allow-missing", false, "Register even without a .obsidian directory")
	addCmd.Flags().BoolVar(&addSetActive, "set-active", false, "Make this the active vault")
	_ = addCmd.MarkFlagRequired("path")

	removeCmd.Flags().StringVar(&removeName, "name", "", "Vault name")
	_ = removeCmd.MarkFlagRequired("name")

	setActiveCmd.Flags().StringVar(&setActiveName, "name", "", "Vault name")
	_ = setActiveCmd.MarkFlagRequired("name")

	setWorkdirCmd.Flags().StringVar(&setWorkdirName, "name", "", "Vault name (default: active vault)")
	setWorkdirCmd.Flags().StringVar(&setWorkdirValue, "workdir", "", "Folder relative to the vault root")
	_ = setWorkdirCmd.MarkFlagRequired("workdir")

	rootCmd.AddCommand(listCmd, addCmd, removeCmd, setActiveCmd, setWorkdirCmd, activeCmd)
}
