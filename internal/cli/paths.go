package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultreg/internal/ui"
)

type pathsInfo struct {
	SkillRoot    string `json:"skill_root"`
	SkillName    string `json:"skill_name"`
	ProjectRoot  string `json:"project_root,omitempty"`
	DataDir      string `json:"data_dir"`
	RegistryPath string `json:"registry_path"`
	ConfigPath   string `json:"config_path"`
	EnvPath      string `json:"env_path"`
	LogPath      string `json:"log_path"`
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the resolved skill and data locations",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadAppContext()
		if err != nil {
			return handleError(err, "Pass --project-root or --data-root")
		}

		info := pathsInfo{
			SkillRoot:    app.layout.SkillRoot,
			SkillName:    app.layout.SkillName,
			ProjectRoot:  app.layout.ProjectRoot,
			DataDir:      app.layout.DataDir,
			RegistryPath: app.layout.RegistryPath(),
			ConfigPath:   app.layout.ConfigPath(),
			EnvPath:      app.layout.EnvPath(),
			LogPath:      app.log.Path(),
		}
		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		table := ui.NewTable(2, nil)
		table.AddRow("skill root", info.SkillRoot)
		table.AddRow("skill name", info.SkillName)
		if info.ProjectRoot != "" {
			table.AddRow("project root", info.ProjectRoot)
		}
		table.AddRow("data dir", ui.FilePath(info.DataDir))
		table.AddRow("registry", info.RegistryPath)
		table.AddRow("config", info.ConfigPath)
		table.AddRow("env", info.EnvPath)
		table.AddRow("log", info.LogPath)
		printf("%s", table.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
