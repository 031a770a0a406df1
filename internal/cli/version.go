package cli

import (
	"runtime"
	"runtime/debug"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultreg/internal/buildinfo"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

const (
	defaultModulePath = "github.com/aidanlsb/vaultreg"
	develVersion      = "devel"
)

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vaultreg version and build information",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		printf("vaultreg %s\n", info.Version)
		table := ui.NewTable(2, nil)
		table.AddRow("module", info.ModulePath)
		if info.Commit != "" {
			table.AddRow("commit", info.Commit)
		}
		if info.CommitTime != "" {
			table.AddRow("commit time", info.CommitTime)
		}
		table.AddRow("modified", strconv.FormatBool(info.Modified))
		table.AddRow("go", info.GoVersion)
		table.AddRow("platform", info.GOOS+"/"+info.GOARCH)
		printf("%s", table.String())
		return nil
	},
}

// currentVersionInfo prefers the embedded build info and falls back to the
// values injected by ldflags.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    develVersion,
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		settings := make(map[string]string, len(bi.Settings))
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}

		setIf(&info.ModulePath, bi.Main.Path)
		setIf(&info.GoVersion, bi.GoVersion)
		setIf(&info.GOOS, settings["GOOS"])
		setIf(&info.GOARCH, settings["GOARCH"])
		info.Version = normalizeVersion(bi.Main.Version)
		info.Commit = settings["vcs.revision"]
		info.CommitTime = settings["vcs.time"]
		info.Modified, _ = strconv.ParseBool(settings["vcs.modified"])
	}

	if info.Version == develVersion {
		info.Version = normalizeVersion(buildinfo.Version)
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}
	return info
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func normalizeVersion(version string) string {
	if version == "" || version == "(devel)" {
		return develVersion
	}
	return version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
