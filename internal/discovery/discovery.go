// Package discovery finds vaults Obsidian already knows about and merges them
// into the registry.
//
// The Obsidian CLI is asked first. When it is missing, fails, or prints
// nothing usable, Obsidian's own config files are read instead. A CLI failure
// is never an error for the caller; it only selects the fallback.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/paths"
	"github.com/aidanlsb/vaultreg/internal/registry"
)

const (
	// MethodCLI marks candidates listed by the Obsidian CLI.
	MethodCLI = "cli"
	// MethodConfig marks candidates read from Obsidian config files.
	MethodConfig = "config"

	sourcePrefix = "discovery:"
)

// configFileNames are read in order from every config directory; the first
// one to mention a path names it.
var configFileNames = []string{"vaults.json", "obsidian.json"}

// Candidate is a discovered vault before it is merged.
type Candidate struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Source string `json:"source"`
}

// Result is one discovery pass.
type Result struct {
	Method     string      `json:"method"`
	Candidates []Candidate `json:"candidates"`
	// CLIError is why CLI discovery was skipped, when it was.
	CLIError error `json:"-"`
}

// Engine runs discovery.
type Engine struct {
	Runner   obsidiancli.Runner
	Binary   string
	ExtraEnv []string

	// ConfigFiles replaces the platform config file list when non-empty.
	ConfigFiles []string
	// ExtraConfigDirs are searched before the platform directories.
	ExtraConfigDirs []string

	// GOOS and Getenv default to the running platform; tests override them.
	GOOS   string
	Getenv func(string) string
}

// Discover lists candidate vaults, deduplicated by normalized path.
func (e *Engine) Discover(ctx context.Context) (Result, error) {
	if e.Runner != nil {
		found, err := e.discoverViaCLI(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if err == nil {
			return Result{Method: MethodCLI, Candidates: dedupe(found)}, nil
		}
		result := e.discoverViaConfig()
		result.CLIError = err
		return result, nil
	}
	return e.discoverViaConfig(), nil
}

func (e *Engine) discoverViaCLI(ctx context.Context) ([]Candidate, error) {
	binary := e.Binary
	if binary == "" {
		binary = obsidiancli.DefaultBinary
	}
	out, err := e.Runner.Run(ctx, obsidiancli.Invocation{
		Binary:   binary,
		Args:     []string{"vaults", "verbose"},
		ExtraEnv: e.ExtraEnv,
	})
	if err != nil {
		return nil, err
	}
	if !out.OK() {
		return nil, fmt.Errorf("%w: vaults exited with status %d", obsidiancli.ErrExternalTool, out.ExitCode)
	}

	found := parseCLIOutput(out.Stdout)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: vaults printed no recognizable entries", obsidiancli.ErrExternalTool)
	}
	for i := range found {
		found[i].Source = sourcePrefix + MethodCLI
	}
	return found, nil
}

func (e *Engine) discoverViaConfig() Result {
	var found []Candidate
	for _, file := range e.configFiles() {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			continue
		}
		for _, c := range extractVaults(payload, false) {
			c.Source = sourcePrefix + file
			found = append(found, c)
		}
	}
	return Result{Method: MethodConfig, Candidates: dedupe(found)}
}

func (e *Engine) configFiles() []string {
	if len(e.ConfigFiles) > 0 {
		out := make([]string, 0, len(e.ConfigFiles))
		for _, f := range e.ConfigFiles {
			if expanded, err := paths.ExpandHome(f); err == nil {
				out = append(out, expanded)
			}
		}
		return out
	}

	dirs := append([]string{}, e.ExtraConfigDirs...)
	dirs = append(dirs, PlatformConfigDirs(e.goos(), e.getenv)...)

	var files []string
	for _, dir := range dirs {
		expanded, err := paths.ExpandHome(dir)
		if err != nil {
			continue
		}
		for _, name := range configFileNames {
			files = append(files, filepath.Join(expanded, name))
		}
	}
	return files
}

func (e *Engine) goos() string {
	if e.GOOS != "" {
		return e.GOOS
	}
	return runtime.GOOS
}

func (e *Engine) getenv(key string) string {
	if e.Getenv != nil {
		return e.Getenv(key)
	}
	return os.Getenv(key)
}

// PlatformConfigDirs lists where Obsidian keeps its app config per OS.
func PlatformConfigDirs(goos string, getenv func(string) string) []string {
	switch goos {
	case "darwin":
		return []string{"~/Library/Application Support/Obsidian"}
	case "windows":
		var dirs []string
		for _, key := range []string{"APPDATA", "LOCALAPPDATA"} {
			if base := getenv(key); base != "" {
				dirs = append(dirs, filepath.Join(base, "Obsidian"))
			}
		}
		return dirs
	default:
		return []string{"~/.config/obsidian", "~/.config/Obsidian"}
	}
}

// dedupe keeps the first candidate for each normalized path and normalizes
// the path in place. Candidates whose path cannot be normalized are dropped.
func dedupe(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		p, err := registry.NormalizePath(c.Path)
		if err != nil || seen[p] {
			continue
		}
		seen[p] = true
		c.Path = p
		out = append(out, c)
	}
	return out
}
