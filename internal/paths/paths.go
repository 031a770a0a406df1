// Package paths resolves where a skill lives and where it keeps its data.
//
// A skill is normally installed as <project>/<agent-dir>/skills/<skill>/.
// Its data lives outside the skill directory, under
// <project>/.skills-data/<skill-name>/, so reinstalling the skill does not
// wipe the registry.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration reports that the project root or data directory could not
// be determined.
var ErrConfiguration = errors.New("configuration error")

const (
	// DataDirName is the per-project directory holding data for all skills.
	DataDirName = ".skills-data"

	// SkillRootEnv overrides the default skill root.
	SkillRootEnv = "VAULTREG_SKILL_ROOT"

	// ManifestFile is the skill manifest whose front matter may carry the name.
	ManifestFile = "SKILL.md"

	registryFile = "vaults.json"
	configFile   = "config.toml"
	envFile      = ".env"
)

// layoutDirs are created inside the data directory by Ensure.
var layoutDirs = []string{"logs", "cache", "tmp", "bin"}

// Prompter asks the user a yes/no question. A nil Prompter means the session
// is not interactive.
type Prompter interface {
	Confirm(message string) bool
}

// Options carries the explicit overrides from flags and environment.
type Options struct {
	SkillRoot   string
	SkillName   string
	ProjectRoot string
	DataRoot    string
	Prompter    Prompter
}

// Layout is the resolved set of locations for one skill.
type Layout struct {
	SkillRoot   string `json:"skill_root"`
	SkillName   string `json:"skill_name"`
	ProjectRoot string `json:"project_root,omitempty"`
	DataDir     string `json:"data_dir"`
}

// RegistryPath is the JSON document holding the vault registry.
func (l *Layout) RegistryPath() string { return filepath.Join(l.DataDir, registryFile) }

// ConfigPath is the optional TOML settings file.
func (l *Layout) ConfigPath() string { return filepath.Join(l.DataDir, configFile) }

// EnvPath is the .env file with per-skill environment values.
func (l *Layout) EnvPath() string { return filepath.Join(l.DataDir, envFile) }

// LogsDir holds the operation log.
func (l *Layout) LogsDir() string { return filepath.Join(l.DataDir, "logs") }

// Resolve computes the layout without touching the filesystem beyond reading
// the skill manifest.
func Resolve(opts Options) (*Layout, error) {
	skillRoot := strings.TrimSpace(opts.SkillRoot)
	if skillRoot == "" {
		var err error
		skillRoot, err = DefaultSkillRoot()
		if err != nil {
			return nil, err
		}
	}
	skillRoot, err := Absolute(skillRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve skill root: %v", ErrConfiguration, err)
	}

	layout := &Layout{
		SkillRoot: skillRoot,
		SkillName: ResolveSkillName(skillRoot, opts.SkillName),
	}

	if dataRoot := strings.TrimSpace(opts.DataRoot); dataRoot != "" {
		abs, err := Absolute(dataRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve data root: %v", ErrConfiguration, err)
		}
		layout.DataDir = filepath.Join(abs, layout.SkillName)
		if opts.ProjectRoot != "" {
			layout.ProjectRoot, _ = Absolute(opts.ProjectRoot)
		}
		return layout, nil
	}

	projectRoot, err := ResolveProjectRoot(skillRoot, opts.ProjectRoot, opts.Prompter)
	if err != nil {
		return nil, err
	}
	layout.ProjectRoot = projectRoot
	layout.DataDir = filepath.Join(projectRoot, DataDirName, layout.SkillName)
	return layout, nil
}

// ResolveProjectRoot returns the override when given. Otherwise a skill root
// shaped like <project>/<agent-dir>/skills/<skill> yields <project>. Any
// other shape is ambiguous: the parent directory is offered to the prompter,
// and without confirmation resolution fails with ErrConfiguration.
func ResolveProjectRoot(skillRoot, override string, prompter Prompter) (string, error) {
	if strings.TrimSpace(override) != "" {
		abs, err := Absolute(override)
		if err != nil {
			return "", fmt.Errorf("%w: resolve project root: %v", ErrConfiguration, err)
		}
		return abs, nil
	}

	skillRoot = filepath.Clean(skillRoot)
	parent := filepath.Dir(skillRoot)
	if filepath.Base(parent) == "skills" {
		agentDir := filepath.Dir(parent)
		project := filepath.Dir(agentDir)
		if agentDir != parent && project != agentDir {
			return project, nil
		}
	}

	if prompter != nil && parent != skillRoot {
		if prompter.Confirm(fmt.Sprintf("Skill root %s is not inside a skills/ directory. Use %s as project root?", skillRoot, parent)) {
			return parent, nil
		}
	}

	return "", fmt.Errorf("%w: cannot determine project root from skill root %s; pass --project-root or --data-root", ErrConfiguration, skillRoot)
}

// Ensure creates the data directory and its fixed subdirectories.
func (l *Layout) Ensure() error {
	if err := os.MkdirAll(l.DataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %v", ErrConfiguration, err)
	}
	for _, name := range layoutDirs {
		if err := os.MkdirAll(filepath.Join(l.DataDir, name), 0o755); err != nil {
			return fmt.Errorf("%w: create %s directory: %v", ErrConfiguration, name, err)
		}
	}
	return nil
}

// DefaultSkillRoot returns $VAULTREG_SKILL_ROOT, or the parent of the
// directory holding the running executable (<skill>/bin/vaultreg).
func DefaultSkillRoot() (string, error) {
	if fromEnv := strings.TrimSpace(os.Getenv(SkillRootEnv)); fromEnv != "" {
		return fromEnv, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: locate executable: %v", ErrConfiguration, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// ResolveSkillName prefers the override, then the manifest's front matter
// name, then the skill directory's base name.
func ResolveSkillName(skillRoot, override string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	if name, ok := ManifestName(skillRoot); ok {
		return name
	}
	return filepath.Base(skillRoot)
}

// ManifestName reads the name key from SKILL.md front matter.
func ManifestName(skillRoot string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(skillRoot, ManifestFile))
	if err != nil {
		return "", false
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", false
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", false
	}

	var fm struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return "", false
	}
	name := strings.TrimSpace(fm.Name)
	return name, name != ""
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// Absolute expands "~" and returns a cleaned absolute path with no trailing
// separator. It does not require the path to exist.
func Absolute(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("path is empty")
	}
	expanded, err := ExpandHome(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
