package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/aidanlsb/vaultreg/internal/atomicfile"
	"github.com/aidanlsb/vaultreg/internal/paths"
)

// Keys the skill owns in its .env. Everything else is passed through to the
// Obsidian CLI environment.
const (
	EnvSkillRoot    = "SKILL_ROOT"
	EnvSkillDataDir = "SKILL_DATA_DIR"
)

// Env is the parsed contents of a skill .env file.
type Env map[string]string

// LoadEnv reads a .env file. A missing file yields an empty Env.
func LoadEnv(path string) (Env, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Env{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", paths.ErrConfiguration, path, err)
	}
	return Env(values), nil
}

// SeedEnv writes a .env holding the skill root and data dir when none exists
// at layout.EnvPath(). Existing files are never rewritten.
func SeedEnv(layout *paths.Layout) (bool, error) {
	path := layout.EnvPath()
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	content, err := godotenv.Marshal(map[string]string{
		EnvSkillRoot:    layout.SkillRoot,
		EnvSkillDataDir: layout.DataDir,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := atomicfile.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// Passthrough returns the KEY=value pairs to add to the Obsidian CLI
// environment, sorted by key.
func (e Env) Passthrough() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		if k == EnvSkillRoot || k == EnvSkillDataDir {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e[k])
	}
	return out
}
