// Package config handles the per-skill tool settings kept in the data
// directory: config.toml for structured options and .env for environment
// values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/vaultreg/internal/paths"
)

// Config represents config.toml. Every field is optional.
type Config struct {
	// ObsidianBin names the Obsidian CLI binary when neither --binary nor
	// OBSIDIAN_CLI_BIN is set.
	ObsidianBin string `toml:"obsidian_bin"`

	// ObsidianConfigDirs are searched for vaults.json/obsidian.json before
	// the platform defaults during discovery.
	ObsidianConfigDirs []string `toml:"obsidian_config_dirs"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or a hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme for code blocks in the guide.
	CodeTheme string `toml:"code_theme"`
}

// LoadFrom loads config.toml from path. A missing file yields an empty config.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: failed to parse config %s: %v", paths.ErrConfiguration, path, err)
	}
	cfg.ObsidianBin = strings.TrimSpace(cfg.ObsidianBin)
	return &cfg, nil
}

const defaultConfig = `# vaultreg configuration

# Obsidian CLI binary. --binary and OBSIDIAN_CLI_BIN take precedence.
# obsidian_bin = "/usr/local/bin/obsidian"

# Extra directories holding vaults.json or obsidian.json, searched before the
# platform defaults by "vaultreg discover".
# obsidian_config_dirs = ["~/Dropbox/obsidian-config"]

# Optional UI accent color (ANSI 0-255 or #RRGGBB) and guide code theme.
# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault writes a commented config.toml at path if none exists. It
// reports whether a file was created.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
