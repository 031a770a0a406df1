package cli

import (
	"fmt"

	"github.com/aidanlsb/vaultreg/internal/audit"
	"github.com/aidanlsb/vaultreg/internal/config"
	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/paths"
	"github.com/aidanlsb/vaultreg/internal/registry"
	"github.com/aidanlsb/vaultreg/internal/ui"
)

// newRunner builds the Obsidian CLI runner; tests replace it.
var newRunner = func() obsidiancli.Runner { return obsidiancli.ExecRunner{} }

// appContext is everything a command needs, resolved fresh per invocation.
type appContext struct {
	layout *paths.Layout
	cfg    *config.Config
	env    config.Env
	store  *registry.Store
	log    *audit.Logger
}

// loadAppContext resolves the data directory, creates it on first use, and
// reads the tool settings. The registry itself is loaded by each command.
func loadAppContext() (*appContext, error) {
	layout, err := paths.Resolve(paths.Options{
		SkillRoot:   skillRootFlag,
		SkillName:   skillNameFlag,
		ProjectRoot: projectRootFlag,
		DataRoot:    dataRootFlag,
		Prompter:    prompter(),
	})
	if err != nil {
		return nil, err
	}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}
	if _, err := config.SeedEnv(layout); err != nil {
		return nil, fmt.Errorf("%w: %v", paths.ErrConfiguration, err)
	}
	if _, err := config.CreateDefault(layout.ConfigPath()); err != nil {
		return nil, fmt.Errorf("%w: %v", paths.ErrConfiguration, err)
	}

	cfg, err := config.LoadFrom(layout.ConfigPath())
	if err != nil {
		return nil, err
	}
	env, err := config.LoadEnv(layout.EnvPath())
	if err != nil {
		return nil, err
	}

	ui.ConfigureTheme(cfg.UI.Accent)
	ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

	return &appContext{
		layout: layout,
		cfg:    cfg,
		env:    env,
		store:  registry.NewStore(layout.RegistryPath()),
		log:    audit.New(layout.LogsDir(), true),
	}, nil
}

// binary resolves the Obsidian CLI binary for this invocation.
func (a *appContext) binary(flag string) string {
	return obsidiancli.ResolveBinary(flag, a.env, a.cfg.ObsidianBin)
}

// logResult records an operation; failures to log only warn.
func (a *appContext) logResult(op, vault, path string, opErr error, extra map[string]any) {
	if err := a.log.LogResult(op, vault, path, opErr, extra); err != nil && !isJSONOutput() {
		fmt.Fprintln(stderr, ui.Warningf("could not write operation log: %v", err))
	}
}
