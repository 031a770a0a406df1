// Package gateway forwards structured commands to the Obsidian CLI against a
// registered vault.
//
// Destructive subcommands are refused outright unless the request carries
// Force. The gate never prompts, so unattended callers cannot confirm their
// way past it.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/registry"
)

// ErrConfirmationRequired is returned for a destructive subcommand without
// Force. No process is started.
var ErrConfirmationRequired = errors.New("confirmation required")

var now = time.Now

// VaultKey is the argument the gateway injects; callers may not set it.
const VaultKey = "vault"

// Request is one passthrough call.
type Request struct {
	// Vault is a registry name; empty means the active vault.
	Vault      string
	Subcommand string
	Args       map[string]string
	// Flags are bare tokens such as "permanent" or "silent".
	Flags []string
	Force bool
}

// Result is the captured outcome of a dispatch.
type Result struct {
	OK        bool     `json:"ok"`
	Command   []string `json:"command"`
	ExitCode  int      `json:"exit_code"`
	Stdout    string   `json:"stdout"`
	Stderr    string   `json:"stderr"`
	Parsed    any      `json:"parsed"`
	Binary    string   `json:"binary"`
	Vault     string   `json:"vault"`
	VaultPath string   `json:"vault_path,omitempty"`
	TS        string   `json:"ts"`
}

// Gateway dispatches requests through Runner.
type Gateway struct {
	Runner   obsidiancli.Runner
	Binary   string
	ExtraEnv []string
}

// Prepare validates req against reg and builds the invocation without
// running it.
func (g *Gateway) Prepare(reg *registry.Registry, req Request) (obsidiancli.Invocation, Result, error) {
	sub := strings.TrimSpace(req.Subcommand)
	res := Result{Binary: g.binary(), ExitCode: -1, TS: timestamp()}
	if sub == "" {
		return obsidiancli.Invocation{}, res, fmt.Errorf("%w: no subcommand provided", registry.ErrInvalidInput)
	}
	if _, ok := req.Args[VaultKey]; ok {
		return obsidiancli.Invocation{}, res, fmt.Errorf("%w: pass the vault with --vault, not %s=", registry.ErrInvalidInput, VaultKey)
	}

	var args []string
	if NeedsVault(sub) {
		entry, err := reg.Resolve(req.Vault)
		if err != nil {
			return obsidiancli.Invocation{}, res, err
		}
		res.Vault = entry.Name
		res.VaultPath = entry.Path
		args = append(args, VaultKey+"="+entry.Path)
	}
	args = append(args, sub)

	keys := make([]string, 0, len(req.Args))
	for k := range req.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k+"="+req.Args[k])
	}
	args = append(args, req.Flags...)
	res.Command = args

	// Destructive commands are refused before their arguments are checked.
	if reason, destructive := Classify(sub, req.Flags); destructive && !req.Force {
		res.Stderr = fmt.Sprintf("Refusing destructive operation (%s) without --force-delete.", reason)
		return obsidiancli.Invocation{}, res, fmt.Errorf("%w: %s is destructive; rerun with --force-delete", ErrConfirmationRequired, sub)
	}
	if missing := MissingKeys(sub, req.Args); len(missing) > 0 {
		return obsidiancli.Invocation{}, res, fmt.Errorf("%w: %s requires %s", registry.ErrInvalidInput, sub, strings.Join(missing, ", "))
	}

	inv := obsidiancli.Invocation{Binary: g.binary(), Args: args, ExtraEnv: g.ExtraEnv}
	return inv, res, nil
}

// Dispatch validates and runs req. The returned Result carries whatever the
// process produced, including when err wraps obsidiancli.ErrExternalTool.
func (g *Gateway) Dispatch(ctx context.Context, reg *registry.Registry, req Request) (Result, error) {
	inv, res, err := g.Prepare(reg, req)
	if err != nil {
		return res, err
	}

	out, runErr := g.Runner.Run(ctx, inv)
	if out.Binary != "" {
		res.Binary = out.Binary
	}
	res.ExitCode = out.ExitCode
	res.Stdout = out.Stdout
	res.Stderr = out.Stderr
	res.OK = runErr == nil && out.OK()
	if parsed, ok := obsidiancli.ParseJSON(out.Stdout); ok {
		res.Parsed = parsed
	}
	res.TS = timestamp()

	if runErr != nil {
		return res, runErr
	}
	if !out.OK() {
		return res, fmt.Errorf("%w: %s exited with status %d", obsidiancli.ErrExternalTool, inv.Binary, out.ExitCode)
	}
	return res, nil
}

func (g *Gateway) binary() string {
	if strings.TrimSpace(g.Binary) == "" {
		return obsidiancli.DefaultBinary
	}
	return g.Binary
}

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}
