// Package obsidiancli spawns the external Obsidian CLI. It is the only place
// a subprocess is started; discovery and the command gateway both go through
// a Runner so tests can substitute a fake.
package obsidiancli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/aidanlsb/vaultreg/internal/shellquote"
)

// ErrExternalTool reports a missing binary or a non-zero exit.
var ErrExternalTool = errors.New("external tool failed")

const (
	// DefaultBinary is used when nothing else names the CLI.
	DefaultBinary = "obsidian"

	// BinaryEnv names the environment variable that overrides the binary.
	BinaryEnv = "OBSIDIAN_CLI_BIN"
)

// Invocation is a fully built command line.
type Invocation struct {
	Binary string
	Args   []string
	// ExtraEnv is appended to the current process environment.
	ExtraEnv []string
}

// CommandLine renders the invocation for display.
func (inv Invocation) CommandLine() string {
	return shellquote.Join(append([]string{inv.Binary}, inv.Args...)...)
}

// Output is what the subprocess produced. ExitCode is -1 when the process
// never ran.
type Output struct {
	Binary   string `json:"binary"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// OK reports a zero exit status.
func (o Output) OK() bool { return o.ExitCode == 0 }

// Runner executes an invocation and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// ExecRunner runs invocations with os/exec.
type ExecRunner struct {
	// LookPath resolves the binary; nil means exec.LookPath.
	LookPath func(string) (string, error)
}

// Run executes inv. Output is always returned, including on error.
func (r ExecRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	out := Output{Binary: inv.Binary, ExitCode: -1}

	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	resolved, err := lookPath(inv.Binary)
	if err != nil {
		out.Stderr = fmt.Sprintf("Obsidian CLI not found: %s", inv.Binary)
		return out, fmt.Errorf("%w: obsidian CLI not found: %s", ErrExternalTool, inv.Binary)
	}
	out.Binary = resolved

	cmd := exec.CommandContext(ctx, resolved, inv.Args...)
	if len(inv.ExtraEnv) > 0 {
		cmd.Env = append(os.Environ(), inv.ExtraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	if err == nil {
		out.ExitCode = 0
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, fmt.Errorf("%w: %s exited with status %d", ErrExternalTool, inv.Binary, out.ExitCode)
	}
	return out, fmt.Errorf("%w: run %s: %v", ErrExternalTool, inv.Binary, err)
}

// ResolveBinary picks the CLI binary: explicit flag, then OBSIDIAN_CLI_BIN from
// the process environment, then from the skill .env, then the configured
// value, then "obsidian".
func ResolveBinary(flag string, dotenv map[string]string, configured string) string {
	for _, candidate := range []string{
		flag,
		os.Getenv(BinaryEnv),
		dotenv[BinaryEnv],
		configured,
	} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return DefaultBinary
}

// ParseJSON decodes stdout when it looks like a JSON document.
func ParseJSON(stdout string) (any, bool) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}
	return v, true
}
