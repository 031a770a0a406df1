package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultreg/internal/gateway"
	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/registry"
)

var (
	obsidianRaw    bool
	obsidianForce  bool
	obsidianBinary string
	obsidianVault  string
)

var obsidianCmd = &cobra.Command{
	Use:   "obsidian [flags] <subcommand> [key=value|flag ...]",
	Short: "Run an Obsidian CLI command against a registered vault",
	Long: `Run an Obsidian CLI command against a registered vault.

The vault (default: the active one) is passed to the CLI as vault=<path>.
Tokens containing "=" are key=value arguments; other tokens are passed as
bare flags. vaultreg's own flags must come before the subcommand.

Destructive subcommands (delete, plugin:uninstall, publish:remove,
workspace:delete, and any *:delete except task:delete) are refused with exit
code 10 unless --force-delete is given. Nothing is run when a command is
refused.

Output is a JSON envelope with ok, exit_code, stdout, stderr and parsed;
--raw writes the CLI's output unchanged.`,
	Example: `  vaultreg obsidian read path=Inbox/today.md
  vaultreg obsidian --vault work search query="meeting notes"
  vaultreg obsidian --force-delete delete file=Old permanent
  vaultreg obsidian --raw files`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parsePassthrough(args)
		if err != nil {
			return handleError(err, "Run 'vaultreg obsidian --help' for usage")
		}
		req.Vault = obsidianVault
		req.Force = obsidianForce

		app, reg, err := loadRegistry()
		if err != nil {
			return err
		}

		gw := &gateway.Gateway{
			Runner:   newRunner(),
			Binary:   app.binary(obsidianBinary),
			ExtraEnv: app.env.Passthrough(),
		}
		res, err := gw.Dispatch(cmd.Context(), reg, req)
		app.logResult("obsidian", res.Vault, res.VaultPath, err, map[string]any{
			"subcommand": req.Subcommand,
			"exit_code":  res.ExitCode,
			"forced":     req.Force,
		})

		if obsidianRaw {
			return writeRawResult(res, err)
		}
		return writeResultEnvelope(res, err)
	},
}

// parsePassthrough splits tokens into the subcommand, key=value arguments,
// and bare flags.
func parsePassthrough(tokens []string) (gateway.Request, error) {
	req := gateway.Request{
		Subcommand: strings.TrimSpace(tokens[0]),
		Args:       make(map[string]string),
	}
	if strings.Contains(req.Subcommand, "=") {
		return req, fmt.Errorf("%w: expected a subcommand before %q", registry.ErrInvalidInput, req.Subcommand)
	}
	for _, tok := range tokens[1:] {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			if tok = strings.TrimSpace(tok); tok != "" {
				req.Flags = append(req.Flags, tok)
			}
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return req, fmt.Errorf("%w: argument %q has no key", registry.ErrInvalidInput, tok)
		}
		if _, dup := req.Args[key]; dup {
			return req, fmt.Errorf("%w: argument %s given more than once", registry.ErrInvalidInput, key)
		}
		req.Args[key] = value
	}
	return req, nil
}

func writeRawResult(res gateway.Result, err error) error {
	io.WriteString(stdout, res.Stdout)
	if res.Stderr != "" {
		io.WriteString(stderr, res.Stderr)
		if !strings.HasSuffix(res.Stderr, "\n") {
			io.WriteString(stderr, "\n")
		}
	}
	if err == nil {
		return nil
	}
	ce := handleError(err, "").(*commandError)
	// The gate message and the tool's own stderr have already been shown.
	ce.reported = ce.reported || res.Stderr != ""
	return ce
}

func writeResultEnvelope(res gateway.Result, err error) error {
	if err != nil && res.Stderr == "" {
		res.Stderr = err.Error()
	}

	if isJSONOutput() {
		if err == nil {
			outputSuccess(res, nil)
			return nil
		}
		return handleErrorWithData(err, resultSuggestion(err), res)
	}

	outputJSON(res)
	if err == nil {
		return nil
	}
	ce := handleError(err, "").(*commandError)
	ce.reported = true
	return ce
}

func resultSuggestion(err error) string {
	switch {
	case errors.Is(err, gateway.ErrConfirmationRequired):
		return "Rerun with --force-delete if the deletion is intended"
	case errors.Is(err, obsidiancli.ErrExternalTool):
		return "Check the binary with --binary or OBSIDIAN_CLI_BIN"
	case errors.Is(err, registry.ErrNotFound):
		return "Pass --vault <name> or run 'vaultreg set-active --name <name>'"
	}
	return ""
}

func init() {
	obsidianCmd.Flags().BoolVar(&obsidianRaw, "raw", false, "Write the CLI's stdout/stderr unchanged")
	obsidianCmd.Flags().BoolVar(&obsidianForce, "force-delete", false, "Allow destructive subcommands")
	obsidianCmd.Flags().StringVar(&obsidianBinary, "binary", "", "Obsidian CLI binary")
	obsidianCmd.Flags().StringVar(&obsidianVault, "vault", "", "Vault name (default: active vault)")
	obsidianCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(obsidianCmd)
}
