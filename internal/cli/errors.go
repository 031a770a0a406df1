package cli

import (
	"errors"

	"github.com/aidanlsb/vaultreg/docs"
	"github.com/aidanlsb/vaultreg/internal/gateway"
	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/paths"
	"github.com/aidanlsb/vaultreg/internal/registry"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	ErrInternal             = "INTERNAL_ERROR"
	ErrInvalidInput         = "INVALID_INPUT"
	ErrConfigInvalid        = "CONFIG_INVALID"
	ErrRegistryCorrupt      = "REGISTRY_CORRUPT"
	ErrDuplicateName        = "DUPLICATE_NAME"
	ErrVaultNotFound        = "VAULT_NOT_FOUND"
	ErrVaultInvalid         = "VAULT_INVALID"
	ErrExternalToolFailed   = "EXTERNAL_TOOL_FAILED"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"
)

// Process exit codes. Each error code maps to exactly one.
const (
	ExitOK                   = 0
	ExitInternal             = 1
	ExitInvalidInput         = 2
	ExitConfig               = 3
	ExitRegistryCorrupt      = 4
	ExitDuplicateName        = 5
	ExitNotFound             = 6
	ExitInvalidVault         = 7
	ExitExternalTool         = 8
	ExitConfirmationRequired = 10
)

var errorClasses = []struct {
	target error
	code   string
	exit   int
}{
	{gateway.ErrConfirmationRequired, ErrConfirmationRequired, ExitConfirmationRequired},
	{obsidiancli.ErrExternalTool, ErrExternalToolFailed, ExitExternalTool},
	{registry.ErrCorruptRegistry, ErrRegistryCorrupt, ExitRegistryCorrupt},
	{registry.ErrDuplicateName, ErrDuplicateName, ExitDuplicateName},
	{registry.ErrNotFound, ErrVaultNotFound, ExitNotFound},
	{registry.ErrInvalidVault, ErrVaultInvalid, ExitInvalidVault},
	{paths.ErrConfiguration, ErrConfigInvalid, ExitConfig},
	{registry.ErrInvalidInput, ErrInvalidInput, ExitInvalidInput},
	{docs.ErrUnknownTopic, ErrInvalidInput, ExitInvalidInput},
}

// classify maps err to its stable code and exit status.
func classify(err error) (string, int) {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c.code, c.exit
		}
	}
	return ErrInternal, ExitInternal
}

// commandError is an error that has already been classified and, in JSON
// mode, written to stdout.
type commandError struct {
	err        error
	code       string
	exit       int
	suggestion string
	// reported means nothing more should be printed for this error.
	reported bool
}

func (e *commandError) Error() string { return e.err.Error() }

func (e *commandError) Unwrap() error { return e.err }

// ExitCode returns the process exit status for an error from Execute.
// Errors that never reached a command are usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *commandError
	if errors.As(err, &ce) {
		return ce.exit
	}
	return ExitInvalidInput
}
