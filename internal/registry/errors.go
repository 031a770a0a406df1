package registry

import "errors"

var (
	// ErrCorruptRegistry indicates the persisted document could not be parsed.
	// The file is never rewritten when this is returned.
	ErrCorruptRegistry = errors.New("corrupt registry")

	// ErrDuplicateName indicates a vault name is already registered.
	ErrDuplicateName = errors.New("duplicate vault name")

	// ErrNotFound indicates a vault name is not registered.
	ErrNotFound = errors.New("vault not found")

	// ErrInvalidVault indicates a path lacks the .obsidian marker directory.
	ErrInvalidVault = errors.New("not a vault")

	// ErrInvalidInput indicates a malformed name, path, or workdir.
	ErrInvalidInput = errors.New("invalid input")
)
