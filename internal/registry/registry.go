// Package registry holds the table of known vaults and the session state
// (active vault, per-vault working folder).
//
// A Registry is a plain value: load it, mutate it, save it. Nothing here
// caches state across invocations.
package registry

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/vaultreg/internal/paths"
)

const (
	// SchemaVersion is the current registry document version.
	SchemaVersion = 1

	// MarkerDir is the directory whose presence makes a folder a vault.
	MarkerDir = ".obsidian"

	// RootWorkdir is the stored workdir for "the vault root".
	RootWorkdir = "."

	// SourceManual tags entries registered with add.
	SourceManual = "manual"
)

var now = time.Now

// VaultEntry is one registered vault.
type VaultEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Workdir   string `json:"workdir"`
	Source    string `json:"source,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// WorkdirPath joins the vault path and its working folder.
func (e VaultEntry) WorkdirPath() string {
	if e.Workdir == "" || e.Workdir == RootWorkdir {
		return e.Path
	}
	return filepath.Join(e.Path, filepath.FromSlash(e.Workdir))
}

// Registry maps vault names to entries and tracks the active vault.
type Registry struct {
	Vaults map[string]VaultEntry
	// Active is the active vault name, or "" when none is set.
	Active string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{Vaults: make(map[string]VaultEntry)}
}

// AddOptions controls Add.
type AddOptions struct {
	Workdir string
	// Overwrite replaces an entry that already uses the name.
	Overwrite bool
	// AllowMissingMarker registers paths without a .obsidian directory,
	// e.g. vaults on a disconnected drive.
	AllowMissingMarker bool
	SetActive          bool
	Source             string
}

// Add registers a vault. An empty name defaults to the path's last segment.
func (r *Registry) Add(name, path string, opts AddOptions) (VaultEntry, error) {
	absPath, err := NormalizePath(path)
	if err != nil {
		return VaultEntry{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = filepath.Base(absPath)
	}
	if err := validateName(name); err != nil {
		return VaultEntry{}, err
	}

	if _, exists := r.Vaults[name]; exists && !opts.Overwrite {
		return VaultEntry{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	workdir, err := NormalizeWorkdir(opts.Workdir)
	if err != nil {
		return VaultEntry{}, err
	}

	if !opts.AllowMissingMarker && !IsVaultRoot(absPath) {
		return VaultEntry{}, fmt.Errorf("%w: missing %s in %s", ErrInvalidVault, MarkerDir, absPath)
	}

	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = SourceManual
	}

	entry := VaultEntry{
		Name:      name,
		Path:      absPath,
		Workdir:   workdir,
		Source:    source,
		UpdatedAt: timestamp(),
	}
	r.put(entry)
	if opts.SetActive {
		r.Active = name
	}
	return entry, nil
}

// Remove deletes a vault, clearing the active vault if it was the one removed.
func (r *Registry) Remove(name string) (VaultEntry, error) {
	entry, err := r.Lookup(name)
	if err != nil {
		return VaultEntry{}, err
	}
	delete(r.Vaults, entry.Name)
	if r.Active == entry.Name {
		r.Active = ""
	}
	return entry, nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (VaultEntry, error) {
	name = strings.TrimSpace(name)
	entry, ok := r.Vaults[name]
	if !ok || name == "" {
		return VaultEntry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// FindByPath returns the entry whose normalized path equals path.
func (r *Registry) FindByPath(path string) (VaultEntry, bool) {
	normalized, err := NormalizePath(path)
	if err != nil {
		return VaultEntry{}, false
	}
	for _, name := range r.Names() {
		entry := r.Vaults[name]
		if stored, err := NormalizePath(entry.Path); err == nil && stored == normalized {
			return entry, true
		}
	}
	return VaultEntry{}, false
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Vaults))
	for name := range r.Vaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List yields entries ordered by name. The name order is fixed when List is
// called; entries removed while iterating are skipped.
func (r *Registry) List() iter.Seq[VaultEntry] {
	names := r.Names()
	return func(yield func(VaultEntry) bool) {
		for _, name := range names {
			entry, ok := r.Vaults[name]
			if !ok {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Len reports the number of registered vaults.
func (r *Registry) Len() int { return len(r.Vaults) }

// SetActive marks name as the active vault.
func (r *Registry) SetActive(name string) (VaultEntry, error) {
	entry, err := r.Lookup(name)
	if err != nil {
		return VaultEntry{}, err
	}
	r.Active = entry.Name
	return entry, nil
}

// ActiveEntry returns the active vault, if one is set.
func (r *Registry) ActiveEntry() (VaultEntry, bool) {
	if r.Active == "" {
		return VaultEntry{}, false
	}
	entry, ok := r.Vaults[r.Active]
	return entry, ok
}

// Resolve returns the named vault, or the active vault when name is empty.
func (r *Registry) Resolve(name string) (VaultEntry, error) {
	if strings.TrimSpace(name) != "" {
		return r.Lookup(name)
	}
	if entry, ok := r.ActiveEntry(); ok {
		return entry, nil
	}
	return VaultEntry{}, fmt.Errorf("%w: no vault specified and no active vault set", ErrNotFound)
}

// SetWorkdir changes a vault's working folder. An empty name targets the
// active vault. The folder is not checked on disk; the vault may be offline.
func (r *Registry) SetWorkdir(name, workdir string) (VaultEntry, error) {
	entry, err := r.Resolve(name)
	if err != nil {
		return VaultEntry{}, err
	}
	normalized, err := NormalizeWorkdir(workdir)
	if err != nil {
		return VaultEntry{}, err
	}
	entry.Workdir = normalized
	entry.UpdatedAt = timestamp()
	r.put(entry)
	return entry, nil
}

// Insert stores an entry as-is after normalizing its path and workdir. It is
// used by discovery, which has already picked a free name.
func (r *Registry) Insert(entry VaultEntry) (VaultEntry, error) {
	if err := validateName(entry.Name); err != nil {
		return VaultEntry{}, err
	}
	if _, exists := r.Vaults[entry.Name]; exists {
		return VaultEntry{}, fmt.Errorf("%w: %s", ErrDuplicateName, entry.Name)
	}
	p, err := NormalizePath(entry.Path)
	if err != nil {
		return VaultEntry{}, err
	}
	w, err := NormalizeWorkdir(entry.Workdir)
	if err != nil {
		return VaultEntry{}, err
	}
	entry.Path = p
	entry.Workdir = w
	if entry.UpdatedAt == "" {
		entry.UpdatedAt = timestamp()
	}
	r.put(entry)
	return entry, nil
}

func (r *Registry) put(entry VaultEntry) {
	if r.Vaults == nil {
		r.Vaults = make(map[string]VaultEntry)
	}
	r.Vaults[entry.Name] = entry
}

// IsVaultRoot reports whether path is a directory containing .obsidian.
func IsVaultRoot(path string) bool {
	info, err := os.Stat(filepath.Join(path, MarkerDir))
	return err == nil && info.IsDir()
}

// NormalizePath returns the absolute, cleaned form used for storage and
// comparison.
func NormalizePath(path string) (string, error) {
	abs, err := paths.Absolute(path)
	if err != nil {
		return "", fmt.Errorf("%w: vault path %q: %v", ErrInvalidInput, path, err)
	}
	return abs, nil
}

// NormalizeWorkdir canonicalizes a vault-relative folder. The vault root is
// stored as ".". Segments equal to ".." are rejected.
func NormalizeWorkdir(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	value = strings.ReplaceAll(value, `\`, "/")

	parts := make([]string, 0, 4)
	for _, part := range strings.Split(value, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: workdir %q must not contain '..'", ErrInvalidInput, raw)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return RootWorkdir, nil
	}
	return strings.Join(parts, "/"), nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: vault name is required", ErrInvalidInput)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: vault name %q has surrounding whitespace", ErrInvalidInput, name)
	}
	return nil
}

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}
