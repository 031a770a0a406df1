package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aidanlsb/vaultreg/internal/atomicfile"
)

// Store reads and writes the registry document at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

type document struct {
	SchemaVersion int                      `json:"schema_version"`
	Vaults        map[string]documentEntry `json:"vaults"`
	Active        *string                  `json:"active"`
}

type documentEntry struct {
	Path      string `json:"path"`
	Workdir   string `json:"workdir"`
	Source    string `json:"source,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Load reads the registry. A missing file yields an empty registry; anything
// unparsable yields ErrCorruptRegistry and the file is left alone.
func (s *Store) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", s.path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s is not a JSON object", ErrCorruptRegistry, s.path)
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRegistry, s.path, err)
	}
	if doc.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %s has schema_version %d, newest supported is %d", ErrCorruptRegistry, s.path, doc.SchemaVersion, SchemaVersion)
	}

	reg := New()
	for name, e := range doc.Vaults {
		if strings.TrimSpace(e.Path) == "" {
			return nil, fmt.Errorf("%w: %s: vault %q has no path", ErrCorruptRegistry, s.path, name)
		}
		path, err := NormalizePath(e.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: vault %q: %v", ErrCorruptRegistry, s.path, name, err)
		}
		workdir, err := NormalizeWorkdir(e.Workdir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: vault %q: %v", ErrCorruptRegistry, s.path, name, err)
		}
		reg.Vaults[name] = VaultEntry{
			Name:      name,
			Path:      path,
			Workdir:   workdir,
			Source:    e.Source,
			UpdatedAt: e.UpdatedAt,
		}
	}

	if doc.Active != nil {
		if _, ok := reg.Vaults[*doc.Active]; ok {
			reg.Active = *doc.Active
		}
	}

	return reg, nil
}

// Save writes the registry atomically.
func (s *Store) Save(reg *Registry) error {
	if reg == nil {
		reg = New()
	}

	doc := document{
		SchemaVersion: SchemaVersion,
		Vaults:        make(map[string]documentEntry, len(reg.Vaults)),
	}
	for name, e := range reg.Vaults {
		doc.Vaults[name] = documentEntry{
			Path:      e.Path,
			Workdir:   e.Workdir,
			Source:    e.Source,
			UpdatedAt: e.UpdatedAt,
		}
	}
	if _, ok := reg.Vaults[reg.Active]; ok && reg.Active != "" {
		active := reg.Active
		doc.Active = &active
	}

	if err := atomicfile.WriteJSON(s.path, doc, 0o644); err != nil {
		return fmt.Errorf("write registry %s: %w", s.path, err)
	}
	return nil
}
