// Package testutil provides fixtures shared by the package tests: temporary
// vault directories, a scripted stand-in for the Obsidian CLI, and file
// assertions.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestVault is a temporary vault directory.
type TestVault struct {
	Path    string
	t       *testing.T
	name    string
	marker  bool
	folders []string
	files   map[string]string
}

// NewTestVault starts a vault builder. The vault gets a .obsidian marker
// unless WithoutMarker is called. Call Build to create it.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:      t,
		name:   "Vault",
		marker: true,
		files:  make(map[string]string),
	}
}

// Named sets the vault's directory name.
func (v *TestVault) Named(name string) *TestVault {
	v.name = name
	return v
}

// WithoutMarker skips creating the .obsidian directory.
func (v *TestVault) WithoutMarker() *TestVault {
	v.marker = false
	return v
}

// WithFolder adds an empty folder, relative to the vault root.
func (v *TestVault) WithFolder(rel string) *TestVault {
	v.folders = append(v.folders, rel)
	return v
}

// WithFile adds a file, relative to the vault root.
func (v *TestVault) WithFile(rel, content string) *TestVault {
	v.files[rel] = content
	return v
}

// Build creates the vault under a fresh temp directory.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()
	return v.BuildIn(v.t.TempDir())
}

// BuildIn creates the vault as a child of parent.
func (v *TestVault) BuildIn(parent string) *TestVault {
	v.t.Helper()

	v.Path = filepath.Join(parent, v.name)
	v.mkdir(v.Path)
	if v.marker {
		v.mkdir(filepath.Join(v.Path, ".obsidian"))
	}
	for _, rel := range v.folders {
		v.mkdir(filepath.Join(v.Path, rel))
	}
	for rel, content := range v.files {
		v.writeFile(rel, content)
	}
	return v
}

func (v *TestVault) mkdir(dir string) {
	v.t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
}

func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	v.mkdir(filepath.Dir(fullPath))
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		v.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the vault.
func (v *TestVault) ReadFile(relPath string) string {
	v.t.Helper()
	content, err := os.ReadFile(filepath.Join(v.Path, relPath))
	if err != nil {
		v.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
