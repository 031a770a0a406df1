package registry

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aidanlsb/vaultreg/internal/testutil"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "vaults.json"))

	reg, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 0 || reg.Active != "" {
		t.Fatalf("expected empty registry, got %#v", reg)
	}
}

func TestLoadCorruptIsSurfacedAndFileKept(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"vaults": {`,
		"not an object":  `["a"]`,
		"null":           `null`,
		"empty":          ``,
		"missing path":   `{"vaults": {"V": {"workdir": "."}}, "active": null}`,
		"future version": `{"schema_version": 99, "vaults": {}, "active": null}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vaults.json")
			testutil.WriteFile(t, path, content)

			_, err := NewStore(path).Load()
			if !errors.Is(err, ErrCorruptRegistry) {
				t.Fatalf("expected ErrCorruptRegistry, got %v", err)
			}
			testutil.AssertFileUnchanged(t, path, content)
		})
	}
}

func TestLoadClearsDanglingActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaults.json")
	testutil.WriteFile(t, path, `{"vaults": {"V": {"path": "/tmp/V", "workdir": ""}}, "active": "gone"}`)

	reg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Active != "" {
		t.Fatalf("expected dangling active to be cleared, got %q", reg.Active)
	}
	if reg.Vaults["V"].Workdir != RootWorkdir {
		t.Fatalf("expected empty workdir to load as root, got %q", reg.Vaults["V"].Workdir)
	}
	if reg.Vaults["V"].Name != "V" {
		t.Fatalf("expected name populated from key")
	}
}

func TestSaveLoadSaveRoundTrip(t *testing.T) {
	fixedClock(t)
	parent := t.TempDir()
	reg := New()
	for _, name := range []string{"work", "personal"} {
		v := testutil.NewTestVault(t).Named(name).BuildIn(parent)
		if _, err := reg.Add(name, v.Path, AddOptions{Workdir: "Inbox"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := reg.SetActive("work"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	store := NewStore(filepath.Join(t.TempDir(), "state", "vaults.json"))
	if err := store.Save(reg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.Save(loaded); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	again, err := store.Load()
	if err != nil {
		t.Fatalf("Load again: %v", err)
	}

	if !reflect.DeepEqual(reg, again) {
		t.Fatalf("round trip mismatch\nwant: %#v\ngot:  %#v", reg, again)
	}
}

func TestSaveWritesDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaults.json")
	store := NewStore(path)

	if err := store.Save(New()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	for _, want := range []string{`"schema_version": 1`, `"vaults": {}`, `"active": null`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in document, got:\n%s", want, content)
		}
	}
}

func TestLoadNormalizesStoredPaths(t *testing.T) {
	v := testutil.NewTestVault(t).Named("Notes").Build()
	path := filepath.Join(t.TempDir(), "vaults.json")
	testutil.WriteFile(t, path, `{"schema_version": 1, "vaults": {"notes": {"path": "`+v.Path+`/", "workdir": "."}}, "active": "notes"}`)

	reg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reg.Vaults["notes"].Path; got != v.Path {
		t.Fatalf("stored path = %q, want %q", got, v.Path)
	}
	entry, ok := reg.FindByPath(v.Path)
	if !ok || entry.Name != "notes" {
		t.Fatalf("FindByPath(%q) = %+v, %v", v.Path, entry, ok)
	}
}

func TestFindByPathNormalizesStoredSide(t *testing.T) {
	reg := New()
	reg.Vaults["notes"] = VaultEntry{Name: "notes", Path: "/x/Notes/./", Workdir: RootWorkdir}

	if _, ok := reg.FindByPath("/x/Notes"); !ok {
		t.Fatal("expected hand-built entry to match its cleaned path")
	}
}
