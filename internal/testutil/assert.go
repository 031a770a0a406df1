package testutil

import (
	"os"
	"strings"
	"testing"
)

// AssertFileExists fails the test if path does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if path exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}

// AssertFileContains fails the test if the file at path lacks substr.
func AssertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if !strings.Contains(string(content), substr) {
		t.Errorf("expected %s to contain %q, got:\n%s", path, substr, content)
	}
}

// AssertFileUnchanged fails the test if the file at path no longer holds want.
func AssertFileUnchanged(t *testing.T, path, want string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if string(content) != want {
		t.Errorf("expected %s to be unchanged\nwant:\n%s\ngot:\n%s", path, want, content)
	}
}
