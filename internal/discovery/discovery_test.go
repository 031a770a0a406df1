package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/testutil"
)

// isolatedEngine searches only dir for config files.
func isolatedEngine(runner obsidiancli.Runner, dir string) *Engine {
	return &Engine{
		Runner:          runner,
		ExtraConfigDirs: []string{dir},
		GOOS:            "windows",
		Getenv:          func(string) string { return "" },
	}
}

func candidatePaths(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Path)
	}
	return out
}

func TestDiscoverViaCLIJSON(t *testing.T) {
	runner := testutil.StdoutRunner(`[{"name":"Work","path":"/vaults/work"},{"name":"Home","path":"/vaults/home/"}]`)
	engine := isolatedEngine(runner, t.TempDir())
	engine.Binary = "/opt/obsidian"

	res, err := engine.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if res.Method != MethodCLI {
		t.Fatalf("expected cli method, got %q", res.Method)
	}
	want := []Candidate{
		{Name: "Work", Path: "/vaults/work", Source: "discovery:cli"},
		{Name: "Home", Path: "/vaults/home", Source: "discovery:cli"},
	}
	if !reflect.DeepEqual(res.Candidates, want) {
		t.Fatalf("candidates = %#v, want %#v", res.Candidates, want)
	}

	if runner.CallCount() != 1 {
		t.Fatalf("expected one CLI call, got %d", runner.CallCount())
	}
	call := runner.Calls[0]
	if call.Binary != "/opt/obsidian" || !slices.Equal(call.Args, []string{"vaults", "verbose"}) {
		t.Fatalf("unexpected invocation %#v", call)
	}
}

func TestParseCLIOutput(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{"nested map", `{"vaults":{"b":{"name":"B","path":"/v/b"},"a":{"label":"A","path":"/v/a"}}}`, []string{"A", "B"}},
		{"single object", `{"name":"Solo","path":"/v/solo"}`, []string{"Solo"}},
		{"tab separated", "Name\tPath\nWork\t/v/work\nHome\t/v/home\n", []string{"Work", "Home"}},
		{"space separated", "Work  12 notes  /v/work\nnoise\n", []string{"Work"}},
		{"rejects non-paths", "Work\tnot-a-path\n", nil},
		{"duplicates collapse", "Work\t/v/work\nWork\t/v/work\n", []string{"Work"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, c := range parseCLIOutput(tc.stdout) {
				got = append(got, c.Name)
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("names = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDiscoverFallsBackToConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "obsidian.json"), `{
  "vaults": {
    "f00d": {"path": "/vaults/alpha", "ts": 1, "open": true},
    "beef": {"path": "/vaults/beta"}
  }
}`)
	testutil.WriteFile(t, filepath.Join(dir, "vaults.json"), `{"vaults": [{"name": "Alpha Prime", "path": "/vaults/alpha"}]}`)

	cases := map[string]*testutil.FakeRunner{
		"missing binary": {Respond: func(inv obsidiancli.Invocation) (obsidiancli.Output, error) {
			return obsidiancli.Output{ExitCode: -1}, obsidiancli.ErrExternalTool
		}},
		"non-zero exit":    testutil.FailingRunner(2, "unknown command"),
		"malformed output": testutil.StdoutRunner("nothing useful here"),
	}
	for name, runner := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := isolatedEngine(runner, dir).Discover(context.Background())
			if err != nil {
				t.Fatalf("CLI failure must not surface: %v", err)
			}
			if res.Method != MethodConfig {
				t.Fatalf("expected config method, got %q", res.Method)
			}
			if !errors.Is(res.CLIError, obsidiancli.ErrExternalTool) {
				t.Fatalf("expected CLIError to record the failure, got %v", res.CLIError)
			}

			wantPaths := []string{"/vaults/alpha", "/vaults/beta"}
			if got := candidatePaths(res.Candidates); !slices.Equal(got, wantPaths) {
				t.Fatalf("paths = %v, want %v", got, wantPaths)
			}
			if res.Candidates[0].Name != "Alpha Prime" {
				t.Fatalf("vaults.json should name alpha, got %q", res.Candidates[0].Name)
			}
			if res.Candidates[1].Name != "beta" {
				t.Fatalf("expected name from last path segment, got %q", res.Candidates[1].Name)
			}
		})
	}
}

func TestDiscoverSkipsUnreadableConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "vaults.json"), `{not json`)

	res, err := isolatedEngine(nil, dir).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %#v", res.Candidates)
	}
}

func TestDiscoverExplicitConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.json")
	testutil.WriteFile(t, file, `[{"name": "Only", "path": "/vaults/only"}]`)

	engine := &Engine{ConfigFiles: []string{file}}
	res, err := engine.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Source != "discovery:"+file {
		t.Fatalf("unexpected candidates %#v", res.Candidates)
	}
}

func TestPlatformConfigDirs(t *testing.T) {
	env := map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`}
	got := PlatformConfigDirs("windows", func(k string) string { return env[k] })
	if len(got) != 1 || filepath.Base(got[0]) != "Obsidian" {
		t.Fatalf("unexpected windows dirs %v", got)
	}
	if got := PlatformConfigDirs("darwin", nil); len(got) != 1 {
		t.Fatalf("unexpected darwin dirs %v", got)
	}
	if got := PlatformConfigDirs("linux", nil); len(got) != 2 {
		t.Fatalf("unexpected linux dirs %v", got)
	}
}
