package cli

import (
	"encoding/json"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/aidanlsb/vaultreg/internal/gateway"
	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
	"github.com/aidanlsb/vaultreg/internal/testutil"
)

func TestParsePassthrough(t *testing.T) {
	t.Run("splits arguments and flags", func(t *testing.T) {
		req, err := parsePassthrough([]string{"search", "query=a=b", "limit=5", "case", " "})
		if err != nil {
			t.Fatalf("parsePassthrough: %v", err)
		}
		if req.Subcommand != "search" {
			t.Fatalf("subcommand = %q", req.Subcommand)
		}
		if req.Args["query"] != "a=b" || req.Args["limit"] != "5" || len(req.Args) != 2 {
			t.Fatalf("args = %#v", req.Args)
		}
		if !slices.Equal(req.Flags, []string{"case"}) {
			t.Fatalf("flags = %#v", req.Flags)
		}
	})

	t.Run("empty value is kept", func(t *testing.T) {
		req, err := parsePassthrough([]string{"create", "name=Note", "content="})
		if err != nil {
			t.Fatalf("parsePassthrough: %v", err)
		}
		if v, ok := req.Args["content"]; !ok || v != "" {
			t.Fatalf("expected empty content argument, got %#v", req.Args)
		}
	})

	for _, tokens := range [][]string{
		{"path=x"},
		{"read", "=x"},
		{"read", "path=a", "path=b"},
	} {
		if _, err := parsePassthrough(tokens); err == nil {
			t.Errorf("%v: expected error", tokens)
		}
	}
}

type passthroughFixture struct {
	*sandbox
	vaultPath string
}

func newPassthroughFixture(t *testing.T) passthroughFixture {
	t.Helper()
	s := newSandbox(t)
	v := testutil.NewTestVault(t).Named("Work").Build()
	if res := s.run("add", "--path", v.Path, "--name", "work", "--set-active"); res.exit != ExitOK {
		t.Fatalf("add exit %d: %s", res.exit, res.stderr)
	}
	return passthroughFixture{sandbox: s, vaultPath: v.Path}
}

func decodeGatewayResult(t *testing.T, stdout string) gateway.Result {
	t.Helper()
	var res gateway.Result
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("expected gateway result JSON, got %v: %s", err, stdout)
	}
	return res
}

func TestObsidianPassthrough(t *testing.T) {
	f := newPassthroughFixture(t)
	f.runner.Respond = func(inv obsidiancli.Invocation) (obsidiancli.Output, error) {
		return obsidiancli.Output{Binary: inv.Binary, Stdout: `{"content":"hello"}`}, nil
	}

	res := f.run("obsidian", "--binary", "/opt/obsidian", "read", "path=Inbox/today.md")
	if res.exit != ExitOK {
		t.Fatalf("exit %d: %s %s", res.exit, res.stdout, res.stderr)
	}
	if f.runner.CallCount() != 1 {
		t.Fatalf("expected one call, got %d", f.runner.CallCount())
	}
	call := f.runner.Calls[0]
	want := []string{"vault=" + f.vaultPath, "read", "path=Inbox/today.md"}
	if call.Binary != "/opt/obsidian" || !slices.Equal(call.Args, want) {
		t.Fatalf("invocation = %#v, want args %v", call, want)
	}

	out := decodeGatewayResult(t, res.stdout)
	if !out.OK || out.Vault != "work" || out.Stdout != `{"content":"hello"}` {
		t.Fatalf("unexpected result %+v", out)
	}
	parsed, ok := out.Parsed.(map[string]any)
	if !ok || parsed["content"] != "hello" {
		t.Fatalf("parsed = %#v", out.Parsed)
	}
}

func TestObsidianRawOutput(t *testing.T) {
	f := newPassthroughFixture(t)
	f.runner.Respond = func(inv obsidiancli.Invocation) (obsidiancli.Output, error) {
		return obsidiancli.Output{Binary: inv.Binary, Stdout: "a.md\nb.md\n"}, nil
	}

	res := f.run("obsidian", "--raw", "files")
	if res.exit != ExitOK || res.stdout != "a.md\nb.md\n" {
		t.Fatalf("exit=%d stdout=%q", res.exit, res.stdout)
	}
}

func TestObsidianDeleteGate(t *testing.T) {
	f := newPassthroughFixture(t)

	res := f.run("obsidian", "delete", "file=Old")
	if res.exit != ExitConfirmationRequired {
		t.Fatalf("exit = %d, want %d", res.exit, ExitConfirmationRequired)
	}
	if f.runner.CallCount() != 0 {
		t.Fatalf("refused command must not run, got %d calls", f.runner.CallCount())
	}
	out := decodeGatewayResult(t, res.stdout)
	if out.OK || !strings.Contains(out.Stderr, "delete") || !strings.Contains(out.Stderr, "--force-delete") {
		t.Fatalf("unexpected result %+v", out)
	}

	t.Run("without target", func(t *testing.T) {
		res := f.run("obsidian", "delete")
		if res.exit != ExitConfirmationRequired || f.runner.CallCount() != 0 {
			t.Fatalf("exit=%d calls=%d", res.exit, f.runner.CallCount())
		}
	})

	t.Run("json envelope", func(t *testing.T) {
		res := f.run("--json", "obsidian", "plugin:uninstall", "id=dataview")
		env := res.envelope(t)
		if res.exit != ExitConfirmationRequired || env.Error == nil || env.Error.Code != ErrConfirmationRequired {
			t.Fatalf("exit=%d envelope=%+v", res.exit, env)
		}
		if f.runner.CallCount() != 0 {
			t.Fatalf("refused command must not run")
		}
	})

	t.Run("forced", func(t *testing.T) {
		res := f.run("obsidian", "--force-delete", "delete", "file=Old", "permanent")
		if res.exit != ExitOK {
			t.Fatalf("exit = %d: %s", res.exit, res.stdout)
		}
		if f.runner.CallCount() != 1 {
			t.Fatalf("expected one call, got %d", f.runner.CallCount())
		}
		want := []string{"vault=" + f.vaultPath, "delete", "file=Old", "permanent"}
		if !slices.Equal(f.runner.Calls[0].Args, want) {
			t.Fatalf("args = %v, want %v", f.runner.Calls[0].Args, want)
		}
	})
}

func TestObsidianFailures(t *testing.T) {
	t.Run("tool exits non-zero", func(t *testing.T) {
		f := newPassthroughFixture(t)
		f.runner.Respond = testutil.FailingRunner(3, "no such file").Respond

		res := f.run("obsidian", "read", "path=missing.md")
		if res.exit != ExitExternalTool {
			t.Fatalf("exit = %d, want %d", res.exit, ExitExternalTool)
		}
		out := decodeGatewayResult(t, res.stdout)
		if out.OK || out.ExitCode != 3 || out.Stderr != "no such file" {
			t.Fatalf("unexpected result %+v", out)
		}
	})

	t.Run("unknown vault", func(t *testing.T) {
		f := newPassthroughFixture(t)
		res := f.run("--json", "obsidian", "--vault", "nope", "files")
		if res.exit != ExitNotFound {
			t.Fatalf("exit = %d, want %d", res.exit, ExitNotFound)
		}
		if f.runner.CallCount() != 0 {
			t.Fatalf("nothing should run for an unknown vault")
		}
	})

	t.Run("missing required key", func(t *testing.T) {
		f := newPassthroughFixture(t)
		res := f.run("--json", "obsidian", "move", "file=a.md")
		if res.exit != ExitInvalidInput {
			t.Fatalf("exit = %d, want %d", res.exit, ExitInvalidInput)
		}
		if env := res.envelope(t); env.Error == nil || !strings.Contains(env.Error.Message, "to") {
			t.Fatalf("unexpected envelope %+v", env)
		}
	})

	t.Run("explicit vault argument", func(t *testing.T) {
		f := newPassthroughFixture(t)
		res := f.run("obsidian", "files", "vault=/elsewhere")
		if res.exit != ExitInvalidInput || f.runner.CallCount() != 0 {
			t.Fatalf("exit=%d calls=%d", res.exit, f.runner.CallCount())
		}
	})
}

func TestDiscoverMerge(t *testing.T) {
	s := newSandbox(t)
	s.runner.Respond = testutil.StdoutRunner(`[{"name":"Work Notes","path":"/vaults/work"},{"name":"Home","path":"/vaults/home"}]`).Respond

	var preview discoverResult
	s.run("--json", "discover").data(t, &preview)
	if preview.Method != "cli" || len(preview.Candidates) != 2 || len(preview.Added) != 0 {
		t.Fatalf("unexpected preview %+v", preview)
	}
	testutil.AssertFileNotExists(t, s.registryPath())

	var first discoverResult
	s.run("--json", "discover", "--merge").data(t, &first)
	if len(first.Added) != 2 || first.Added[0].Name != "work-notes" || first.Added[1].Name != "home" {
		t.Fatalf("unexpected first merge %+v", first)
	}

	before, err := os.ReadFile(s.registryPath())
	if err != nil {
		t.Fatal(err)
	}
	var second discoverResult
	s.run("--json", "discover", "--merge").data(t, &second)
	if len(second.Added) != 0 || len(second.Kept) != 2 {
		t.Fatalf("second merge should add nothing, got %+v", second)
	}
	testutil.AssertFileUnchanged(t, s.registryPath(), string(before))

	var list listData
	s.run("--json", "list").data(t, &list)
	if len(list.Vaults) != 2 || list.Active != nil {
		t.Fatalf("unexpected registry after merge %+v", list)
	}
}
