package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/aidanlsb/vaultreg/internal/obsidiancli"
)

// FakeRunner stands in for the Obsidian CLI. It records every invocation and
// answers from Respond, or with an empty successful output.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []obsidiancli.Invocation
	Respond func(inv obsidiancli.Invocation) (obsidiancli.Output, error)
}

// Run records inv and returns the scripted response.
func (f *FakeRunner) Run(_ context.Context, inv obsidiancli.Invocation) (obsidiancli.Output, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, inv)
	f.mu.Unlock()

	if f.Respond != nil {
		return f.Respond(inv)
	}
	return obsidiancli.Output{Binary: inv.Binary}, nil
}

// CallCount returns how many invocations were made.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// StdoutRunner answers every invocation with stdout and exit code 0.
func StdoutRunner(stdout string) *FakeRunner {
	return &FakeRunner{Respond: func(inv obsidiancli.Invocation) (obsidiancli.Output, error) {
		return obsidiancli.Output{Binary: inv.Binary, Stdout: stdout}, nil
	}}
}

// FailingRunner answers every invocation with a non-zero exit.
func FailingRunner(exitCode int, stderr string) *FakeRunner {
	return &FakeRunner{Respond: func(inv obsidiancli.Invocation) (obsidiancli.Output, error) {
		out := obsidiancli.Output{Binary: inv.Binary, Stderr: stderr, ExitCode: exitCode}
		return out, fmt.Errorf("%w: %s exited with status %d", obsidiancli.ErrExternalTool, inv.Binary, exitCode)
	}}
}
