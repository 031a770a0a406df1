// Package audit provides an append-only operation log for registry
// mutations, discovery passes, and passthrough dispatches.
package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the log file inside the logs directory.
const FileName = "operations.log"

// Entry represents a single log entry.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Operation string         `json:"op"` // add, remove, set-active, set-workdir, discover, obsidian
	Vault     string         `json:"vault,omitempty"`
	Path      string         `json:"path,omitempty"`
	OK        bool           `json:"ok"`
	Error     string         `json:"error,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Logger handles writing to the operation log.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
}

// New creates a logger writing to FileName under logsDir.
// If enabled is false, the logger will be a no-op.
func New(logsDir string, enabled bool) *Logger {
	if !enabled || logsDir == "" {
		return &Logger{enabled: false}
	}
	return &Logger{
		path:    filepath.Join(logsDir, FileName),
		enabled: true,
	}
}

// Path returns the log file path, or "" when disabled.
func (l *Logger) Path() string { return l.path }

// Log writes an entry to the log.
func (l *Logger) Log(entry Entry) error {
	if l == nil || !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open operation log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}

// LogResult logs a registry operation and its outcome.
func (l *Logger) LogResult(op, vault, path string, opErr error, extra map[string]any) error {
	entry := Entry{Operation: op, Vault: vault, Path: path, OK: opErr == nil, Extra: extra}
	if opErr != nil {
		entry.Error = opErr.Error()
	}
	return l.Log(entry)
}

// LogDiscovery logs a discovery pass. cliErr is why CLI discovery fell back,
// if it did.
func (l *Logger) LogDiscovery(method string, found, added int, cliErr error) error {
	extra := map[string]any{
		"method": method,
		"found":  found,
		"added":  added,
	}
	if cliErr != nil {
		extra["cli_error"] = cliErr.Error()
	}
	return l.Log(Entry{Operation: "discover", OK: true, Extra: extra})
}

// Read reads all entries from the log.
func (l *Logger) Read() ([]Entry, error) {
	if l == nil || !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read operation log: %w", err)
	}

	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // Skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
