package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Global JSON output flag
var jsonOutput bool

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK       bool       `json:"ok"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Warnings []Warning  `json:"warnings,omitempty"`
	Meta     *Meta      `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	ExitCode   int    `json:"exit_code"`
	Details    any    `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a non-fatal warning.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count        int    `json:"count,omitempty"`
	RegistryPath string `json:"registry_path,omitempty"`
}

// Warning codes for non-fatal issues.
const (
	WarnMissingMarker = "MISSING_MARKER"
	WarnActiveCleared = "ACTIVE_CLEARED"
)

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// outputSuccess outputs a successful JSON response.
func outputSuccess(data any, meta *Meta) {
	outputJSON(Response{
		OK:   true,
		Data: data,
		Meta: meta,
	})
}

// outputSuccessWithWarnings outputs a successful JSON response with warnings.
func outputSuccessWithWarnings(data any, warnings []Warning, meta *Meta) {
	outputJSON(Response{
		OK:       true,
		Data:     data,
		Warnings: warnings,
		Meta:     meta,
	})
}

// outputError outputs an error JSON response.
func outputError(info ErrorInfo, data any) {
	outputJSON(Response{
		OK:    false,
		Data:  data,
		Error: &info,
	})
}

// isJSONOutput returns true if JSON output is enabled.
func isJSONOutput() bool {
	return jsonOutput
}

// printf writes human output to stdout.
func printf(format string, args ...any) {
	fmt.Fprintf(stdout, format, args...)
}

// handleError classifies err. In JSON mode the error envelope is written
// immediately; in text mode Execute prints it. Either way the returned error
// carries the exit code.
func handleError(err error, suggestion string) error {
	return handleErrorWithData(err, suggestion, nil)
}

// handleErrorWithData is handleError with a data payload for the envelope.
func handleErrorWithData(err error, suggestion string, data any) error {
	code, exit := classify(err)
	ce := &commandError{err: err, code: code, exit: exit, suggestion: suggestion}
	if jsonOutput {
		outputError(ErrorInfo{Code: code, Message: err.Error(), ExitCode: exit, Suggestion: suggestion}, data)
		ce.reported = true
	}
	return ce
}
