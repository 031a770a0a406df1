// Package shellquote renders arguments for display as a copy-pasteable
// shell command line.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteIfNeeded quotes s when a shell would split or interpret it. Empty
// strings are quoted so they survive as an argument.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n#[]()|&;<>$`*?!\"'\\") {
		return Quote(s)
	}
	return s
}

// Join quotes each word as needed and joins them with spaces.
func Join(words ...string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = QuoteIfNeeded(w)
	}
	return strings.Join(quoted, " ")
}
