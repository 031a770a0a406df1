// Package slugs turns free-form names into identifiers.
//
// Two strategies exist:
//   - Name slugs: registry names synthesized from discovered vault names,
//     built on gosimple/slug (transliterates to ASCII).
//   - Heading slugs: guide topic IDs derived from Markdown headings. Letters
//     outside ASCII are kept.
package slugs

import (
	"path/filepath"
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// Name slugs s for use as a registry name. The result is empty when s has
// no letters or digits.
func Name(s string) string {
	return goslug.Make(strings.TrimSpace(s))
}

// NameFromPath slugs the last segment of path.
func NameFromPath(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return Name(base)
}

// Heading converts heading text to a topic ID.
func Heading(text string) string {
	var result strings.Builder
	prevDash := false

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_' || r == ':' || r == '/':
			if !prevDash && result.Len() > 0 {
				result.WriteRune('-')
				prevDash = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}
