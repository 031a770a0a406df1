package ui

import (
	"strings"

	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// MarkdownMargin is the left margin of rendered guide text.
const MarkdownMargin = 2

const defaultCodeTheme = "monokai"

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme selects the Chroma theme for fenced code in the
// guide. Unknown names fall back to the default.
func ConfigureMarkdownCodeTheme(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := chromastyles.Registry[name]; !ok {
		name = defaultCodeTheme
	}
	markdownCodeTheme = name
}

// RenderMarkdown renders the guide for a terminal of the given width.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(guideMarkdownStyle()),
		glamour.WithWordWrap(width-MarkdownMargin),
	)
	if err != nil {
		return "", err
	}
	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

// guideMarkdownStyle is glamour's dark style with the accent applied to
// headings and code.
func guideMarkdownStyle() ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig

	codeColor := strPtr("252")
	var accent *string
	if color, ok := AccentColor(); ok {
		accent = strPtr(color)
		codeColor = accent
	}

	style.Document.Margin = uintPtr(MarkdownMargin)
	style.Document.Color = nil

	style.Heading.Color = accent
	style.Heading.Bold = boolPtr(true)
	style.H1 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "# ", Underline: boolPtr(true)}}
	style.H2 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "## ", Underline: boolPtr(true)}}

	style.Code = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		Prefix: "`",
		Suffix: "`",
		Color:  codeColor,
	}}
	style.CodeBlock.Color = codeColor
	style.CodeBlock.Margin = uintPtr(MarkdownMargin)
	style.CodeBlock.Theme = markdownCodeTheme
	style.CodeBlock.Chroma = nil

	style.Item.BlockPrefix = "• "
	return style
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }
