// Package docs bundles the long-form guide shipped with the vaultreg binary.
package docs

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aidanlsb/vaultreg/internal/slugs"
)

// FS contains the Markdown guide.
//
//go:embed guide
var FS embed.FS

// GuidePath is the guide's location inside FS.
const GuidePath = "guide/vaultreg.md"

// ErrUnknownTopic is returned by Lookup for a topic the guide lacks.
var ErrUnknownTopic = errors.New("unknown guide topic")

// Topic is one level-2 section of the guide.
type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"-"`
}

// Guide returns the full guide.
func Guide() ([]byte, error) {
	return FS.ReadFile(GuidePath)
}

// Topics splits the guide at its level-2 headings, in document order.
func Topics() ([]Topic, error) {
	content, err := Guide()
	if err != nil {
		return nil, err
	}
	return splitTopics(content), nil
}

// Lookup returns the topic whose ID or title matches name, ignoring case.
func Lookup(name string) (Topic, error) {
	topics, err := Topics()
	if err != nil {
		return Topic{}, err
	}
	want := slugs.Heading(name)
	for _, t := range topics {
		if t.ID == want || strings.EqualFold(t.Title, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Topic{}, fmt.Errorf("%w: %s", ErrUnknownTopic, name)
}

func splitTopics(content []byte) []Topic {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	type mark struct {
		title string
		start int
	}
	var marks []mark
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 2 || heading.Lines().Len() == 0 {
			continue
		}
		seg := heading.Lines().At(0)
		marks = append(marks, mark{
			title: strings.TrimSpace(string(seg.Value(content))),
			start: lineStart(content, seg.Start),
		})
	}

	topics := make([]Topic, 0, len(marks))
	for i, m := range marks {
		end := len(content)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		topics = append(topics, Topic{
			ID:    slugs.Heading(m.title),
			Title: m.title,
			Body:  strings.TrimRight(string(content[m.start:end]), "\n") + "\n",
		})
	}
	return topics
}

func lineStart(content []byte, offset int) int {
	for offset > 0 && content[offset-1] != '\n' {
		offset--
	}
	return offset
}
