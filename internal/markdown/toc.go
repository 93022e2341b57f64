package markdown

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)[ \t]*$`)

// Heading is a Markdown ATX heading with its anchor.
type Heading struct {
	Level int
	Text  string
	Slug  string
}

// Headings returns every heading outside fenced code blocks, slugged in
// document order.
func Headings(lines []string) []Heading {
	slugger := NewSlugger()
	var out []Heading
	fence := ""
	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimLeft(line, " ")
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(strings.TrimRight(m[2], "#"))
		if text == "" {
			continue
		}
		out = append(out, Heading{Level: len(m[1]), Text: text, Slug: slugger.Slug(text)})
	}
	return out
}

func fenceMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "```"):
		return "```"
	case strings.HasPrefix(line, "~~~"):
		return "~~~"
	}
	return ""
}

// Toc builds tables of contents.
type Toc struct {
	Entries []Heading
	Lines   []string
}

// GenerateToc lists headings of level 2 through maxLevel+1 as nested links.
// The level 1 title is never listed, but every heading takes part in slug
// disambiguation so anchors match what GitHub generates. maxLevel <= 0 means
// no limit.
func GenerateToc(lines []string, maxLevel int) Toc {
	var toc Toc
	for _, h := range Headings(lines) {
		if h.Level < 2 {
			continue
		}
		if maxLevel > 0 && h.Level > maxLevel+1 {
			continue
		}
		toc.Entries = append(toc.Entries, h)
		indent := strings.Repeat(" ", 2*(h.Level-2))
		toc.Lines = append(toc.Lines, indent+"- ["+h.Text+"](#"+h.Slug+")")
	}
	return toc
}
