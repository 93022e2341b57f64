// Package markdown renders the documentation model as GitHub flavored
// Markdown and maintains tables of contents.
package markdown

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugify converts heading text to a GitHub style anchor: lowercase, spaces
// become hyphens, and everything except letters, digits, '-' and '_' is
// dropped.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slugger hands out unique slugs within one document. Repeats get -1, -2, ...
// in order of first appearance.
type Slugger struct {
	seen map[string]int
}

func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns the next unique slug for text.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)
	slug := base
	for {
		if _, taken := s.seen[slug]; !taken {
			break
		}
		s.seen[base]++
		slug = base + "-" + strconv.Itoa(s.seen[base])
	}
	s.seen[slug] = 0
	return slug
}

// AddLinkPath rewrites in-document anchors "(#x)" to "(prefix#x)" so lines
// copied from one document link back to it.
func AddLinkPath(prefix string, lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.ReplaceAll(l, "(#", "("+prefix+"#")
	}
	return out
}
