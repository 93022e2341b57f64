package vimdoc

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"vimdocgen/internal/model"
)

// Document is a complete help file.
type Document struct {
	// File is the help file name, e.g. "oil.txt".
	File string
	// Tags are extra tags listed under the file tag.
	Tags []string
	// ContentsTag anchors the table of contents, e.g. "oil-contents".
	ContentsTag string
	Width       int
	Sections    []model.DocSection
}

// Render lays out header, contents, sections and modeline. Each line is
// returned without a newline; the file ends with one.
func (d Document) Render() []string {
	w := d.Width
	if w <= 0 {
		w = DefaultWidth
	}
	sep := strings.Repeat("-", w)

	lines := []string{"*" + d.File + "*"}
	if len(d.Tags) > 0 {
		tags := make([]string, 0, len(d.Tags))
		for _, t := range d.Tags {
			tags = append(tags, "*"+t+"*")
		}
		lines = append(lines, strings.Join(tags, " "))
	}

	lines = append(lines, sep, LeftRight("CONTENTS", "*"+d.ContentsTag+"*", w), "")
	for i, s := range d.Sections {
		entry := fmt.Sprintf("  %d. %s", i+1, capitalize(s.Name))
		lines = append(lines, LeftRight(entry, "|"+s.Tag+"|", w))
	}
	lines = append(lines, "")

	for _, s := range d.Sections {
		lines = append(lines, sep, LeftRight(strings.ToUpper(s.Name), "*"+s.Tag+"*", w), "")
		lines = append(lines, trimBlank(s.Body)...)
		lines = append(lines, "")
	}

	lines = append(lines,
		strings.Repeat("=", w),
		fmt.Sprintf("vim:tw=%d:ts=2:ft=help:norl:syntax=help:", w),
		"",
	)
	return lines
}

// trimBlank drops leading and trailing blank lines.
func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
