// Package section locates regions of text files delimited by marker lines and
// extracts or replaces their contents.
package section

import (
	"fmt"
	"regexp"
	"strings"

	"vimdocgen/internal/docerr"
)

// Options controls whether the marker lines are part of an extracted region.
type Options struct {
	IncludeStart bool
	IncludeEnd   bool
}

// Bounds holds the 0-based indexes of the start and end marker lines.
type Bounds struct {
	Start int
	End   int
}

// SplitLines splits content on "\n". A trailing newline produces a final
// empty element so JoinLines restores the input byte for byte.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Compile compiles a marker pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid marker pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Find locates the first line matching start and the first line after it
// matching end. src names the input in errors. Carriage returns are ignored
// when matching.
func Find(src string, lines []string, start, end *regexp.Regexp) (Bounds, error) {
	b := Bounds{Start: -1, End: -1}
	for i, line := range lines {
		if start.MatchString(strings.TrimSuffix(line, "\r")) {
			b.Start = i
			break
		}
	}
	if b.Start < 0 {
		return b, docerr.BoundaryNotFound(src, "start", start.String())
	}
	for i := b.Start + 1; i < len(lines); i++ {
		if end.MatchString(strings.TrimSuffix(lines[i], "\r")) {
			b.End = i
			break
		}
	}
	if b.End < 0 {
		return b, docerr.BoundaryNotFound(src, "end", end.String())
	}
	return b, nil
}

// Extract returns the lines between the markers. The result is a copy.
func Extract(src string, lines []string, start, end *regexp.Regexp, opts Options) ([]string, error) {
	b, err := Find(src, lines, start, end)
	if err != nil {
		return nil, err
	}
	from, to := b.Start+1, b.End
	if opts.IncludeStart {
		from = b.Start
	}
	if opts.IncludeEnd {
		to = b.End + 1
	}
	out := make([]string, to-from)
	copy(out, lines[from:to])
	return out, nil
}

// Replace returns a new slice in which everything strictly between the markers
// is repl. Lines outside the markers, and the markers themselves, are kept
// unchanged. When the start marker ends in "\r" the inserted lines get one too.
func Replace(src string, lines []string, start, end *regexp.Regexp, repl []string) ([]string, error) {
	b, err := Find(src, lines, start, end)
	if err != nil {
		return nil, err
	}
	crlf := strings.HasSuffix(lines[b.Start], "\r")

	out := make([]string, 0, len(lines)-(b.End-b.Start-1)+len(repl))
	out = append(out, lines[:b.Start+1]...)
	for _, l := range repl {
		if crlf && !strings.HasSuffix(l, "\r") {
			l += "\r"
		}
		out = append(out, l)
	}
	out = append(out, lines[b.End:]...)
	return out, nil
}
