// Package vimdoc renders the documentation model as a fixed-width,
// tag-anchored Vim help file.
package vimdoc

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"vimdocgen/internal/annotation"
)

// DefaultWidth is the text width used when none is configured.
const DefaultWidth = 78

const maxNestDepth = 3

// LeftRight returns exactly width display columns: left, at least one space,
// then right. When the pair does not fit, left is truncated first and then
// right.
func LeftRight(left, right string, width int) string {
	if width < 1 {
		return ""
	}
	rw := runewidth.StringWidth(right)
	if rw > width-1 {
		right = runewidth.Truncate(right, width-1, "")
		rw = runewidth.StringWidth(right)
	}
	if avail := width - rw - 1; runewidth.StringWidth(left) > avail {
		left = runewidth.Truncate(left, avail, "")
	}
	pad := width - runewidth.StringWidth(left) - rw
	return left + strings.Repeat(" ", pad) + right
}

// Wrap word-wraps text to width with every line indented by indent spaces.
// Newlines start new paragraphs; an empty paragraph yields an empty line.
func Wrap(text string, indent, width int) []string {
	return WrapHanging(text, indent, indent, width)
}

// WrapHanging is Wrap with a separate indent for continuation lines.
func WrapHanging(text string, first, rest, width int) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, fill(spaces(first), spaces(rest), words, width)...)
	}
	return out
}

// fill appends words to head, breaking onto lines that start with cont. A
// word wider than the line is placed on its own line.
func fill(head, cont string, words []string, width int) []string {
	var out []string
	line := head
	blank := strings.TrimSpace(head) == ""
	for _, w := range words {
		candidate := line + " " + w
		if blank {
			candidate = line + w
		}
		if !blank && runewidth.StringWidth(candidate) > width {
			out = append(out, line)
			line = cont + w
			continue
		}
		line = candidate
		blank = false
	}
	return append(out, line)
}

// Indent prefixes every non-empty line with n spaces.
func Indent(lines []string, n int) []string {
	pad := spaces(n)
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = l
			continue
		}
		out[i] = pad + l
	}
	return out
}

// FormatParams renders params as "{name} `type` desc" rows. Names are padded
// to the widest name in the block and descriptions hang under the type
// column. Parameters whose type is a known class list that class's fields
// four columns deeper.
func FormatParams(params []annotation.Parameter, types annotation.TypeTable, indent, width int) []string {
	return formatParams(params, types, indent, width, 0, map[string]bool{})
}

func formatParams(params []annotation.Parameter, types annotation.TypeTable, indent, width, depth int, seen map[string]bool) []string {
	nameWidth := 0
	for _, p := range params {
		if w := runewidth.StringWidth("{" + p.Name + "}"); w > nameWidth {
			nameWidth = w
		}
	}

	var out []string
	for _, p := range params {
		head := spaces(indent) + runewidth.FillRight("{"+p.Name+"}", nameWidth) + " `" + p.DisplayType() + "`"
		cont := spaces(indent + nameWidth + 1)
		out = append(out, fill(head, cont, strings.Fields(p.Desc), width)...)

		if depth >= maxNestDepth || seen[p.Type] {
			continue
		}
		if fields := types.Fields(p.Type); len(fields) > 0 {
			seen[p.Type] = true
			out = append(out, formatParams(fields, types, indent+4, width, depth+1, seen)...)
			delete(seen, p.Type)
		}
	}
	return out
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
