package markdown

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/model"
)

// maxNestDepth bounds class field expansion; self referencing types stop here.
const maxNestDepth = 3

// RenderAPI renders one block per function: heading, signature, description,
// parameter table, optional returns table, deprecation and notes.
func RenderAPI(funcs []annotation.FunctionSignature, types annotation.TypeTable, level int) []string {
	var lines []string
	for i, fn := range funcs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, renderFunction(fn, types, level)...)
	}
	return lines
}

func renderFunction(fn annotation.FunctionSignature, types annotation.TypeTable, level int) []string {
	call := fmt.Sprintf("%s(%s)", fn.Name, strings.Join(fn.ParamNames(), ", "))
	sig := call
	if ret := fn.ReturnType(); ret != "" {
		sig += ": " + ret
	}

	lines := []string{
		strings.Repeat("#", level) + " " + call,
		"",
		"`" + sig + "` \\",
	}
	for i, para := range fn.Desc {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, para)
	}

	if len(fn.Params) > 0 {
		rows := [][]string{}
		for _, p := range fn.Params {
			rows = appendParamRows(rows, p, types, 0, map[string]bool{})
		}
		lines = append(lines, "")
		lines = append(lines, table([]string{"Param", "Type", "Desc"}, rows)...)
	}

	if hasReturnDesc(fn.Returns) {
		rows := make([][]string, 0, len(fn.Returns))
		for _, r := range fn.Returns {
			rows = append(rows, []string{"`" + escapeCell(r.Type) + "`", escapeCell(r.Desc)})
		}
		lines = append(lines, "")
		lines = append(lines, table([]string{"Returns", "Desc"}, rows)...)
	}

	if fn.Deprecated {
		msg := "**Deprecated:** this function is deprecated"
		if fn.DeprecatedMsg != "" {
			msg = "**Deprecated:** " + fn.DeprecatedMsg
		}
		lines = append(lines, "", msg)
	}

	for _, note := range fn.Notes {
		lines = append(lines, "", "**Note:**", "<pre>", note, "</pre>")
	}
	return lines
}

// appendParamRows adds p and, when its type names a class, one row per field
// prefixed with '>' per nesting depth.
func appendParamRows(rows [][]string, p annotation.Parameter, types annotation.TypeTable, depth int, seen map[string]bool) [][]string {
	rows = append(rows, []string{
		strings.Repeat(">", depth) + p.Name,
		"`" + escapeCell(p.DisplayType()) + "`",
		escapeCell(p.Desc),
	})
	if depth >= maxNestDepth || seen[p.Type] {
		return rows
	}
	fields := types.Fields(p.Type)
	if len(fields) == 0 {
		return rows
	}
	seen[p.Type] = true
	for _, f := range fields {
		rows = appendParamRows(rows, f, types, depth+1, seen)
	}
	delete(seen, p.Type)
	return rows
}

// RenderConfig renders the region that opens a Lua fence with the setup call
// followed by the verbatim defaults. The closing lines stay outside the
// replaced region.
func RenderConfig(block model.ConfigBlock) []string {
	lines := []string{"", "```lua", block.SetupCall}
	return append(lines, block.Lines...)
}

func hasReturnDesc(returns []annotation.Return) bool {
	for _, r := range returns {
		if r.Desc != "" {
			return true
		}
	}
	return false
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// table renders an aligned GFM table. Columns are padded to their widest
// cell by display width.
func table(header []string, rows [][]string) []string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, c := range cells {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString(" |")
		}
		return b.String()
	}

	sep := make([]string, len(header))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	out := []string{line(header), line(sep)}
	for _, row := range rows {
		out = append(out, line(row))
	}
	return out
}
