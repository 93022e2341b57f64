package annotation

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// LineKind classifies one source line.
type LineKind int

const (
	LineCode LineKind = iota
	LineBlank
	LineComment
	LineDoc
	LineParam
	LineReturn
	LineDeprecated
	LinePrivate
	LineNote
	LineClass
	LineField
	LineAlias
	LineAliasVariant
	LineTag
)

var lineKindNames = map[LineKind]string{
	LineCode:         "code",
	LineBlank:        "blank",
	LineComment:      "comment",
	LineDoc:          "doc",
	LineParam:        "param",
	LineReturn:       "return",
	LineDeprecated:   "deprecated",
	LinePrivate:      "private",
	LineNote:         "note",
	LineClass:        "class",
	LineField:        "field",
	LineAlias:        "alias",
	LineAliasVariant: "alias-variant",
	LineTag:          "tag",
}

func (k LineKind) String() string {
	if s, ok := lineKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsAnnotation reports whether the line belongs to an annotation block.
func (k LineKind) IsAnnotation() bool {
	return k >= LineDoc
}

// Line is a classified source line. Num is 1-based.
type Line struct {
	Num  int
	Kind LineKind
	Tag  string
	Text string
	Raw  string
}

// Rule maps a pattern to a line kind. Named groups "tag" and "text" populate
// the corresponding Line fields.
type Rule struct {
	Kind    LineKind
	Pattern *regexp.Regexp
}

// Dialect is an ordered rule set; the first matching rule wins and lines that
// match nothing are code.
type Dialect struct {
	Name  string
	Rules []Rule
}

// LuaLS is the annotation dialect used by lua-language-server and most Neovim
// plugins: triple-dash comments with @tags.
var LuaLS = Dialect{
	Name: "luals",
	Rules: []Rule{
		{LineBlank, regexp.MustCompile(`^\s*$`)},
		{LineParam, regexp.MustCompile(`^\s*---\s*@param\s+(?P<text>.*)$`)},
		{LineReturn, regexp.MustCompile(`^\s*---\s*@return\s+(?P<text>.*)$`)},
		{LineDeprecated, regexp.MustCompile(`^\s*---\s*@deprecated\b\s*(?P<text>.*)$`)},
		{LinePrivate, regexp.MustCompile(`^\s*---\s*@private\b`)},
		{LineNote, regexp.MustCompile(`^\s*---\s*@note\b\s*(?P<text>.*)$`)},
		{LineClass, regexp.MustCompile(`^\s*---\s*@class\s+(?P<text>.*)$`)},
		{LineField, regexp.MustCompile(`^\s*---\s*@field\s+(?P<text>.*)$`)},
		{LineAlias, regexp.MustCompile(`^\s*---\s*@alias\s+(?P<text>.*)$`)},
		{LineAliasVariant, regexp.MustCompile(`^\s*---\s*\|\s*(?P<text>.*)$`)},
		{LineTag, regexp.MustCompile(`^\s*---\s*@(?P<tag>\w+)\s*(?P<text>.*)$`)},
		{LineDoc, regexp.MustCompile(`^\s*---(?:$|[^-] ?(?P<text>.*)$)`)},
		{LineComment, regexp.MustCompile(`^\s*--`)},
	},
}

// Classify applies the dialect to a single line.
func (d Dialect) Classify(num int, raw string) Line {
	line := strings.TrimSuffix(raw, "\r")
	for _, r := range d.Rules {
		m := r.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out := Line{Num: num, Kind: r.Kind, Raw: raw}
		if i := r.Pattern.SubexpIndex("tag"); i > 0 {
			out.Tag = m[i]
		}
		if i := r.Pattern.SubexpIndex("text"); i > 0 {
			out.Text = strings.TrimRight(m[i], " \t")
		}
		if r.Kind == LineDoc {
			out.Text = docText(line)
		}
		return out
	}
	return Line{Num: num, Kind: LineCode, Raw: raw}
}

// docText strips the comment prefix and a single following space.
func docText(line string) string {
	s := strings.TrimLeft(line, " \t")
	s = strings.TrimPrefix(s, "---")
	s = strings.TrimPrefix(s, " ")
	return strings.TrimRight(s, " \t")
}

// Tokenize classifies every line of src.
func (d Dialect) Tokenize(src []byte) []Line {
	var lines []Line
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	num := 0
	for scanner.Scan() {
		num++
		lines = append(lines, d.Classify(num, scanner.Text()))
	}
	return lines
}

// splitType separates a leading type expression from the rest of a tag
// payload without interpreting it. Spaces inside brackets or quotes, after a
// ':' (function return types) and around '|' belong to the type.
func splitType(s string) (string, string) {
	s = strings.TrimSpace(s)
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '<', '{', '[':
			depth++
		case ')', '>', '}', ']':
			if depth > 0 {
				depth--
			}
		case ' ', '\t':
			if depth > 0 {
				continue
			}
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}
			if j == len(s) {
				return s[:i], ""
			}
			if s[i-1] == ':' || s[i-1] == '|' || s[j] == '|' {
				i = j - 1
				continue
			}
			return s[:i], strings.TrimSpace(s[j:])
		}
	}
	return s, ""
}

// cleanDesc drops the optional '#' separator LuaLS allows before descriptions.
func cleanDesc(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}

// splitNamed parses "name[?] type [desc]" payloads used by @param and @field.
func splitNamed(payload string) (Parameter, bool) {
	payload = strings.TrimSpace(payload)
	i := strings.IndexAny(payload, " \t")
	if i <= 0 {
		return Parameter{}, false
	}
	name := payload[:i]
	p := Parameter{Name: name}
	if strings.HasSuffix(name, "?") {
		p.Name = strings.TrimSuffix(name, "?")
		p.Optional = true
	}
	typ, rest := splitType(payload[i:])
	if p.Name == "" || typ == "" {
		return Parameter{}, false
	}
	p.Type = typ
	p.Desc = cleanDesc(rest)
	return p, true
}
