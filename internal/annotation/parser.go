package annotation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"vimdocgen/internal/docerr"
	"vimdocgen/internal/logging"
)

// Parser extracts documented functions and type definitions from Lua modules.
// An annotation block must end on the line directly above its declaration;
// no blank lines are tolerated in between.
type Parser struct {
	dialect Dialect
	log     logging.Logger
}

// NewParser creates a parser for the given annotation dialect.
func NewParser(d Dialect, log logging.Logger) *Parser {
	if log == nil {
		log = logging.NoOp()
	}
	return &Parser{dialect: d, log: log}
}

// ParseFile reads and parses a single module.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(ctx, path, src)
}

// Parse parses src. Malformed entries are skipped and reported in
// Module.Warnings; only unreadable source aborts.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*Module, error) {
	decls, err := IndexDeclarations(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	mod := &Module{Path: path, Types: TypeTable{}}
	seen := make(map[string]bool)

	for _, blk := range groupBlocks(p.dialect.Tokenize(src)) {
		if blk.isTypeBlock() {
			for _, def := range p.parseTypes(mod, blk) {
				mod.Types[def.Name] = def
			}
			continue
		}

		decl, ok := decls[blk.end()+1]
		if !ok {
			if blk.isFunctionDoc() {
				p.warn(mod, docerr.StructuralParse(path, blk.start(), "annotation block has no matching declaration"))
			}
			continue
		}
		if decl.Local || blk.has(LinePrivate) {
			continue
		}

		fn, err := buildSignature(path, blk, decl)
		if err != nil {
			p.warn(mod, err)
			continue
		}
		if seen[fn.Name] {
			p.warn(mod, docerr.StructuralParse(path, decl.Line, "duplicate function %q", fn.Name))
			continue
		}
		seen[fn.Name] = true
		mod.Functions = append(mod.Functions, fn)
	}

	return mod, nil
}

func (p *Parser) warn(mod *Module, err error) {
	mod.Warnings = append(mod.Warnings, err)
	p.log.Warn("skipping annotation", "error", err.Error())
}

type block struct {
	lines []Line
}

func (b block) start() int { return b.lines[0].Num }
func (b block) end() int   { return b.lines[len(b.lines)-1].Num }

func (b block) has(kind LineKind) bool {
	for _, l := range b.lines {
		if l.Kind == kind {
			return true
		}
	}
	return false
}

func (b block) isTypeBlock() bool {
	return b.has(LineClass) || b.has(LineAlias)
}

// isFunctionDoc reports whether the block describes a callable, as opposed to
// a free-standing doc comment such as a module header.
func (b block) isFunctionDoc() bool {
	for _, l := range b.lines {
		switch l.Kind {
		case LineParam, LineReturn, LineDeprecated:
			return true
		case LineTag:
			if l.Tag == "param" || l.Tag == "return" {
				return true
			}
		}
	}
	return false
}

// groupBlocks collects maximal runs of consecutive annotation lines.
func groupBlocks(lines []Line) []block {
	var blocks []block
	var cur []Line
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, block{lines: cur})
			cur = nil
		}
	}
	for _, l := range lines {
		if l.Kind.IsAnnotation() {
			cur = append(cur, l)
			continue
		}
		flush()
	}
	flush()
	return blocks
}

func buildSignature(path string, blk block, decl Declaration) (FunctionSignature, error) {
	fn := FunctionSignature{
		Name:          decl.Name,
		QualifiedName: decl.QualifiedName,
		Line:          decl.Line,
	}

	var para []string
	flushPara := func() {
		if len(para) > 0 {
			fn.Desc = append(fn.Desc, strings.Join(para, " "))
			para = nil
		}
	}
	// appendTo receives trailing doc lines that continue the previous tag.
	var appendTo func(string)

	for _, l := range blk.lines {
		switch l.Kind {
		case LineDoc:
			if appendTo != nil {
				if l.Text != "" {
					appendTo(l.Text)
				}
				continue
			}
			if l.Text == "" {
				flushPara()
				continue
			}
			para = append(para, l.Text)

		case LineParam:
			param, ok := splitNamed(l.Text)
			if !ok {
				return fn, docerr.StructuralParse(path, l.Num, "malformed @param %q", l.Text)
			}
			fn.Params = append(fn.Params, param)
			idx := len(fn.Params) - 1
			appendTo = func(s string) { fn.Params[idx].Desc = joinDesc(fn.Params[idx].Desc, s) }

		case LineReturn:
			typ, rest := splitType(l.Text)
			if typ == "" {
				return fn, docerr.StructuralParse(path, l.Num, "malformed @return %q", l.Text)
			}
			fn.Returns = append(fn.Returns, Return{Type: typ, Desc: cleanDesc(rest)})
			idx := len(fn.Returns) - 1
			appendTo = func(s string) { fn.Returns[idx].Desc = joinDesc(fn.Returns[idx].Desc, s) }

		case LineDeprecated:
			fn.Deprecated = true
			fn.DeprecatedMsg = l.Text
			appendTo = func(s string) { fn.DeprecatedMsg = joinDesc(fn.DeprecatedMsg, s) }

		case LineNote:
			fn.Notes = append(fn.Notes, l.Text)
			idx := len(fn.Notes) - 1
			appendTo = func(s string) { fn.Notes[idx] = joinDesc(fn.Notes[idx], s) }

		case LineTag:
			if l.Tag == "param" || l.Tag == "return" {
				return fn, docerr.StructuralParse(path, l.Num, "@%s without payload", l.Tag)
			}
			appendTo = func(string) {}

		case LineField, LineAliasVariant:
			return fn, docerr.StructuralParse(path, l.Num, "%s line outside a type block", l.Kind)
		}
	}
	flushPara()

	if err := matchParams(path, fn, decl); err != nil {
		return fn, err
	}
	return fn, nil
}

// matchParams requires documented and declared parameters to agree by name
// and order.
func matchParams(path string, fn FunctionSignature, decl Declaration) error {
	documented := fn.ParamNames()
	for i, name := range documented {
		if i >= len(decl.Params) || decl.Params[i] != name {
			if !contains(decl.Params, name) {
				return docerr.StructuralParse(path, decl.Line, "@param %q does not match any parameter of %s", name, decl.QualifiedName)
			}
			return docerr.StructuralParse(path, decl.Line, "@param %q is out of declaration order in %s", name, decl.QualifiedName)
		}
	}
	if len(decl.Params) > len(documented) {
		return docerr.StructuralParse(path, decl.Line, "parameter %q of %s is not documented", decl.Params[len(documented)], decl.QualifiedName)
	}
	return nil
}

func (p *Parser) parseTypes(mod *Module, blk block) []*TypeDef {
	var defs []*TypeDef
	var cur *TypeDef
	var pending []string

	for _, l := range blk.lines {
		switch l.Kind {
		case LineDoc:
			if cur != nil && len(cur.Fields) > 0 {
				last := &cur.Fields[len(cur.Fields)-1]
				last.Desc = joinDesc(last.Desc, l.Text)
				continue
			}
			if l.Text != "" {
				pending = append(pending, l.Text)
			}

		case LineClass:
			name := className(l.Text)
			if name == "" {
				p.warn(mod, docerr.StructuralParse(mod.Path, l.Num, "malformed @class %q", l.Text))
				cur = nil
				continue
			}
			cur = &TypeDef{Name: name, Kind: KindClass, Desc: strings.Join(pending, " "), Path: mod.Path, Line: l.Num}
			pending = nil
			defs = append(defs, cur)

		case LineField:
			if cur == nil || cur.Kind != KindClass {
				p.warn(mod, docerr.StructuralParse(mod.Path, l.Num, "@field outside a class"))
				continue
			}
			payload, private := stripVisibility(l.Text)
			if private {
				continue
			}
			field, ok := splitNamed(payload)
			if !ok {
				p.warn(mod, docerr.StructuralParse(mod.Path, l.Num, "malformed @field %q", l.Text))
				continue
			}
			cur.Fields = append(cur.Fields, field)

		case LineAlias:
			fields := strings.Fields(l.Text)
			if len(fields) == 0 {
				p.warn(mod, docerr.StructuralParse(mod.Path, l.Num, "malformed @alias"))
				cur = nil
				continue
			}
			typ, _ := splitType(strings.TrimSpace(strings.TrimPrefix(l.Text, fields[0])))
			cur = &TypeDef{Name: fields[0], Kind: KindAlias, Alias: typ, Desc: strings.Join(pending, " "), Path: mod.Path, Line: l.Num}
			pending = nil
			defs = append(defs, cur)

		case LineAliasVariant:
			if cur == nil || cur.Kind != KindAlias {
				continue
			}
			typ, _ := splitType(l.Text)
			if cur.Alias == "" {
				cur.Alias = typ
			} else {
				cur.Alias += "|" + typ
			}
		}
	}
	return defs
}

// className reads "(exact) name: Parent" style @class payloads.
func className(payload string) string {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "(") {
		if i := strings.Index(s, ")"); i >= 0 {
			s = strings.TrimSpace(s[i+1:])
		}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSuffix(fields[0], ":")
}

func stripVisibility(payload string) (string, bool) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return payload, false
	}
	switch fields[0] {
	case "private", "protected", "package":
		return "", true
	case "public":
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(payload), "public")), false
	}
	return payload, false
}

func joinDesc(a, b string) string {
	b = strings.TrimSpace(b)
	switch {
	case b == "":
		return a
	case a == "":
		return b
	default:
		return a + " " + b
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
