package annotation

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// Declaration is a top-level function found in a Lua chunk.
type Declaration struct {
	Name          string // short name, e.g. "open"
	QualifiedName string // as written, e.g. "M.open"
	Params        []string
	Local         bool
	Line          int // 1-based line of the declared name
}

// IndexDeclarations parses src as Lua and returns top-level function
// declarations keyed by the line their name is on.
func IndexDeclarations(ctx context.Context, src []byte) (map[int]Declaration, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lua.GetLanguage())

	code := stripLineComments(src)
	tree, err := parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lua source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	decls := make(map[int]Declaration)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if decl, ok := declarationOf(root.NamedChild(i), code); ok {
			decls[decl.Line] = decl
		}
	}
	return decls, nil
}

// stripLineComments blanks every line that starts with "--" so the grammar's
// own doc-comment rules never see annotations. Block comment openers are kept
// and line numbering is preserved.
func stripLineComments(src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	for i, line := range lines {
		trimmed := bytes.TrimLeft(line, " \t")
		if bytes.HasPrefix(trimmed, []byte("--")) && !isBlockCommentOpen(trimmed[2:]) {
			lines[i] = nil
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func isBlockCommentOpen(rest []byte) bool {
	if len(rest) == 0 || rest[0] != '[' {
		return false
	}
	rest = bytes.TrimLeft(rest[1:], "=")
	return len(rest) > 0 && rest[0] == '['
}

func declarationOf(node *sitter.Node, src []byte) (Declaration, bool) {
	switch node.Type() {
	case "function_statement":
		// function M.foo(a, b) / function M:foo() / local function foo()
		name := node.ChildByFieldName("name")
		if name == nil {
			return Declaration{}, false
		}
		decl := newDeclaration(name, src)
		decl.Local = hasChildOfType(node, "local")
		decl.Params = parameterNames(childOfType(node, "parameter_list"), src)
		return decl, true

	case "variable_declaration":
		// M.foo = function(a, b) end / local foo = function() end
		if countChildrenOfType(node, "variable_declarator") != 1 {
			return Declaration{}, false
		}
		name := node.ChildByFieldName("name")
		value := node.ChildByFieldName("value")
		if name == nil || value == nil || value.Type() != "function" {
			return Declaration{}, false
		}
		decl := newDeclaration(name, src)
		decl.Local = hasChildOfType(node, "local")
		decl.Params = parameterNames(childOfType(value, "parameter_list"), src)
		return decl, true
	}
	return Declaration{}, false
}

// newDeclaration reads the name node. Statement nodes may start on an
// earlier line than their first token, so the line comes from where the name
// ends.
func newDeclaration(name *sitter.Node, src []byte) Declaration {
	qualified := strings.TrimSpace(name.Content(src))
	return Declaration{
		Name:          shortName(qualified),
		QualifiedName: qualified,
		Line:          int(name.EndPoint().Row) + 1,
	}
}

func childOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

func hasChildOfType(node *sitter.Node, typ string) bool {
	return childOfType(node, typ) != nil
}

func countChildrenOfType(node *sitter.Node, typ string) int {
	n := 0
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == typ {
			n++
		}
	}
	return n
}

func parameterNames(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		switch child.Type() {
		case "identifier", "ellipsis":
			names = append(names, strings.TrimSpace(child.Content(src)))
		}
	}
	return names
}

// shortName strips the owning table: "M.foo" -> "foo", "M:foo" -> "foo".
func shortName(qualified string) string {
	if i := strings.LastIndexAny(qualified, ".:"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
