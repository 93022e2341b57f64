package annotation

import "strings"

// Parameter is a documented parameter or class field. Type is kept verbatim.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Desc     string `json:"desc,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// DisplayType is the type as shown to readers; optional entries gain a nil
// alternative unless the type already carries one.
func (p Parameter) DisplayType() string {
	if !p.Optional || strings.HasPrefix(p.Type, "nil|") || strings.HasSuffix(p.Type, "|nil") {
		return p.Type
	}
	return "nil|" + p.Type
}

// Return describes one ---@return entry.
type Return struct {
	Type string `json:"type"`
	Desc string `json:"desc,omitempty"`
}

// FunctionSignature is a documented top-level function.
type FunctionSignature struct {
	Name          string      `json:"name"`
	QualifiedName string      `json:"qualified_name"`
	Params        []Parameter `json:"params"`
	Returns       []Return    `json:"returns,omitempty"`
	Desc          []string    `json:"desc,omitempty"` // paragraphs
	Notes         []string    `json:"notes,omitempty"`
	Deprecated    bool        `json:"deprecated,omitempty"`
	DeprecatedMsg string      `json:"deprecated_msg,omitempty"`
	Line          int         `json:"line"`
}

// ParamNames lists parameter names in declared order.
func (f FunctionSignature) ParamNames() []string {
	names := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		names = append(names, p.Name)
	}
	return names
}

// ReturnType joins all return types, e.g. "string, integer".
func (f FunctionSignature) ReturnType() string {
	types := make([]string, 0, len(f.Returns))
	for _, r := range f.Returns {
		types = append(types, r.Type)
	}
	return strings.Join(types, ", ")
}

type TypeKind string

const (
	KindClass TypeKind = "class"
	KindAlias TypeKind = "alias"
)

// TypeDef is a ---@class (with fields) or an ---@alias.
type TypeDef struct {
	Name   string      `json:"name"`
	Kind   TypeKind    `json:"kind"`
	Desc   string      `json:"desc,omitempty"`
	Fields []Parameter `json:"fields,omitempty"`
	Alias  string      `json:"alias,omitempty"`
	Path   string      `json:"path"`
	Line   int         `json:"line"`
}

// TypeTable maps type names to their definitions.
type TypeTable map[string]*TypeDef

// Merge copies other into t. Existing names win so the first definition seen
// in a deterministic walk is kept.
func (t TypeTable) Merge(other TypeTable) {
	for name, def := range other {
		if _, ok := t[name]; !ok {
			t[name] = def
		}
	}
}

// Fields returns the fields of the class named by typ, following aliases and
// ignoring a nil alternative or optional marker. It returns nil for anything
// that is not a single class.
func (t TypeTable) Fields(typ string) []Parameter {
	name := bareTypeName(typ)
	for hops := 0; hops < 8 && name != ""; hops++ {
		def, ok := t[name]
		if !ok {
			return nil
		}
		if def.Kind == KindClass {
			return def.Fields
		}
		name = bareTypeName(def.Alias)
	}
	return nil
}

func bareTypeName(typ string) string {
	s := strings.TrimSpace(typ)
	s = strings.TrimSuffix(s, "?")
	s = strings.TrimPrefix(s, "nil|")
	s = strings.TrimSuffix(s, "|nil")
	if strings.ContainsAny(s, "|()<>{}[], ") {
		return ""
	}
	return s
}

// Module is the parse result for one source file.
type Module struct {
	Path      string
	Functions []FunctionSignature
	Types     TypeTable
	Warnings  []error
}

// Function finds a parsed function by its short name.
func (m *Module) Function(name string) (FunctionSignature, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionSignature{}, false
}
