package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Classify(t *testing.T) {
	tests := []struct {
		raw  string
		kind LineKind
		text string
	}{
		{"", LineBlank, ""},
		{"local x = 1", LineCode, ""},
		{"-- plain comment", LineComment, ""},
		{"---- separator", LineComment, ""},
		{"---Summary line", LineDoc, "Summary line"},
		{"--- Summary line", LineDoc, "Summary line"},
		{"---", LineDoc, ""},
		{"  ---@param bufnr integer", LineParam, "bufnr integer"},
		{"---@return string", LineReturn, "string"},
		{"---@deprecated", LineDeprecated, ""},
		{"---@private", LinePrivate, ""},
		{"---@class oil.Entry", LineClass, "oil.Entry"},
		{"---@field name string", LineField, "name string"},
		{"---@alias Mode", LineAlias, "Mode"},
		{`---| "a" # first`, LineAliasVariant, `"a" # first`},
		{"---@type string", LineTag, "string"},
		{"---@param x integer\r", LineParam, "x integer"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			line := LuaLS.Classify(1, tt.raw)
			assert.Equal(t, tt.kind, line.Kind, "kind of %q", tt.raw)
			assert.Equal(t, tt.text, line.Text)
			assert.Equal(t, tt.raw, line.Raw)
		})
	}
}

func TestSplitType(t *testing.T) {
	tests := []struct {
		in, typ, rest string
	}{
		{"string the name", "string", "the name"},
		{"string|nil", "string|nil", ""},
		{"string | integer desc", "string | integer", "desc"},
		{"table<string, integer> map", "table<string, integer>", "map"},
		{"fun(a: integer): boolean cb", "fun(a: integer): boolean", "cb"},
		{`"a"|"b c" choice`, `"a"|"b c"`, "choice"},
		{"{ x: integer, y?: string } point", "{ x: integer, y?: string }", "point"},
	}
	for _, tt := range tests {
		typ, rest := splitType(tt.in)
		assert.Equal(t, tt.typ, typ, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}

func TestSplitNamed(t *testing.T) {
	p, ok := splitNamed("opts? table # options")
	assert.True(t, ok)
	assert.Equal(t, Parameter{Name: "opts", Type: "table", Desc: "options", Optional: true}, p)

	_, ok = splitNamed("lonely")
	assert.False(t, ok)
}
