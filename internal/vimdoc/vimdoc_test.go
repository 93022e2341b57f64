package vimdoc

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/model"
)

func TestLeftRight_FixedWidth(t *testing.T) {
	const width = 78
	for n := 1; n <= width-1; n++ {
		name := strings.Repeat("n", n)
		tag := "*" + strings.Repeat("t", max(width-1-n-2, 0)) + "*"
		line := LeftRight(name, tag, width)
		assert.Equal(t, width, runewidth.StringWidth(line), "name length %d", n)
		if n+1+len(tag) <= width {
			assert.True(t, strings.HasPrefix(line, name), "left is kept when the pair fits")
		}
	}
}

func TestLeftRight_Truncates(t *testing.T) {
	t.Run("Left first", func(t *testing.T) {
		line := LeftRight("abcdefghij", "*tag*", 12)
		assert.Equal(t, "abcdef *tag*", line)
	})
	t.Run("Then right", func(t *testing.T) {
		line := LeftRight("abc", "*a-very-long-tag*", 8)
		assert.Equal(t, " *a-very", line)
	})
	t.Run("Wide runes", func(t *testing.T) {
		line := LeftRight("日本語のタイトル", "*x*", 12)
		assert.Equal(t, 12, runewidth.StringWidth(line))
	})
	t.Run("Minimum padding", func(t *testing.T) {
		assert.Equal(t, "ab *c*", LeftRight("ab", "*c*", 6))
	})
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"  aaa bbb", "  ccc"}, Wrap("aaa bbb ccc", 2, 9))
	assert.Equal(t, []string{"one", "", "two"}, Wrap("one\n\ntwo", 0, 20))
	assert.Equal(t, []string{"    supercalifragilistic", "    x"}, Wrap("supercalifragilistic x", 4, 10))
	assert.Nil(t, Wrap("", 4, 10))
	assert.Equal(t, []string{"- first", "  second"}, WrapHanging("- first second", 0, 2, 8))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, []string{"  a", "", "    b"}, Indent([]string{"a", "", "  b"}, 2))
}

func TestFormatParams(t *testing.T) {
	t.Run("Round trip keeps order and text", func(t *testing.T) {
		lines := FormatParams([]annotation.Parameter{
			{Name: "a", Type: "string", Desc: "desc-a"},
			{Name: "b", Type: "integer", Desc: "desc-b"},
		}, nil, 6, 78)
		assert.Equal(t, []string{
			"      {a} `string` desc-a",
			"      {b} `integer` desc-b",
		}, lines)
	})

	t.Run("Names are padded and descriptions hang", func(t *testing.T) {
		lines := FormatParams([]annotation.Parameter{
			{Name: "dir", Type: "string", Optional: true, Desc: "When nil, open the parent of the current buffer"},
			{Name: "cb", Type: "fun()"},
		}, nil, 6, 40)
		assert.Equal(t, []string{
			"      {dir} `nil|string` When nil, open",
			"            the parent of the current",
			"            buffer",
			"      {cb}  `fun()`",
		}, lines)
	})

	t.Run("Class fields recurse", func(t *testing.T) {
		types := annotation.TypeTable{
			"Opts": {Name: "Opts", Kind: annotation.KindClass, Fields: []annotation.Parameter{
				{Name: "vertical", Type: "boolean", Desc: "Split"},
			}},
		}
		lines := FormatParams([]annotation.Parameter{{Name: "opts", Type: "Opts", Optional: true}}, types, 6, 78)
		assert.Equal(t, []string{
			"      {opts} `nil|Opts`",
			"          {vertical} `boolean` Split",
		}, lines)
	})
}

func testRenderer() *Renderer {
	return NewRenderer(Options{
		Width:           60,
		TagPrefix:       "oil",
		ActionTagPrefix: "actions.",
		ColumnTagPrefix: "column-",
		SortableNote:    "this column can be used in view_props.sort",
	})
}

func TestRenderer_API(t *testing.T) {
	fn := annotation.FunctionSignature{
		Name:    "get_entry_on_line",
		Params:  []annotation.Parameter{{Name: "bufnr", Type: "integer"}, {Name: "lnum", Type: "integer"}},
		Returns: []annotation.Return{{Type: "nil|oil.Entry"}},
		Desc:    []string{"Get the entry on a specific line (1-indexed)"},
	}
	sec := testRenderer().API("API", "oil-api", []annotation.FunctionSignature{fn}, nil)
	require.NotEmpty(t, sec.Body)
	assert.Equal(t, []string{
		LeftRight("get_entry_on_line({bufnr}, {lnum}): nil|oil.Entry", "*oil.get_entry_on_line*", 60),
		"    Get the entry on a specific line (1-indexed)",
		"",
		"    Parameters:",
		"      {bufnr} `integer`",
		"      {lnum}  `integer`",
	}, sec.Body)
}

func TestRenderer_APIExtras(t *testing.T) {
	fn := annotation.FunctionSignature{
		Name:          "discard_all_changes",
		Returns:       []annotation.Return{{Type: "boolean", Desc: "true when changes were discarded"}},
		Deprecated:    true,
		DeprecatedMsg: "use discard()",
		Notes:         []string{"This cannot be undone"},
	}
	body := testRenderer().API("API", "oil-api", []annotation.FunctionSignature{fn}, nil).Body
	assert.Contains(t, body, "    Deprecated: use discard()")
	assert.Contains(t, body, "    Returns:")
	assert.Contains(t, body, "      `boolean` true when changes were discarded")
	assert.Contains(t, body, "      This cannot be undone")
}

func TestRenderer_Actions(t *testing.T) {
	sec := testRenderer().Actions("Actions", "oil-actions", []model.Action{
		{Name: "select", Desc: "Open the entry", Params: []model.Param{{Name: "vertical", Type: "boolean", Desc: "Split"}}},
		{Name: "old", Desc: "gone", Deprecated: true},
		{Name: "cd", Desc: "Change directory"},
	})
	assert.Equal(t, []string{
		LeftRight("cd", "*actions.cd*", 60),
		"    Change directory",
		"",
		LeftRight("select", "*actions.select*", 60),
		"    Open the entry",
		"",
		"    Parameters:",
		"      {vertical} `boolean` Split",
		"",
	}, sec.Body)
}

func TestRenderer_Columns(t *testing.T) {
	sec := testRenderer().Columns("Columns", "oil-columns", []model.Column{{
		Name:     "permissions",
		Adapters: []string{"files", "ssh"},
		Editable: true,
		Sortable: true,
		Summary:  "Access permissions of the file",
		Params:   []model.Param{{Name: "highlight", Type: "string", Desc: "Highlight group"}},
	}})
	assert.Equal(t, []string{
		LeftRight("permissions", "*column-permissions*", 60),
		"    Adapters: files, ssh",
		"    Sortable: this column can be used in view_props.sort",
		"    Editable: this column is read/write",
		"    Access permissions of the file",
		"",
		"    Parameters:",
		"      {highlight} `string` Highlight group",
		"",
	}, sec.Body)
}

func TestRenderer_Highlights(t *testing.T) {
	sec := testRenderer().Highlights("Highlights", "oil-highlights", []model.Highlight{
		{Name: "OilDir", Desc: "Directories in an oil buffer"},
		{Name: "OilDirIcon"},
	})
	assert.Equal(t, []string{
		LeftRight("OilDir", "*hl-OilDir*", 60),
		"    Directories in an oil buffer",
		"",
	}, sec.Body)
}

func TestRenderer_Config(t *testing.T) {
	sec := NewRenderer(Options{}).Config("Config", "oil-config", model.ConfigBlock{
		SetupCall:  `require("oil").setup({`,
		SetupClose: "})",
		Lines:      []string{"  default_file_explorer = true,", "", "  columns = {},"},
	})
	assert.Equal(t, []string{
		">lua",
		`    require("oil").setup({`,
		"      default_file_explorer = true,",
		"",
		"      columns = {},",
		"    })",
		"<",
	}, sec.Body)
}

func TestDocument_Render(t *testing.T) {
	doc := Document{
		File:        "oil.txt",
		Tags:        []string{"Oil", "oil"},
		ContentsTag: "oil-contents",
		Width:       40,
		Sections: []model.DocSection{
			{Name: "config", Tag: "oil-config", Body: []string{"", "body", ""}},
			{Name: "Trash", Tag: "oil-trash", Body: []string{"text"}},
		},
	}
	lines := doc.Render()
	sep := strings.Repeat("-", 40)
	assert.Equal(t, []string{
		"*oil.txt*",
		"*Oil* *oil*",
		sep,
		LeftRight("CONTENTS", "*oil-contents*", 40),
		"",
		LeftRight("  1. Config", "|oil-config|", 40),
		LeftRight("  2. Trash", "|oil-trash|", 40),
		"",
		sep,
		LeftRight("CONFIG", "*oil-config*", 40),
		"",
		"body",
		"",
		sep,
		LeftRight("TRASH", "*oil-trash*", 40),
		"",
		"text",
		"",
		strings.Repeat("=", 40),
		"vim:tw=40:ts=2:ft=help:norl:syntax=help:",
		"",
	}, lines)

	assert.Equal(t, lines, doc.Render(), "rendering is deterministic")
}
