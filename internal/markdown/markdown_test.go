package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Setup":                "setup",
		"open(dir, opts, cb)":  "opendir-opts-cb",
		"Options & Config":     "options--config",
		"snake_case-and-dash":  "snake_case-and-dash",
		"`code` in heading":    "code-in-heading",
		"  Trim me  ":          "trim-me",
		"Ünïcode Heading":      "ünïcode-heading",
		"toggle_float(dir, …)": "toggle_floatdir-",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugger_Disambiguates(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "setup", s.Slug("Setup"))
	assert.Equal(t, "setup-1", s.Slug("Setup"))
	assert.Equal(t, "setup-2", s.Slug("setup"))
	assert.Equal(t, "other", s.Slug("Other"))
}

func TestAddLinkPath(t *testing.T) {
	in := []string{"- [open(dir)](#opendir)", "  - [a](#a) and [b](#b)", "[ext](https://example.com)"}
	out := AddLinkPath("doc/api.md", in)
	assert.Equal(t, []string{
		"- [open(dir)](doc/api.md#opendir)",
		"  - [a](doc/api.md#a) and [b](doc/api.md#b)",
		"[ext](https://example.com)",
	}, out)
	assert.Equal(t, "- [open(dir)](#opendir)", in[0], "input is not modified")
}

func TestGenerateToc(t *testing.T) {
	doc := []string{
		"# oil.nvim",
		"<!-- TOC -->",
		"<!-- /TOC -->",
		"## Setup",
		"### Details",
		"```lua",
		"## not a heading",
		"```",
		"## Setup",
		"#### Deep",
		"#NoSpace",
	}

	t.Run("Unlimited", func(t *testing.T) {
		toc := GenerateToc(doc, 0)
		assert.Equal(t, []string{
			"- [Setup](#setup)",
			"  - [Details](#details)",
			"- [Setup](#setup-1)",
			"    - [Deep](#deep)",
		}, toc.Lines)
		require.Len(t, toc.Entries, 4)
		assert.Equal(t, Heading{Level: 2, Text: "Setup", Slug: "setup-1"}, toc.Entries[2])
	})

	t.Run("Max level 1", func(t *testing.T) {
		toc := GenerateToc(doc, 1)
		assert.Equal(t, []string{"- [Setup](#setup)", "- [Setup](#setup-1)"}, toc.Lines)
	})

	t.Run("Title takes part in slugging", func(t *testing.T) {
		toc := GenerateToc([]string{"# Setup", "## Setup"}, 0)
		assert.Equal(t, []string{"- [Setup](#setup-1)"}, toc.Lines)
	})
}

func TestRenderAPI_ParamRoundTrip(t *testing.T) {
	fn := annotation.FunctionSignature{
		Name: "f",
		Params: []annotation.Parameter{
			{Name: "a", Type: "string", Desc: "desc-a"},
			{Name: "b", Type: "integer", Desc: "desc-b"},
		},
		Returns: []annotation.Return{{Type: "boolean"}},
		Desc:    []string{"Does f."},
	}

	lines := RenderAPI([]annotation.FunctionSignature{fn}, nil, 2)
	assert.Equal(t, []string{
		"## f(a, b)",
		"",
		"`f(a, b): boolean` \\",
		"Does f.",
		"",
		"| Param | Type      | Desc   |",
		"| ----- | --------- | ------ |",
		"| a     | `string`  | desc-a |",
		"| b     | `integer` | desc-b |",
	}, lines)
}

func TestRenderAPI_Details(t *testing.T) {
	types := annotation.TypeTable{
		"oil.OpenOpts": {Name: "oil.OpenOpts", Kind: annotation.KindClass, Fields: []annotation.Parameter{
			{Name: "preview", Type: "oil.PreviewOpts", Optional: true, Desc: "Open preview"},
		}},
		"oil.PreviewOpts": {Name: "oil.PreviewOpts", Kind: annotation.KindClass, Fields: []annotation.Parameter{
			{Name: "vertical", Type: "boolean"},
		}},
	}
	funcs := []annotation.FunctionSignature{
		{
			Name:   "open",
			Params: []annotation.Parameter{{Name: "opts", Type: "oil.OpenOpts", Optional: true}},
			Returns: []annotation.Return{
				{Type: "string|nil", Desc: "the path"},
			},
			Deprecated:    true,
			DeprecatedMsg: "use open_float",
			Notes:         []string{"Discards changes"},
		},
		{Name: "close"},
	}

	lines := RenderAPI(funcs, types, 3)
	assert.Contains(t, lines, "### open(opts)")
	assert.Contains(t, lines, "`open(opts): string|nil` \\")
	assert.Contains(t, lines, "| opts       | `nil\\|oil.OpenOpts`    |              |")
	assert.Contains(t, lines, "| >preview   | `nil\\|oil.PreviewOpts` | Open preview |")
	assert.Contains(t, lines, "| >>vertical | `boolean`              |              |")
	assert.Contains(t, lines, "| Returns       | Desc     |")
	assert.Contains(t, lines, "| `string\\|nil` | the path |")
	assert.Contains(t, lines, "**Deprecated:** use open_float")
	assert.Contains(t, lines, "Discards changes")
	assert.Contains(t, lines, "### close()")
	assert.Equal(t, "`close()` \\", lines[len(lines)-1])
}

func TestRenderAPI_SelfReferenceStops(t *testing.T) {
	types := annotation.TypeTable{
		"Node": {Name: "Node", Kind: annotation.KindClass, Fields: []annotation.Parameter{
			{Name: "next", Type: "Node"},
		}},
	}
	fn := annotation.FunctionSignature{Name: "walk", Params: []annotation.Parameter{{Name: "n", Type: "Node"}}}
	lines := RenderAPI([]annotation.FunctionSignature{fn}, types, 2)
	assert.Len(t, lines, 8, "heading, blank, signature, blank, header, separator, n, >next")
}

func TestRenderConfig(t *testing.T) {
	lines := RenderConfig(model.ConfigBlock{
		SetupCall: `require("oil").setup({`,
		Lines:     []string{"  columns = { \"icon\" },"},
	})
	assert.Equal(t, []string{"", "```lua", `require("oil").setup({`, "  columns = { \"icon\" },"}, lines)
}
