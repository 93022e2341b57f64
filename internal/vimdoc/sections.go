package vimdoc

import (
	"fmt"
	"sort"
	"strings"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/model"
)

// Options configures the section renderers.
type Options struct {
	Width int
	// TagPrefix scopes API tags, e.g. "oil" gives *oil.open*.
	TagPrefix       string
	ActionTagPrefix string
	ColumnTagPrefix string
	SortableNote    string
	ActionsIntro    string
	ColumnsIntro    string
	// ConfigIndent is the indent of the defaults inside the code block.
	ConfigIndent int
}

// Renderer turns model entities into vimdoc sections.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.ConfigIndent <= 0 {
		opts.ConfigIndent = 4
	}
	return &Renderer{opts: opts}
}

// Config renders the defaults block as a Lua code example.
func (r *Renderer) Config(name, tag string, block model.ConfigBlock) model.DocSection {
	ind := spaces(r.opts.ConfigIndent)
	body := []string{">lua", ind + block.SetupCall}
	body = append(body, Indent(block.Lines, r.opts.ConfigIndent)...)
	body = append(body, ind+block.SetupClose, "<")
	return model.DocSection{Name: name, Tag: tag, Body: body}
}

// API renders one tagged entry per function.
func (r *Renderer) API(name, tag string, funcs []annotation.FunctionSignature, types annotation.TypeTable) model.DocSection {
	var body []string
	for i, fn := range funcs {
		if i > 0 {
			body = append(body, "")
		}
		body = append(body, r.function(fn, types)...)
	}
	return model.DocSection{Name: name, Tag: tag, Body: body}
}

func (r *Renderer) function(fn annotation.FunctionSignature, types annotation.TypeTable) []string {
	args := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		args = append(args, "{"+p.Name+"}")
	}
	sig := fmt.Sprintf("%s(%s)", fn.Name, strings.Join(args, ", "))
	if ret := fn.ReturnType(); ret != "" {
		sig += ": " + ret
	}

	w := r.opts.Width
	lines := []string{LeftRight(sig, "*"+r.opts.TagPrefix+"."+fn.Name+"*", w)}
	for i, para := range fn.Desc {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, Wrap(para, 4, w)...)
	}
	if fn.Deprecated {
		msg := "Deprecated"
		if fn.DeprecatedMsg != "" {
			msg += ": " + fn.DeprecatedMsg
		}
		lines = append(lines, "")
		lines = append(lines, Wrap(msg, 4, w)...)
	}

	if len(fn.Params) > 0 {
		lines = append(lines, "", "    Parameters:")
		lines = append(lines, FormatParams(fn.Params, types, 6, w)...)
	}

	if hasReturnDesc(fn.Returns) {
		lines = append(lines, "", "    Returns:")
		for _, ret := range fn.Returns {
			head := "      `" + ret.Type + "`"
			lines = append(lines, fill(head, spaces(8), strings.Fields(ret.Desc), w)...)
		}
	}

	for _, note := range fn.Notes {
		lines = append(lines, "", "    Note:")
		lines = append(lines, Wrap(note, 6, w)...)
	}
	return lines
}

// Columns renders the column catalog in configured order.
func (r *Renderer) Columns(name, tag string, cols []model.Column) model.DocSection {
	w := r.opts.Width
	var body []string
	if r.opts.ColumnsIntro != "" {
		body = append(body, Wrap(r.opts.ColumnsIntro, 0, w)...)
		body = append(body, "")
	}
	for _, col := range cols {
		body = append(body, LeftRight(col.Name, "*"+r.opts.ColumnTagPrefix+col.Name+"*", w))
		body = append(body, Wrap("Adapters: "+strings.Join(col.Adapters, ", "), 4, w)...)
		if col.Sortable && r.opts.SortableNote != "" {
			body = append(body, Wrap("Sortable: "+r.opts.SortableNote, 4, w)...)
		}
		if col.Editable {
			body = append(body, Wrap("Editable: this column is read/write", 4, w)...)
		}
		body = append(body, Wrap(col.Summary, 4, w)...)
		if len(col.Params) > 0 {
			body = append(body, "", "    Parameters:")
			body = append(body, FormatParams(toParameters(col.Params), nil, 6, w)...)
		}
		body = append(body, "")
	}
	return model.DocSection{Name: name, Tag: tag, Body: body}
}

// Actions renders actions sorted by name. Deprecated actions are left out.
func (r *Renderer) Actions(name, tag string, actions []model.Action) model.DocSection {
	w := r.opts.Width
	sorted := append([]model.Action(nil), actions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var body []string
	if r.opts.ActionsIntro != "" {
		body = append(body, Wrap(r.opts.ActionsIntro, 0, w)...)
		body = append(body, "")
	}
	for _, a := range sorted {
		if a.Deprecated {
			continue
		}
		body = append(body, LeftRight(a.Name, "*"+r.opts.ActionTagPrefix+a.Name+"*", w))
		body = append(body, Wrap(a.Desc, 4, w)...)
		if len(a.Params) > 0 {
			body = append(body, "", "    Parameters:")
			body = append(body, FormatParams(toParameters(a.Params), nil, 6, w)...)
		}
		body = append(body, "")
	}
	return model.DocSection{Name: name, Tag: tag, Body: body}
}

// Highlights renders highlight groups that carry a description.
func (r *Renderer) Highlights(name, tag string, hls []model.Highlight) model.DocSection {
	w := r.opts.Width
	var body []string
	for _, hl := range hls {
		if hl.Desc == "" {
			continue
		}
		body = append(body, LeftRight(hl.Name, "*hl-"+hl.Name+"*", w))
		body = append(body, Wrap(hl.Desc, 4, w)...)
		body = append(body, "")
	}
	return model.DocSection{Name: name, Tag: tag, Body: body}
}

// Topic carries a hand written section through unchanged.
func (r *Renderer) Topic(t model.Topic) model.DocSection {
	return model.DocSection{Name: t.Name, Tag: t.Tag, Body: append([]string(nil), t.Body...)}
}

func toParameters(params []model.Param) []annotation.Parameter {
	out := make([]annotation.Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, p.AsParameter())
	}
	return out
}

func hasReturnDesc(returns []annotation.Return) bool {
	for _, r := range returns {
		if r.Desc != "" {
			return true
		}
	}
	return false
}
