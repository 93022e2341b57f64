// Package model holds the in-memory documentation model shared by the
// Markdown and vimdoc renderers. It is rebuilt on every run.
package model

import (
	"strings"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/config"
	"vimdocgen/internal/docerr"
)

// Param is a documented parameter of a column or action.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Desc string `json:"desc,omitempty"`
}

// AsParameter converts p for the shared parameter renderers.
func (p Param) AsParameter() annotation.Parameter {
	return annotation.Parameter{Name: p.Name, Type: p.Type, Desc: p.Desc}
}

// ConfigBlock is the verbatim configuration-defaults region, shown wrapped in
// the plugin's setup call.
type ConfigBlock struct {
	SetupCall  string
	SetupClose string
	Lines      []string
}

type Column struct {
	Name     string
	Adapters []string
	Editable bool
	Sortable bool
	Summary  string
	Params   []Param
}

type Action struct {
	Name       string
	Desc       string
	Params     []Param
	Deprecated bool
}

// Highlight is a highlight group. Groups without Desc are not rendered.
type Highlight struct {
	Name string
	Desc string
}

// Topic is a hand written vimdoc section carried verbatim.
type Topic struct {
	Name string
	Tag  string
	Body []string
}

// DocSection is a named, tagged block of rendered lines.
type DocSection struct {
	Name string
	Tag  string
	Body []string
}

// DocModel aggregates everything the renderers need.
type DocModel struct {
	Project    string
	TagPrefix  string
	Functions  []annotation.FunctionSignature
	Types      annotation.TypeTable
	Config     ConfigBlock
	Columns    []Column
	Actions    []Action
	Highlights []Highlight
	Topics     []Topic
}

// ColumnsFromConfig converts the configured column catalog.
func ColumnsFromConfig(cols []config.Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		col := Column{
			Name:     c.Name,
			Adapters: append([]string(nil), c.Adapters...),
			Editable: c.Editable,
			Sortable: c.Sortable,
			Summary:  c.Summary,
		}
		for _, p := range c.Params {
			col.Params = append(col.Params, Param{Name: p.Name, Type: p.Type, Desc: p.Desc})
		}
		out = append(out, col)
	}
	return out
}

// TopicsFromConfig collects the text sections of the vimdoc layout in order.
func TopicsFromConfig(specs []config.SectionSpec) []Topic {
	var topics []Topic
	for _, s := range specs {
		if s.Kind != config.SectionText {
			continue
		}
		body := strings.Split(strings.TrimRight(s.Body, "\n"), "\n")
		topics = append(topics, Topic{Name: s.Name, Tag: s.Tag, Body: body})
	}
	return topics
}

// Topic finds a topic by tag.
func (m *DocModel) Topic(tag string) (Topic, bool) {
	for _, t := range m.Topics {
		if t.Tag == tag {
			return t, true
		}
	}
	return Topic{}, false
}

// Validate reports the first entry missing a field that a renderer requires.
func (m *DocModel) Validate() error {
	if m.TagPrefix == "" {
		return docerr.RenderInconsistency("project", m.Project, "tag_prefix")
	}
	for _, fn := range m.Functions {
		if fn.Name == "" {
			return docerr.RenderInconsistency("function", fn.QualifiedName, "name")
		}
		for _, p := range fn.Params {
			if p.Name == "" || p.Type == "" {
				return docerr.RenderInconsistency("function", fn.Name, "param name/type")
			}
		}
	}
	for _, c := range m.Columns {
		if c.Name == "" {
			return docerr.RenderInconsistency("column", "", "name")
		}
		if c.Summary == "" {
			return docerr.RenderInconsistency("column", c.Name, "summary")
		}
		if err := validateParams("column", c.Name, c.Params); err != nil {
			return err
		}
	}
	for _, a := range m.Actions {
		if a.Name == "" {
			return docerr.RenderInconsistency("action", "", "name")
		}
		if a.Desc == "" && !a.Deprecated {
			return docerr.RenderInconsistency("action", a.Name, "desc")
		}
		if err := validateParams("action", a.Name, a.Params); err != nil {
			return err
		}
	}
	for _, h := range m.Highlights {
		if h.Name == "" {
			return docerr.RenderInconsistency("highlight", "", "name")
		}
	}
	for _, t := range m.Topics {
		if t.Name == "" || t.Tag == "" {
			return docerr.RenderInconsistency("topic", t.Name, "name/tag")
		}
	}
	return nil
}

func validateParams(entity, name string, params []Param) error {
	for _, p := range params {
		if p.Name == "" || p.Type == "" {
			return docerr.RenderInconsistency(entity, name, "param name/type")
		}
	}
	return nil
}
