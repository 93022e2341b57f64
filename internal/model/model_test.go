package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/config"
	"vimdocgen/internal/docerr"
)

func validModel() *DocModel {
	return &DocModel{
		Project:   "oil",
		TagPrefix: "oil",
		Functions: []annotation.FunctionSignature{{
			Name:   "open",
			Params: []annotation.Parameter{{Name: "dir", Type: "string"}},
		}},
		Columns:    []Column{{Name: "size", Summary: "The size of the file"}},
		Actions:    []Action{{Name: "select", Desc: "Open the entry"}, {Name: "old", Deprecated: true}},
		Highlights: []Highlight{{Name: "OilDir"}},
		Topics:     []Topic{{Name: "Trash", Tag: "oil-trash"}},
	}
}

func TestDocModel_Validate(t *testing.T) {
	require.NoError(t, validModel().Validate())

	tests := map[string]func(m *DocModel){
		"tag prefix":     func(m *DocModel) { m.TagPrefix = "" },
		"param type":     func(m *DocModel) { m.Functions[0].Params[0].Type = "" },
		"column summary": func(m *DocModel) { m.Columns[0].Summary = "" },
		"action desc":    func(m *DocModel) { m.Actions[0].Desc = "" },
		"action param":   func(m *DocModel) { m.Actions[0].Params = []Param{{Name: "x"}} },
		"highlight name": func(m *DocModel) { m.Highlights[0].Name = "" },
		"topic tag":      func(m *DocModel) { m.Topics[0].Tag = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			m := validModel()
			mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, docerr.ErrRenderInconsistency))
		})
	}
}

func TestColumnsFromConfig(t *testing.T) {
	cols := ColumnsFromConfig([]config.Column{{
		Name:     "mtime",
		Adapters: []string{"files"},
		Sortable: true,
		Summary:  "Last modified time of the file",
		Params: []config.Param{
			{Name: "highlight", Type: "string", Desc: "Highlight group"},
			{Name: "format", Type: "string", Desc: "Format string"},
		},
	}})
	require.Len(t, cols, 1)
	assert.Equal(t, []Param{
		{Name: "highlight", Type: "string", Desc: "Highlight group"},
		{Name: "format", Type: "string", Desc: "Format string"},
	}, cols[0].Params)
	assert.True(t, cols[0].Sortable)
	assert.False(t, cols[0].Editable)
}

func TestTopicsFromConfig(t *testing.T) {
	topics := TopicsFromConfig([]config.SectionSpec{
		{Kind: config.SectionAPI},
		{Kind: config.SectionText, Name: "Trash", Tag: "oil-trash", Body: "line one\n\nline two\n"},
	})
	require.Len(t, topics, 1)
	assert.Equal(t, []string{"line one", "", "line two"}, topics[0].Body)

	m := &DocModel{Topics: topics}
	got, ok := m.Topic("oil-trash")
	assert.True(t, ok)
	assert.Equal(t, "Trash", got.Name)
}
