package lint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vimdocgen/internal/docerr"
	"vimdocgen/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLinter_ResolvableLinks(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	writeFile(t, readme, `# plugin

- [Setup](#setup)
- [open(dir, opts, cb)](doc/api.md#opendir-opts-cb)
- [Second setup](#setup-1)
- [Recipes](doc/recipes.md)
- [Home](https://example.com/#nothing)
- [Docs dir](doc)

## Setup

## Setup

`+"```lua"+`
-- [not a link](missing.md)
`+"```"+`
`)
	writeFile(t, filepath.Join(dir, "doc", "api.md"), "# API\n\n## open(dir, opts, cb)\n")
	writeFile(t, filepath.Join(dir, "doc", "recipes.md"), "# Recipes\n")

	report, err := NewLinter(nil).Lint([]string{readme})
	require.NoError(t, err)
	assert.True(t, report.OK(), "%v", report.Problems)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 6, report.Links)
}

func TestLinter_MissingTargets(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	writeFile(t, readme, `# plugin

[gone](missing.md#x)
[bad anchor](doc/api.md#nope)
[local](#nowhere)
`)
	other := filepath.Join(dir, "doc", "api.md")
	writeFile(t, other, "# API\n\n[back](../README.md#nothing-here)\n")

	rec := &logging.Recorder{}
	report, err := NewLinter(rec).Lint([]string{readme, other})
	require.NoError(t, err)

	assert.False(t, report.OK())
	require.Len(t, report.Problems, 4, "problems are collected across files")
	for _, p := range report.Problems {
		assert.True(t, errors.Is(p, docerr.ErrLinkTargetMissing))
	}
	assert.Contains(t, report.Problems[0].Error(), "missing.md#x")
	assert.Equal(t, 4, rec.Count("warn"))
}

func TestLinter_UnreadableInput(t *testing.T) {
	_, err := NewLinter(nil).Lint([]string{filepath.Join(t.TempDir(), "absent.md")})
	assert.Error(t, err)
}
