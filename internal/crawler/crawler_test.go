package crawler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vimdocgen/internal/annotation"
)

func TestCrawler_ScanProject(t *testing.T) {
	c := NewCrawler(annotation.NewParser(annotation.LuaLS, nil), nil)
	root := filepath.Join("testdata", "plugin")

	var paths []string
	err := c.ScanProject(context.Background(), root, func(mod *annotation.Module) {
		rel, err := filepath.Rel(root, mod.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"lua/demo/a.lua", "lua/demo/sub/b.lua"}, paths,
		"walk order is lexical and ignored directories are skipped")
}

func TestCrawler_CollectTypes(t *testing.T) {
	c := NewCrawler(annotation.NewParser(annotation.LuaLS, nil), nil)

	types, warnings, err := c.CollectTypes(context.Background(), filepath.Join("testdata", "plugin"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Contains(t, types, "demo.Opts")
	require.Len(t, types["demo.Opts"].Fields, 2, "first definition wins")
	assert.Equal(t, "width", types["demo.Opts"].Fields[0].Name)

	assert.Contains(t, types, "demo.Size")
	assert.Contains(t, types, "demo.Other")
	assert.NotContains(t, types, "demo.Ignored")
}

func TestCrawler_Cancelled(t *testing.T) {
	c := NewCrawler(annotation.NewParser(annotation.LuaLS, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.ScanProject(ctx, filepath.Join("testdata", "plugin"), func(*annotation.Module) {})
	assert.ErrorIs(t, err, context.Canceled)
}
