package crawler

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/logging"
)

// Crawler scans a plugin tree for Lua modules.
type Crawler struct {
	parser  *annotation.Parser
	log     logging.Logger
	ignored []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(p *annotation.Parser, log logging.Logger) *Crawler {
	if log == nil {
		log = logging.NoOp()
	}
	return &Crawler{
		parser:  p,
		log:     log,
		ignored: []string{".git", "node_modules", "testdata", ".tests", "deps"},
	}
}

// ScanProject walks root in lexical order and hands every parsed module to
// onModule. Files that fail to parse are logged and skipped.
func (c *Crawler) ScanProject(ctx context.Context, root string, onModule func(*annotation.Module)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".lua") {
			return nil
		}

		mod, err := c.parser.ParseFile(ctx, path)
		if err != nil {
			c.log.Warn("skipping unparsable module", "path", path, "error", err.Error())
			return nil
		}

		onModule(mod)
		return nil
	})
}

// CollectTypes merges the type definitions of every module under root. The
// first definition of a name wins. Parse warnings are returned alongside.
func (c *Crawler) CollectTypes(ctx context.Context, root string) (annotation.TypeTable, []error, error) {
	types := annotation.TypeTable{}
	var warnings []error
	err := c.ScanProject(ctx, root, func(mod *annotation.Module) {
		types.Merge(mod.Types)
		warnings = append(warnings, mod.Warnings...)
	})
	if err != nil {
		return nil, nil, err
	}
	c.log.Debug("collected type definitions", "root", root, "types", len(types))
	return types, warnings, nil
}
