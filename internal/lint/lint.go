// Package lint checks that relative links in Markdown documents resolve to
// existing files and heading anchors.
package lint

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"vimdocgen/internal/docerr"
	"vimdocgen/internal/logging"
	"vimdocgen/internal/markdown"
)

// Report summarizes a lint run. Problems holds one LinkTargetMissing error per
// unresolved link, across all files.
type Report struct {
	Files    int
	Links    int
	Problems []error
}

// OK reports whether every link resolved.
func (r Report) OK() bool { return len(r.Problems) == 0 }

type document struct {
	anchors map[string]bool
	links   []string
}

// Linter parses Markdown with goldmark and caches parsed documents so anchors
// in a target file are read once.
type Linter struct {
	md    goldmark.Markdown
	log   logging.Logger
	cache map[string]*document
}

func NewLinter(log logging.Logger) *Linter {
	if log == nil {
		log = logging.NoOp()
	}
	return &Linter{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:   log,
		cache: make(map[string]*document),
	}
}

// Lint checks every file. Unreadable input files are an error; unresolved
// links are collected in the report.
func (l *Linter) Lint(files []string) (Report, error) {
	var report Report
	for _, file := range files {
		doc, err := l.load(file)
		if err != nil {
			return report, err
		}
		report.Files++
		for _, dest := range doc.links {
			report.Links++
			if err := l.check(file, doc, dest); err != nil {
				l.log.Warn("unresolved link", "file", file, "link", dest)
				report.Problems = append(report.Problems, err)
			}
		}
	}
	l.log.Debug("lint finished", "files", report.Files, "links", report.Links, "problems", len(report.Problems))
	return report, nil
}

func (l *Linter) check(file string, doc *document, dest string) error {
	if isExternal(dest) {
		return nil
	}
	target, anchor, _ := strings.Cut(dest, "#")

	if target == "" {
		if anchor != "" && !doc.anchors[anchor] {
			return docerr.LinkTargetMissing(file, dest, "no such heading")
		}
		return nil
	}

	unescaped, err := url.PathUnescape(target)
	if err != nil {
		return docerr.LinkTargetMissing(file, dest, "malformed path")
	}
	path := filepath.Join(filepath.Dir(file), filepath.FromSlash(unescaped))
	info, err := os.Stat(path)
	if err != nil {
		return docerr.LinkTargetMissing(file, dest, "file not found")
	}
	if anchor == "" || info.IsDir() || !isMarkdown(path) {
		return nil
	}

	targetDoc, err := l.load(path)
	if err != nil {
		return docerr.LinkTargetMissing(file, dest, err.Error())
	}
	if !targetDoc.anchors[anchor] {
		return docerr.LinkTargetMissing(file, dest, "no such heading in "+filepath.Base(path))
	}
	return nil
}

func (l *Linter) load(path string) (*document, error) {
	key := filepath.Clean(path)
	if doc, ok := l.cache[key]; ok {
		return doc, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := l.parse(src)
	l.cache[key] = doc
	return doc, nil
}

func (l *Linter) parse(src []byte) *document {
	doc := &document{anchors: make(map[string]bool)}
	slugger := markdown.NewSlugger()
	root := l.md.Parser().Parse(text.NewReader(src))

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			doc.anchors[slugger.Slug(string(node.Text(src)))] = true
		case *ast.Link:
			doc.links = append(doc.links, string(node.Destination))
		}
		return ast.WalkContinue, nil
	})
	return doc
}

func isExternal(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
