// Package pipeline runs documentation generation end to end: parse sources,
// build the model, render Markdown and vimdoc, and update target files.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"vimdocgen/internal/annotation"
	"vimdocgen/internal/config"
	"vimdocgen/internal/crawler"
	"vimdocgen/internal/logging"
	"vimdocgen/internal/markdown"
	"vimdocgen/internal/model"
	"vimdocgen/internal/section"
	"vimdocgen/internal/vimdoc"
)

// FileDiff is the pending change to one file in check mode.
type FileDiff struct {
	Path string
	Diff string
}

// Result describes what a run changed or would change.
type Result struct {
	Changed  []string
	Diffs    []FileDiff
	Warnings []error
	Report   *Report
}

// Generator is constructed once per run from the loaded configuration.
type Generator struct {
	cfg    *config.Config
	log    logging.Logger
	parser *annotation.Parser
	feed   *model.Feed
}

// Option customizes a Generator.
type Option func(*Generator)

// WithFeedRunner replaces the command runner used for introspection feeds.
func WithFeedRunner(run model.Runner) Option {
	return func(g *Generator) {
		g.feed = model.NewFeed(g.cfg.Project.Root, run)
	}
}

func New(cfg *config.Config, log logging.Logger, opts ...Option) *Generator {
	if log == nil {
		log = logging.NoOp()
	}
	g := &Generator{
		cfg:    cfg,
		log:    log,
		parser: annotation.NewParser(annotation.LuaLS, logging.Named(log, "annotation")),
		feed:   model.NewFeed(cfg.Project.Root, nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run generates all artifacts. Every step writes to an in-memory overlay so
// later steps see earlier edits. Files are written only when all steps
// succeed; in check mode nothing is written and the result carries unified
// diffs instead.
func (g *Generator) Run(ctx context.Context, check bool) (*Result, error) {
	mode := "write"
	if check {
		mode = "check"
	}
	overlay := section.NewOverlay(section.OSStore{})

	res := &Result{Report: NewReport(mode)}
	r := &run{
		Generator: g,
		replacer:  section.NewReplacer(overlay, logging.Named(g.log, "section")),
		report:    res.Report,
		changed:   make(map[string]bool),
	}

	m, warnings, err := r.buildModel(ctx)
	res.Warnings = warnings
	if err != nil {
		return res, err
	}

	steps := []struct {
		name string
		fn   func(*model.DocModel) error
	}{
		{"readme-options", r.readmeOptions},
		{"api-doc", r.apiDoc},
		{"toc", r.tocDocs},
		{"linked-toc", r.linkedTocs},
		{"vimdoc", r.vimdoc},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		h := res.Report.BeginStage(step.name)
		err := step.fn(m)
		res.Report.EndStage(h, nil, err)
		if err != nil {
			return res, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	for p := range r.changed {
		res.Changed = append(res.Changed, p)
	}
	sort.Strings(res.Changed)

	if check {
		res.Diffs = r.diffs(overlay)
		return res, nil
	}

	h := res.Report.BeginStage("commit")
	err = overlay.Commit()
	res.Report.EndStage(h, map[string]int{"files": len(overlay.Pending())}, err)
	if err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

type run struct {
	*Generator
	replacer *section.Replacer
	report   *Report
	changed  map[string]bool
}

func (r *run) buildModel(ctx context.Context) (*model.DocModel, []error, error) {
	h := r.report.BeginStage("model")
	m, warnings, err := r.assemble(ctx)
	counters := map[string]int{"warnings": len(warnings)}
	if m != nil {
		counters["functions"] = len(m.Functions)
		counters["types"] = len(m.Types)
		counters["actions"] = len(m.Actions)
		counters["highlights"] = len(m.Highlights)
	}
	r.report.EndStage(h, counters, err)
	return m, warnings, err
}

func (r *run) assemble(ctx context.Context) (*model.DocModel, []error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cfg := r.cfg
	m := &model.DocModel{
		Project:   cfg.Project.Name,
		TagPrefix: cfg.Project.TagPrefix,
		Types:     annotation.TypeTable{},
		Columns:   model.ColumnsFromConfig(cfg.Columns),
		Topics:    model.TopicsFromConfig(cfg.Vimdoc.Sections),
	}
	var warnings []error

	if cfg.Source.Module != "" {
		mod, err := r.parser.ParseFile(ctx, cfg.Path(cfg.Source.Module))
		if err != nil {
			return nil, nil, err
		}
		m.Functions = mod.Functions
		m.Types.Merge(mod.Types)
		warnings = append(warnings, mod.Warnings...)
	}

	if cfg.Source.TypesDir != "" {
		cr := crawler.NewCrawler(r.parser, logging.Named(r.log, "crawler"))
		types, typeWarnings, err := cr.CollectTypes(ctx, cfg.Path(cfg.Source.TypesDir))
		if err != nil {
			return nil, warnings, fmt.Errorf("failed to collect types: %w", err)
		}
		m.Types.Merge(types)
		warnings = appendUnique(warnings, typeWarnings)
	}

	if cfg.Defaults.File != "" {
		lines, err := r.replacer.ExtractFile(cfg.Path(cfg.Defaults.File), cfg.Defaults.Start, cfg.Defaults.End, section.Options{})
		if err != nil {
			return nil, warnings, err
		}
		m.Config = model.ConfigBlock{
			SetupCall:  cfg.Defaults.SetupCall,
			SetupClose: cfg.Defaults.SetupClose,
			Lines:      lines,
		}
	}

	actions, err := r.feed.Actions(ctx, cfg.Feeds.Actions)
	if err != nil {
		return nil, warnings, fmt.Errorf("actions feed: %w", err)
	}
	m.Actions = actions

	highlights, err := r.feed.Highlights(ctx, cfg.Feeds.Highlights)
	if err != nil {
		return nil, warnings, fmt.Errorf("highlights feed: %w", err)
	}
	m.Highlights = highlights

	if err := m.Validate(); err != nil {
		return nil, warnings, err
	}
	return m, warnings, nil
}

func (r *run) replace(path, start, end string, lines []string) error {
	changed, err := r.replacer.ReplaceFile(path, start, end, lines)
	if err != nil {
		return err
	}
	if changed {
		r.changed[path] = true
	}
	return nil
}

func (r *run) readmeOptions(m *model.DocModel) error {
	cfg := r.cfg
	if cfg.Defaults.File == "" || cfg.Defaults.ReadmeStart == "" || cfg.Markdown.Readme == "" {
		return nil
	}
	return r.replace(cfg.Path(cfg.Markdown.Readme), cfg.Defaults.ReadmeStart, cfg.Defaults.ReadmeEnd, markdown.RenderConfig(m.Config))
}

func (r *run) apiDoc(m *model.DocModel) error {
	cfg := r.cfg
	if cfg.Markdown.APIDoc == "" {
		return nil
	}
	apiPath := cfg.Path(cfg.Markdown.APIDoc)

	api := padded(markdown.RenderAPI(m.Functions, m.Types, cfg.Markdown.APIHeadingLevel))
	if err := r.replace(apiPath, cfg.Markdown.APIStart, cfg.Markdown.APIEnd, api); err != nil {
		return err
	}

	lines, err := r.replacer.ReadLines(apiPath)
	if err != nil {
		return err
	}
	toc := padded(markdown.GenerateToc(lines, 1).Lines)
	if err := r.replace(apiPath, cfg.Markdown.TOCStart, cfg.Markdown.TOCEnd, toc); err != nil {
		return err
	}

	if cfg.Markdown.Readme == "" {
		return nil
	}
	readme := cfg.Path(cfg.Markdown.Readme)
	prefix := cfg.Rel(filepath.Dir(readme), cfg.Markdown.APIDoc)
	return r.replace(readme, cfg.Markdown.APIStart, cfg.Markdown.APIEnd, markdown.AddLinkPath(prefix, toc))
}

func (r *run) tocDocs(*model.DocModel) error {
	cfg := r.cfg
	for _, doc := range cfg.Markdown.TOCDocs {
		path := cfg.Path(doc.Path)
		lines, err := r.replacer.ReadLines(path)
		if err != nil {
			return err
		}
		toc := padded(markdown.GenerateToc(lines, doc.MaxLevel).Lines)
		if err := r.replace(path, cfg.Markdown.TOCStart, cfg.Markdown.TOCEnd, toc); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) linkedTocs(*model.DocModel) error {
	cfg := r.cfg
	for _, l := range cfg.Markdown.Linked {
		lines, err := r.replacer.ReadLines(cfg.Path(l.Doc))
		if err != nil {
			return err
		}
		into := cfg.Path(l.Into)
		prefix := cfg.Rel(filepath.Dir(into), l.Doc)
		toc := padded(markdown.AddLinkPath(prefix, markdown.GenerateToc(lines, l.MaxLevel).Lines))
		if err := r.replace(into, l.Start, l.End, toc); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) vimdoc(m *model.DocModel) error {
	cfg := r.cfg
	if cfg.Vimdoc.Path == "" {
		return nil
	}
	sections, err := r.vimdocSections(m)
	if err != nil {
		return err
	}
	doc := vimdoc.Document{
		File:        filepath.Base(cfg.Vimdoc.Path),
		Tags:        cfg.Vimdoc.Tags,
		ContentsTag: cfg.TagOf("contents"),
		Width:       cfg.Vimdoc.Width,
		Sections:    sections,
	}
	path := cfg.Path(cfg.Vimdoc.Path)
	changed, err := r.replacer.WriteIfChanged(path, []byte(section.JoinLines(doc.Render())))
	if err != nil {
		return err
	}
	if changed {
		r.changed[path] = true
	}
	return nil
}

var defaultSectionNames = map[string]string{
	config.SectionConfig:     "Config",
	config.SectionAPI:        "API",
	config.SectionColumns:    "Columns",
	config.SectionActions:    "Actions",
	config.SectionHighlights: "Highlights",
}

func (r *run) vimdocSections(m *model.DocModel) ([]model.DocSection, error) {
	cfg := r.cfg
	rd := vimdoc.NewRenderer(vimdoc.Options{
		Width:           cfg.Vimdoc.Width,
		TagPrefix:       cfg.Project.TagPrefix,
		ActionTagPrefix: cfg.Vimdoc.ActionTagPrefix,
		ColumnTagPrefix: cfg.Vimdoc.ColumnTagPrefix,
		SortableNote:    cfg.Vimdoc.SortableNote,
		ActionsIntro:    cfg.Vimdoc.ActionsIntro,
		ColumnsIntro:    cfg.Vimdoc.ColumnsIntro,
		ConfigIndent:    cfg.Defaults.VimdocIndent,
	})

	var out []model.DocSection
	for _, spec := range cfg.SectionOrder() {
		name := spec.Name
		if name == "" {
			name = defaultSectionNames[spec.Kind]
		}
		tag := spec.Tag
		if tag == "" {
			tag = cfg.TagOf(spec.Kind)
		}

		switch spec.Kind {
		case config.SectionConfig:
			if cfg.Defaults.File != "" {
				out = append(out, rd.Config(name, tag, m.Config))
			}
		case config.SectionAPI:
			out = append(out, rd.API(name, tag, m.Functions, m.Types))
		case config.SectionColumns:
			if len(m.Columns) > 0 {
				out = append(out, rd.Columns(name, tag, m.Columns))
			}
		case config.SectionActions:
			if len(m.Actions) > 0 {
				out = append(out, rd.Actions(name, tag, m.Actions))
			}
		case config.SectionHighlights:
			if len(m.Highlights) > 0 {
				out = append(out, rd.Highlights(name, tag, m.Highlights))
			}
		case config.SectionText:
			topic, ok := m.Topic(spec.Tag)
			if !ok {
				return nil, fmt.Errorf("topic %q missing from model", spec.Tag)
			}
			out = append(out, rd.Topic(topic))
		}
	}
	return out, nil
}

func (r *run) diffs(overlay *section.Overlay) []FileDiff {
	var out []FileDiff
	for _, p := range overlay.Pending() {
		after, err := overlay.ReadFile(p)
		if err != nil {
			continue
		}
		before, _ := overlay.Base().ReadFile(p)
		if string(before) == string(after) {
			continue
		}
		name := p
		if rel, err := filepath.Rel(r.cfg.Project.Root, p); err == nil {
			name = filepath.ToSlash(rel)
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before)),
			B:        difflib.SplitLines(string(after)),
			FromFile: "a/" + name,
			ToFile:   "b/" + name,
			Context:  3,
		})
		if err != nil {
			r.log.Warn("failed to diff", "path", p, "error", err.Error())
			continue
		}
		out = append(out, FileDiff{Path: name, Diff: diff})
	}
	return out
}

// appendUnique adds warnings not already present. The API module usually
// lives inside the types tree, so its warnings come back from the crawl.
func appendUnique(warnings, more []error) []error {
	seen := make(map[string]bool, len(warnings))
	for _, w := range warnings {
		seen[w.Error()] = true
	}
	for _, w := range more {
		if !seen[w.Error()] {
			seen[w.Error()] = true
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// padded surrounds generated lines with one blank line on each side.
func padded(lines []string) []string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, "")
	out = append(out, lines...)
	return append(out, "")
}
