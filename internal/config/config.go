package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth    = 78
	minWidth        = 20
	DefaultFileName = "docgen.yaml"
)

// Section kinds accepted in vimdoc.sections.
const (
	SectionConfig     = "config"
	SectionAPI        = "api"
	SectionColumns    = "columns"
	SectionActions    = "actions"
	SectionHighlights = "highlights"
	SectionText       = "text"
)

type Config struct {
	Project  Project  `yaml:"project"`
	Source   Source   `yaml:"source"`
	Defaults Defaults `yaml:"defaults"`
	Markdown Markdown `yaml:"markdown"`
	Vimdoc   Vimdoc   `yaml:"vimdoc"`
	Feeds    Feeds    `yaml:"feeds"`
	Columns  []Column `yaml:"columns"`
	Log      Log      `yaml:"log"`
}

type Project struct {
	Root string `yaml:"root"`
	Name string `yaml:"name"`
	// TagPrefix prefixes API help tags, e.g. *oil.open*.
	TagPrefix string `yaml:"tag_prefix"`
}

type Source struct {
	Module   string `yaml:"module"`    // module whose functions form the API
	TypesDir string `yaml:"types_dir"` // tree scanned for ---@class / ---@alias
}

// Defaults locates the literal configuration-defaults block.
type Defaults struct {
	File         string `yaml:"file"`
	Start        string `yaml:"start"`
	End          string `yaml:"end"`
	SetupCall    string `yaml:"setup_call"`
	SetupClose   string `yaml:"setup_close"`
	ReadmeStart  string `yaml:"readme_start"`
	ReadmeEnd    string `yaml:"readme_end"`
	VimdocIndent int    `yaml:"vimdoc_indent"`
}

type Markdown struct {
	Readme          string      `yaml:"readme"`
	APIDoc          string      `yaml:"api_doc"`
	APIHeadingLevel int         `yaml:"api_heading_level"`
	APIStart        string      `yaml:"api_start"`
	APIEnd          string      `yaml:"api_end"`
	TOCStart        string      `yaml:"toc_start"`
	TOCEnd          string      `yaml:"toc_end"`
	TOCDocs         []TOCDoc    `yaml:"toc_docs"`
	Linked          []LinkedTOC `yaml:"linked"`
	LintFiles       []string    `yaml:"lint_files"`
}

// TOCDoc is a Markdown document whose own TOC region is refreshed.
type TOCDoc struct {
	Path     string `yaml:"path"`
	MaxLevel int    `yaml:"max_level"`
}

// LinkedTOC copies the TOC of Doc into a region of Into, with links rewritten
// to point at Doc.
type LinkedTOC struct {
	Doc      string `yaml:"doc"`
	Into     string `yaml:"into"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	MaxLevel int    `yaml:"max_level"`
}

type Vimdoc struct {
	Path            string        `yaml:"path"`
	Width           int           `yaml:"width"`
	Tags            []string      `yaml:"tags"`
	Sections        []SectionSpec `yaml:"sections"`
	ActionsIntro    string        `yaml:"actions_intro"`
	ColumnsIntro    string        `yaml:"columns_intro"`
	ActionTagPrefix string        `yaml:"action_tag_prefix"`
	ColumnTagPrefix string        `yaml:"column_tag_prefix"`
	SortableNote    string        `yaml:"sortable_note"`
}

type SectionSpec struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
	Body string `yaml:"body"`
}

type Feeds struct {
	Actions    FeedSource `yaml:"actions"`
	Highlights FeedSource `yaml:"highlights"`
}

// FeedSource is either a JSON file or a command that prints JSON.
type FeedSource struct {
	File    string   `yaml:"file"`
	Command []string `yaml:"command"`
}

func (f FeedSource) IsZero() bool {
	return f.File == "" && len(f.Command) == 0
}

type Column struct {
	Name     string   `yaml:"name"`
	Adapters []string `yaml:"adapters"`
	Editable bool     `yaml:"editable"`
	Sortable bool     `yaml:"sortable"`
	Summary  string   `yaml:"summary"`
	Params   []Param  `yaml:"params"`
}

type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Desc string `yaml:"desc"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Project: Project{Root: ".", Name: "oil", TagPrefix: "oil"},
		Source: Source{
			Module:   "lua/oil/init.lua",
			TypesDir: "lua",
		},
		Defaults: Defaults{
			File:         "lua/oil/config.lua",
			Start:        `^\s*local default_config =`,
			End:          `^}$`,
			SetupCall:    `require("oil").setup({`,
			SetupClose:   "})",
			ReadmeStart:  `^## Options$`,
			ReadmeEnd:    `^}\)$`,
			VimdocIndent: 4,
		},
		Markdown: Markdown{
			Readme:          "README.md",
			APIDoc:          "doc/api.md",
			APIHeadingLevel: 2,
			APIStart:        `^<!-- API -->$`,
			APIEnd:          `^<!-- /API -->$`,
			TOCStart:        `^<!-- TOC -->$`,
			TOCEnd:          `^<!-- /TOC -->$`,
			TOCDocs: []TOCDoc{
				{Path: "README.md", MaxLevel: 1},
			},
		},
		Vimdoc: Vimdoc{
			Path:            "doc/oil.txt",
			Width:           DefaultWidth,
			Tags:            []string{"Oil", "oil", "oil.nvim"},
			ActionTagPrefix: "actions.",
			ColumnTagPrefix: "column-",
			SortableNote:    "this column can be used in view_props.sort",
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

// LoadConfig reads path over DefaultConfig and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if !filepath.IsAbs(cfg.Project.Root) {
			cfg.Project.Root = filepath.Join(filepath.Dir(path), cfg.Project.Root)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if root := os.Getenv("VIMDOCGEN_ROOT"); root != "" {
		c.Project.Root = root
	}
	if width := os.Getenv("VIMDOCGEN_WIDTH"); width != "" {
		n, err := strconv.Atoi(width)
		if err != nil {
			return fmt.Errorf("invalid VIMDOCGEN_WIDTH %q: %w", width, err)
		}
		c.Vimdoc.Width = n
	}
	if level := os.Getenv("VIMDOCGEN_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	return nil
}

// Validate checks widths and that every marker pattern compiles.
func (c *Config) Validate() error {
	if c.Vimdoc.Width < minWidth {
		return fmt.Errorf("vimdoc.width must be at least %d, got %d", minWidth, c.Vimdoc.Width)
	}
	if c.Markdown.APIHeadingLevel < 1 || c.Markdown.APIHeadingLevel > 6 {
		return fmt.Errorf("markdown.api_heading_level must be 1..6, got %d", c.Markdown.APIHeadingLevel)
	}

	patterns := map[string]string{
		"defaults.start":        c.Defaults.Start,
		"defaults.end":          c.Defaults.End,
		"defaults.readme_start": c.Defaults.ReadmeStart,
		"defaults.readme_end":   c.Defaults.ReadmeEnd,
		"markdown.api_start":    c.Markdown.APIStart,
		"markdown.api_end":      c.Markdown.APIEnd,
		"markdown.toc_start":    c.Markdown.TOCStart,
		"markdown.toc_end":      c.Markdown.TOCEnd,
	}
	for i, l := range c.Markdown.Linked {
		patterns[fmt.Sprintf("markdown.linked[%d].start", i)] = l.Start
		patterns[fmt.Sprintf("markdown.linked[%d].end", i)] = l.End
	}
	for key, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %w", key, p, err)
		}
	}

	for i, s := range c.Vimdoc.Sections {
		switch s.Kind {
		case SectionConfig, SectionAPI, SectionColumns, SectionActions, SectionHighlights:
		case SectionText:
			if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Tag) == "" {
				return fmt.Errorf("vimdoc.sections[%d]: text sections need name and tag", i)
			}
		default:
			return fmt.Errorf("vimdoc.sections[%d]: unknown kind %q", i, s.Kind)
		}
	}
	return nil
}

// Path resolves a project-relative path against the project root.
func (c *Config) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Project.Root, rel)
}

// Rel expresses an absolute project path relative to dir, slash separated, for
// use in Markdown links.
func (c *Config) Rel(dir, rel string) string {
	out, err := filepath.Rel(dir, c.Path(rel))
	if err != nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(out)
}

// SectionOrder returns the vimdoc section layout, defaulting when unset.
func (c *Config) SectionOrder() []SectionSpec {
	if len(c.Vimdoc.Sections) > 0 {
		return c.Vimdoc.Sections
	}
	return []SectionSpec{
		{Kind: SectionConfig},
		{Kind: SectionAPI},
		{Kind: SectionColumns},
		{Kind: SectionActions},
		{Kind: SectionHighlights},
	}
}

// TagOf builds a project scoped help tag, e.g. oil-config.
func (c *Config) TagOf(name string) string {
	return c.Project.TagPrefix + "-" + strings.ToLower(name)
}
