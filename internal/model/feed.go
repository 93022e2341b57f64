package model

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"vimdocgen/internal/config"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	actionsSchema    = "schemas/actions.schema.json"
	highlightsSchema = "schemas/highlights.schema.json"
)

var (
	schemaCacheMu sync.Mutex
	schemaCache   = make(map[string]*jsonschema.Schema)
)

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec. Stderr is included in errors.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("command %s failed: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}

// Feed reads introspection records from files or commands.
type Feed struct {
	dir string
	run Runner
}

// NewFeed resolves relative feed files against dir. A nil runner uses
// ExecRunner.
func NewFeed(dir string, run Runner) *Feed {
	if run == nil {
		run = ExecRunner
	}
	return &Feed{dir: dir, run: run}
}

// Actions loads and validates action records. A zero source yields none.
func (f *Feed) Actions(ctx context.Context, src config.FeedSource) ([]Action, error) {
	if src.IsZero() {
		return nil, nil
	}
	data, err := f.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return ParseActions(data)
}

// Highlights loads and validates highlight records. A zero source yields none.
func (f *Feed) Highlights(ctx context.Context, src config.FeedSource) ([]Highlight, error) {
	if src.IsZero() {
		return nil, nil
	}
	data, err := f.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return ParseHighlights(data)
}

func (f *Feed) read(ctx context.Context, src config.FeedSource) ([]byte, error) {
	if len(src.Command) > 0 {
		return f.run(ctx, src.Command[0], src.Command[1:]...)
	}
	path := src.File
	if f.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", path, err)
	}
	return data, nil
}

type actionRecord struct {
	Name       string      `json:"name"`
	Desc       string      `json:"desc"`
	Parameters paramRecord `json:"parameters"`
	Deprecated bool        `json:"deprecated"`
}

type highlightRecord struct {
	Name string  `json:"name"`
	Desc *string `json:"desc"`
}

// paramRecord accepts either an ordered array of named params or an object
// keyed by name. Object keys are sorted.
type paramRecord []Param

func (p *paramRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if data[0] == '[' {
		var list []Param
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	var byName map[string]struct {
		Type string `json:"type"`
		Desc string `json:"desc"`
	}
	if err := json.Unmarshal(data, &byName); err != nil {
		return err
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Param, 0, len(names))
	for _, name := range names {
		out = append(out, Param{Name: name, Type: byName[name].Type, Desc: byName[name].Desc})
	}
	*p = out
	return nil
}

// ParseActions validates data against the action schema and decodes it.
func ParseActions(data []byte) ([]Action, error) {
	if err := validate(actionsSchema, data); err != nil {
		return nil, err
	}
	var records []actionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}
	out := make([]Action, 0, len(records))
	for _, r := range records {
		out = append(out, Action{
			Name:       r.Name,
			Desc:       r.Desc,
			Params:     []Param(r.Parameters),
			Deprecated: r.Deprecated,
		})
	}
	return out, nil
}

// ParseHighlights validates data against the highlight schema and decodes it.
func ParseHighlights(data []byte) ([]Highlight, error) {
	if err := validate(highlightsSchema, data); err != nil {
		return nil, err
	}
	var records []highlightRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %w", err)
	}
	out := make([]Highlight, 0, len(records))
	for _, r := range records {
		h := Highlight{Name: r.Name}
		if r.Desc != nil {
			h.Desc = *r.Desc
		}
		out = append(out, h)
	}
	return out, nil
}

func validate(schemaPath string, data []byte) error {
	schema, err := loadCompiledSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", schemaPath, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("feed is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("feed schema validation failed: %w", err)
	}
	return nil
}

func loadCompiledSchema(schemaPath string) (*jsonschema.Schema, error) {
	schemaCacheMu.Lock()
	defer schemaCacheMu.Unlock()
	if cached, ok := schemaCache[schemaPath]; ok {
		return cached, nil
	}

	raw, err := schemaFS.ReadFile(schemaPath)
	if err != nil {
		return nil, err
	}
	url := "mem:///" + schemaPath
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	schemaCache[schemaPath] = compiled
	return compiled, nil
}
