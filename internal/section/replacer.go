package section

import (
	"fmt"
	"regexp"

	"vimdocgen/internal/logging"
)

// Replacer applies section replacements to files through a FileStore. Files
// are written only when their content changes.
type Replacer struct {
	store FileStore
	log   logging.Logger
}

func NewReplacer(store FileStore, log logging.Logger) *Replacer {
	if log == nil {
		log = logging.NoOp()
	}
	return &Replacer{store: store, log: log}
}

// ReadLines reads path and splits it into lines.
func (r *Replacer) ReadLines(path string) ([]string, error) {
	data, err := r.store.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return SplitLines(string(data)), nil
}

// ExtractFile reads path and returns the region between the markers.
func (r *Replacer) ExtractFile(path, start, end string, opts Options) ([]string, error) {
	startRe, endRe, err := compilePair(start, end)
	if err != nil {
		return nil, err
	}
	lines, err := r.ReadLines(path)
	if err != nil {
		return nil, err
	}
	return Extract(path, lines, startRe, endRe, opts)
}

// ReplaceFile swaps the region between the markers for repl. It reports
// whether the file content changed. A missing marker leaves the file as is.
func (r *Replacer) ReplaceFile(path, start, end string, repl []string) (bool, error) {
	startRe, endRe, err := compilePair(start, end)
	if err != nil {
		return false, err
	}
	data, err := r.store.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines, err := Replace(path, SplitLines(string(data)), startRe, endRe, repl)
	if err != nil {
		return false, err
	}

	updated := JoinLines(lines)
	if updated == string(data) {
		r.log.Debug("section unchanged", "path", path, "start", start)
		return false, nil
	}
	if err := r.store.WriteFile(path, []byte(updated)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.log.Info("section updated", "path", path, "start", start, "lines", len(repl))
	return true, nil
}

// WriteIfChanged writes data to path unless the current content is identical.
func (r *Replacer) WriteIfChanged(path string, data []byte) (bool, error) {
	current, err := r.store.ReadFile(path)
	if err == nil && string(current) == string(data) {
		return false, nil
	}
	if err := r.store.WriteFile(path, data); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.log.Info("file written", "path", path)
	return true, nil
}

func compilePair(start, end string) (*regexp.Regexp, *regexp.Regexp, error) {
	startRe, err := Compile(start)
	if err != nil {
		return nil, nil, err
	}
	endRe, err := Compile(end)
	if err != nil {
		return nil, nil, err
	}
	return startRe, endRe, nil
}
