package logging

import (
	"fmt"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the logging contract used by every stage of the generator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures the go-logger backed logger.
type Options struct {
	Level  string
	Format string
}

// New constructs a logger backed by go-logger.
func New(opts Options) (Logger, error) {
	options := []glog.Option{}

	if level := normalizeLevel(opts.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", opts.Format)
	}

	return &adapter{inner: glog.NewLogger(options...)}, nil
}

// Named returns a child logger for a pipeline stage when the backend supports it.
func Named(l Logger, name string) Logger {
	if a, ok := l.(*adapter); ok {
		if base, ok := a.inner.(*glog.BaseLogger); ok {
			return &adapter{inner: base.GetLogger(name)}
		}
	}
	return l
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}

// NoOp returns a logger that discards everything.
func NoOp() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}

// Entry is a single message captured by a Recorder.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// Recorder keeps every entry in memory. Tests use it to assert on warnings.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

func (r *Recorder) record(level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Msg: msg, Args: args})
}

func (r *Recorder) Debug(msg string, args ...any) { r.record("debug", msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record("info", msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record("warn", msg, args) }
func (r *Recorder) Error(msg string, args ...any) { r.record("error", msg, args) }

// Count returns the number of entries at level.
func (r *Recorder) Count(level string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
