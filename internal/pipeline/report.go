package pipeline

import (
	"strings"
	"time"
)

// StageMetric records one pipeline stage.
type StageMetric struct {
	Name     string
	Status   string
	Duration time.Duration
	Counters map[string]int
	Error    string
}

// Report collects stage metrics for a run.
type Report struct {
	Mode   string
	Stages []StageMetric
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewReport(mode string) *Report {
	return &Report{Mode: mode}
}

func (r *Report) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now()}
}

// EndStage closes h. A non-nil err marks the stage failed.
func (r *Report) EndStage(h StageHandle, counters map[string]int, err error) {
	if r == nil || h.name == "" {
		return
	}
	m := StageMetric{
		Name:     h.name,
		Status:   "ok",
		Duration: time.Since(h.started),
		Counters: counters,
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Stages = append(r.Stages, m)
}

// Failed returns the names of stages that ended in error.
func (r *Report) Failed() []string {
	var out []string
	for _, s := range r.Stages {
		if s.Status == "error" {
			out = append(out, s.Name)
		}
	}
	return out
}
