package pipeline

import (
	"github.com/aretw0/introspection"
)

// PipelineState exposes run counters for observability.
type PipelineState struct {
	Runs     int    `json:"runs"`
	Skipped  int    `json:"skipped"`
	Updated  int    `json:"updated"`
	Failed   int    `json:"failed"`
	InFlight int    `json:"in_flight"`
	LastRun  string `json:"last_run,omitempty"`
	LastID   string `json:"last_id,omitempty"`
}

// State implements introspection.Introspectable.
func (p *Pipeline) State() any {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PipelineState{
		Runs:     p.stats.runs,
		Skipped:  p.stats.skipped,
		Updated:  p.stats.updated,
		Failed:   p.stats.failed,
		InFlight: p.stats.inFlight,
		LastRun:  p.stats.last.RunID,
		LastID:   p.stats.last.ID,
	}
}

// ComponentType implements introspection.Component.
func (p *Pipeline) ComponentType() string {
	return "pipeline"
}

var _ introspection.Introspectable = (*Pipeline)(nil)
var _ introspection.Component = (*Pipeline)(nil)
