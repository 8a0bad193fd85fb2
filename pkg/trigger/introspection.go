package trigger

import (
	"github.com/aretw0/introspection"
)

// BusState exposes internal state for observability.
type BusState struct {
	Subscribers  int `json:"subscribers"`
	Suppressions int `json:"suppressions"`
	Published    int `json:"published"`
}

// State implements introspection.Introspectable.
func (b *Bus) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BusState{
		Subscribers:  len(b.handlers),
		Suppressions: len(b.suppressed),
		Published:    b.published,
	}
}

// ComponentType implements introspection.Component.
func (b *Bus) ComponentType() string {
	return "trigger-bus"
}

var _ introspection.Introspectable = (*Bus)(nil)
var _ introspection.Component = (*Bus)(nil)
