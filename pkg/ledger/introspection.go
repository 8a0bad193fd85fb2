package ledger

import (
	"github.com/aretw0/introspection"
)

// LedgerState exposes internal state for observability.
type LedgerState struct {
	Key     string `json:"key"`
	Records int    `json:"records"`
	Total   int    `json:"total"`
	Writes  int    `json:"writes"`
}

// State implements introspection.Introspectable.
func (l *Ledger) State() any {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, r := range l.records {
		total += r.Count
	}

	return LedgerState{
		Key:     l.key,
		Records: len(l.records),
		Total:   total,
		Writes:  l.writes,
	}
}

// ComponentType implements introspection.Component.
func (l *Ledger) ComponentType() string {
	return "ledger"
}

var _ introspection.Introspectable = (*Ledger)(nil)
var _ introspection.Component = (*Ledger)(nil)
