package fs

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/alttag/pkg/core"
)

// Wildcard is the actor whose patterns apply to everyone.
const Wildcard = "*"

// Editors implements core.PermissionOracle from actor -> doublestar patterns over document IDs.
// With no rules at all every actor may edit every document.
type Editors struct {
	rules map[string][]string
}

// NewEditors creates an oracle from rules. Patterns are validated eagerly.
func NewEditors(rules map[string][]string) (*Editors, error) {
	copied := make(map[string][]string, len(rules))
	for actor, patterns := range rules {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, &PatternError{Actor: actor, Pattern: p}
			}
		}
		copied[actor] = append([]string(nil), patterns...)
	}
	return &Editors{rules: copied}, nil
}

// CanEdit implements core.PermissionOracle.
func (e *Editors) CanEdit(ctx context.Context, actor, id string) bool {
	if len(e.rules) == 0 {
		return true
	}
	for _, key := range []string{actor, Wildcard} {
		for _, p := range e.rules[key] {
			if ok, _ := doublestar.Match(p, id); ok {
				return true
			}
		}
	}
	return false
}

// PatternError reports an invalid editor pattern.
type PatternError struct {
	Actor   string
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid pattern " + e.Pattern + " for editor " + e.Actor
}

var _ core.PermissionOracle = (*Editors)(nil)
