package pipeline

import (
	"context"

	"github.com/aretw0/alttag/pkg/core"
)

// Gate is the Validator backed by host facts.
// Checks run in order: autosave, revision, permission, kind.
type Gate struct {
	revisions   core.RevisionChecker
	permissions core.PermissionOracle
	kinds       map[core.Kind]struct{}
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithRevisions sets the revision checker. Without one no document is a revision.
func WithRevisions(rc core.RevisionChecker) GateOption {
	return func(g *Gate) {
		g.revisions = rc
	}
}

// WithPermissions sets the permission oracle. Without one every actor may edit.
func WithPermissions(po core.PermissionOracle) GateOption {
	return func(g *Gate) {
		g.permissions = po
	}
}

// WithKinds replaces the set of document kinds that are processed.
func WithKinds(kinds ...core.Kind) GateOption {
	return func(g *Gate) {
		g.kinds = kindSet(kinds)
	}
}

// NewGate creates a Gate allowing core.DefaultKinds.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{kinds: kindSet(core.DefaultKinds)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate implements Validator.
func (g *Gate) Validate(ctx context.Context, ev core.SavedEvent) core.Verdict {
	if ev.Autosave {
		return core.SkipAutosave
	}
	if g.revisions != nil && g.revisions.IsRevision(ctx, ev.ID) {
		return core.SkipRevision
	}
	if g.permissions != nil && !g.permissions.CanEdit(ctx, ev.Actor, ev.ID) {
		return core.SkipPermission
	}
	if _, ok := g.kinds[ev.Document.Kind]; !ok {
		return core.SkipKind
	}
	return core.Proceed
}

func kindSet(kinds []core.Kind) map[core.Kind]struct{} {
	set := make(map[core.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

var _ Validator = (*Gate)(nil)
