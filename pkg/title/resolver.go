// Package title resolves the canonical label applied to a document's images.
package title

import (
	"context"
	"strings"

	"github.com/aretw0/alttag/pkg/core"
)

// DefaultKey is the metadata key holding the SEO title override.
const DefaultKey = "seo_title"

// Site carries the site-wide values available to placeholders.
type Site struct {
	Name        string
	Description string
	Separator   string
}

// Resolver produces the label for a document: the expanded SEO title when one is
// set, otherwise the display title.
type Resolver struct {
	store     core.DocumentStore
	key       string
	overrides bool
	site      Site
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithKey sets the metadata key holding the override.
func WithKey(key string) Option {
	return func(r *Resolver) {
		if key != "" {
			r.key = key
		}
	}
}

// WithOverrides enables or disables the metadata override. Enabled by default.
func WithOverrides(enabled bool) Option {
	return func(r *Resolver) {
		r.overrides = enabled
	}
}

// WithSite sets the site-wide placeholder values.
func WithSite(site Site) Option {
	return func(r *Resolver) {
		r.site = site
	}
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store core.DocumentStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:     store,
		key:       DefaultKey,
		overrides: true,
		site:      Site{Separator: "-"},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.site.Separator == "" {
		r.site.Separator = "-"
	}
	return r
}

// Resolve returns the label for id. It never fails: any lookup error falls back
// to the display title, and an unreadable display title yields "".
func (r *Resolver) Resolve(ctx context.Context, id string) string {
	display, err := r.store.DisplayTitle(ctx, id)
	if err != nil {
		display = ""
	}

	if !r.overrides {
		return display
	}

	raw, ok, err := r.store.Metadata(ctx, id, r.key)
	if err != nil || !ok || strings.TrimSpace(raw) == "" {
		return display
	}

	doc, err := r.store.Get(ctx, id)
	if err != nil {
		doc = core.Document{ID: id}
	}
	doc.Title = display

	if expanded := Expand(raw, doc, r.site); expanded != "" {
		return expanded
	}
	return display
}
