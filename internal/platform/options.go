package platform

import (
	"log/slog"

	"github.com/aretw0/alttag/internal/config"
	"github.com/aretw0/alttag/internal/metrics"
	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/title"
)

// options holds the internal configuration for an App.
type options struct {
	logger       *slog.Logger
	systemDir    string
	backend      string
	ledgerPath   string
	kv           core.KVStore
	actor        string
	editors      map[string][]string
	kinds        []core.Kind
	titleKey     string
	useSEOTitle  bool
	site         title.Site
	versioning   bool
	autoInit     bool
	mustExist    bool
	autosave     []string
	revisionDir  string
	metrics      *metrics.Metrics
	watchOnError func(error)
}

// Option defines a functional option for configuring an App.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		systemDir:   ".alttag",
		backend:     config.BackendFile,
		kinds:       append([]core.Kind(nil), core.DefaultKinds...),
		titleKey:    title.DefaultKey,
		useSEOTitle: true,
		site:        title.Site{Separator: "-"},
		autoInit:    true,
		revisionDir: "_revisions",
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSystemDir sets the hidden directory name inside the vault. Defaults to ".alttag".
func WithSystemDir(name string) Option {
	return func(o *options) {
		if name != "" {
			o.systemDir = name
		}
	}
}

// WithLedgerBackend selects where the ledger is kept: "file", "sqlite" or "memory".
func WithLedgerBackend(name string) Option {
	return func(o *options) {
		if name != "" {
			o.backend = name
		}
	}
}

// WithLedgerPath overrides the ledger location for the file and sqlite backends.
func WithLedgerPath(path string) Option {
	return func(o *options) {
		o.ledgerPath = path
	}
}

// WithKVStore injects the ledger medium, skipping backend selection.
func WithKVStore(kv core.KVStore) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithActor sets the actor recorded on saved events.
func WithActor(actor string) Option {
	return func(o *options) {
		o.actor = actor
	}
}

// WithEditors restricts which actor may have which documents rewritten.
func WithEditors(rules map[string][]string) Option {
	return func(o *options) {
		o.editors = rules
	}
}

// WithKinds sets the document kinds the pipeline processes.
func WithKinds(kinds ...core.Kind) Option {
	return func(o *options) {
		if len(kinds) > 0 {
			o.kinds = kinds
		}
	}
}

// WithTitleKey sets the metadata key holding the SEO title template.
func WithTitleKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.titleKey = key
		}
	}
}

// WithSEOTitle enables or disables SEO title overrides.
func WithSEOTitle(enabled bool) Option {
	return func(o *options) {
		o.useSEOTitle = enabled
	}
}

// WithSite sets the values behind %%sitename%%, %%sitedesc%% and %%sep%%.
func WithSite(site title.Site) Option {
	return func(o *options) {
		if site.Separator == "" {
			site.Separator = o.site.Separator
		}
		o.site = site
	}
}

// WithVersioning commits every rewrite to git.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithAutoInit creates the vault directory (and git repository when versioning) if missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist fails when the vault directory does not exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithAutosavePatterns marks document IDs matching any glob as autosaves.
func WithAutosavePatterns(patterns ...string) Option {
	return func(o *options) {
		o.autosave = patterns
	}
}

// WithRevisionDir sets the directory holding historical revisions.
func WithRevisionDir(dir string) Option {
	return func(o *options) {
		o.revisionDir = dir
	}
}

// WithMetrics records pipeline runs and ledger size on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithWatcherErrorHandler receives errors from the background watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watchOnError = fn
	}
}

// FromConfig maps loaded settings onto options.
func FromConfig(c *config.Config) Option {
	return func(o *options) {
		WithSystemDir(c.SystemDir)(o)
		WithLedgerBackend(c.LedgerBackend)(o)
		WithLedgerPath(c.LedgerPath)(o)
		WithActor(c.Actor)(o)
		WithEditors(c.Editors)(o)
		kinds := make([]core.Kind, 0, len(c.AllowedKinds))
		for _, k := range c.AllowedKinds {
			kinds = append(kinds, core.Kind(k))
		}
		WithKinds(kinds...)(o)
		WithTitleKey(c.SEOTitleKey)(o)
		WithSEOTitle(c.UseSEOTitle)(o)
		WithSite(title.Site{Name: c.SiteName, Description: c.SiteDescription, Separator: c.Separator})(o)
		WithVersioning(c.Versioning)(o)
		WithAutosavePatterns(c.AutosavePatterns...)(o)
		WithRevisionDir(c.RevisionDir)(o)
	}
}
