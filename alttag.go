package alttag

import (
	"context"
	"log/slog"

	"github.com/aretw0/alttag/internal/config"
	"github.com/aretw0/alttag/internal/metrics"
	"github.com/aretw0/alttag/internal/platform"
	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/title"
)

// Version is the release of the library and CLI.
const Version = "0.1.0"

// --- Types ---

// App is a wired alttag instance over one vault.
type App = platform.App

// Config is the full set of alttag settings.
type Config = config.Config

// Site holds the values behind the site placeholders.
type Site = title.Site

// --- Configuration ---

// Option defines a functional option for configuring alttag.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSystemDir sets the hidden directory name inside the vault (e.g. ".alttag").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithLedgerBackend selects "file", "sqlite" or "memory".
func WithLedgerBackend(name string) Option {
	return platform.WithLedgerBackend(name)
}

// WithLedgerPath overrides the ledger location.
func WithLedgerPath(path string) Option {
	return platform.WithLedgerPath(path)
}

// WithKVStore injects the ledger medium.
func WithKVStore(kv core.KVStore) Option {
	return platform.WithKVStore(kv)
}

// WithActor sets the actor recorded on saved events.
func WithActor(actor string) Option {
	return platform.WithActor(actor)
}

// WithEditors restricts which actor may have which documents rewritten.
func WithEditors(rules map[string][]string) Option {
	return platform.WithEditors(rules)
}

// WithKinds sets the document kinds that are processed.
func WithKinds(kinds ...core.Kind) Option {
	return platform.WithKinds(kinds...)
}

// WithTitleKey sets the metadata key holding the SEO title template.
func WithTitleKey(key string) Option {
	return platform.WithTitleKey(key)
}

// WithSEOTitle enables or disables SEO title overrides.
func WithSEOTitle(enabled bool) Option {
	return platform.WithSEOTitle(enabled)
}

// WithSite sets the site name, description and separator.
func WithSite(site Site) Option {
	return platform.WithSite(site)
}

// WithVersioning commits every rewrite to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit creates the vault if missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist fails when the vault directory does not exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithAutosavePatterns marks matching document IDs as autosaves.
func WithAutosavePatterns(patterns ...string) Option {
	return platform.WithAutosavePatterns(patterns...)
}

// WithRevisionDir sets the directory holding historical revisions.
func WithRevisionDir(dir string) Option {
	return platform.WithRevisionDir(dir)
}

// WithMetrics records runs on m.
func WithMetrics(m *metrics.Metrics) Option {
	return platform.WithMetrics(m)
}

// FromConfig applies loaded settings.
func FromConfig(c *Config) Option {
	return platform.FromConfig(c)
}

// --- Factory ---

// New wires an App for the vault at path.
func New(ctx context.Context, path string, opts ...Option) (*App, error) {
	return platform.New(ctx, path, opts...)
}

// LoadConfig loads settings from defaults, an optional file and ALTTAG_* env vars.
func LoadConfig(cfgFile string) (*Config, error) {
	return config.Load(cfgFile)
}
