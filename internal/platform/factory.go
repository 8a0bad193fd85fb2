package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/alttag/internal/config"
	"github.com/aretw0/alttag/internal/metrics"
	"github.com/aretw0/alttag/pkg/adapters/fs"
	"github.com/aretw0/alttag/pkg/adapters/memory"
	"github.com/aretw0/alttag/pkg/adapters/sqlite"
	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/ledger"
	"github.com/aretw0/alttag/pkg/pipeline"
	"github.com/aretw0/alttag/pkg/rewrite"
	"github.com/aretw0/alttag/pkg/title"
	"github.com/aretw0/alttag/pkg/trigger"
)

// App is a fully wired alttag instance over one vault.
type App struct {
	Vault    *fs.Vault
	Bus      *trigger.Bus
	Ledger   *ledger.Ledger
	Pipeline *pipeline.Pipeline
	Resolver *title.Resolver
	Metrics  *metrics.Metrics

	opts    *options
	closers []func() error
}

// New composes an App for the vault at path.
//
//	app, err := platform.New(ctx, "./vault", platform.WithLedgerBackend("sqlite"))
func New(ctx context.Context, path string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}

	app := &App{Bus: trigger.NewBus(), Metrics: o.metrics, opts: o}

	app.Vault = fs.NewVault(fs.Config{
		Path:             abs,
		SystemDir:        o.systemDir,
		AutoInit:         o.autoInit,
		MustExist:        o.mustExist,
		Versioning:       o.versioning,
		RevisionDir:      o.revisionDir,
		AutosavePatterns: o.autosave,
		Actor:            o.actor,
		Bus:              app.Bus,
		Logger:           o.logger,
	})
	if err := app.Vault.Initialize(ctx); err != nil {
		return nil, err
	}

	kv, err := app.openKV(ctx, abs)
	if err != nil {
		return nil, err
	}

	app.Ledger, err = ledger.Open(ctx, kv)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	editors, err := fs.NewEditors(o.editors)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	gate := pipeline.NewGate(
		pipeline.WithRevisions(app.Vault),
		pipeline.WithPermissions(editors),
		pipeline.WithKinds(o.kinds...),
	)

	app.Resolver = title.NewResolver(app.Vault,
		title.WithKey(o.titleKey),
		title.WithOverrides(o.useSEOTitle),
		title.WithSite(o.site),
	)

	pipeOpts := []pipeline.Option{
		pipeline.WithLogger(o.logger),
		pipeline.WithSuppressor(app.Bus),
	}
	if o.metrics != nil {
		pipeOpts = append(pipeOpts, pipeline.WithObserver(o.metrics))
		sum := app.Ledger.Summary()
		o.metrics.SetLedger(len(sum.Records), sum.Total)
	}

	app.Pipeline = pipeline.New(app.Vault, gate, app.Resolver, rewrite.New(), &recorder{ledger: app.Ledger, metrics: o.metrics}, pipeOpts...)
	app.Bus.Subscribe(app.Pipeline)

	return app, nil
}

func (a *App) openKV(ctx context.Context, vaultPath string) (core.KVStore, error) {
	if a.opts.kv != nil {
		return a.opts.kv, nil
	}

	c := config.Config{
		VaultPath:     vaultPath,
		SystemDir:     a.opts.systemDir,
		LedgerBackend: a.opts.backend,
		LedgerPath:    a.opts.ledgerPath,
	}

	switch a.opts.backend {
	case config.BackendFile:
		return fs.NewKV(c.ResolveLedgerPath()), nil
	case config.BackendSQLite:
		kv, err := sqlite.Open(ctx, c.ResolveLedgerPath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		return kv, nil
	case config.BackendMemory:
		return memory.NewKV(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend: %s", a.opts.backend)
	}
}

// Process runs the pipeline for one document as if it had just been saved.
func (a *App) Process(ctx context.Context, id string) (pipeline.Result, error) {
	doc, err := a.Vault.Get(ctx, id)
	if err != nil {
		return pipeline.Result{}, err
	}
	return a.Pipeline.Run(ctx, a.Vault.Event(doc, core.SourceCLI, true))
}

// Watch starts the vault watcher. Saves are processed until ctx is cancelled.
func (a *App) Watch(ctx context.Context) (*fs.Watcher, error) {
	onError := a.opts.watchOnError
	if onError == nil {
		onError = func(error) {}
	}
	w := fs.NewWatcher(a.Vault, a.Bus, fs.WithErrorHandler(onError))
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Components lists the introspectable parts of the App.
func (a *App) Components() []introspection.Introspectable {
	return []introspection.Introspectable{a.Vault, a.Bus, a.Ledger, a.Pipeline}
}

// Close releases the ledger medium.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// recorder keeps the ledger gauges in step with every record.
type recorder struct {
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
}

func (r *recorder) Record(ctx context.Context, id, title string, count int, ts time.Time) error {
	if err := r.ledger.Record(ctx, id, title, count, ts); err != nil {
		return err
	}
	if r.metrics != nil {
		sum := r.ledger.Summary()
		r.metrics.SetLedger(len(sum.Records), sum.Total)
	}
	return nil
}
