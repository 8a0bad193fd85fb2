// Package pipeline runs a saved document through validation, title resolution,
// image rewriting and persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/alttag/pkg/core"
)

// Stage is a step of a pipeline run.
type Stage int

const (
	Idle Stage = iota
	Validating
	Resolving
	Rewriting
	Committing
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Resolving:
		return "resolving"
	case Rewriting:
		return "rewriting"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// Validator decides whether a saved event should be processed.
type Validator interface {
	Validate(ctx context.Context, ev core.SavedEvent) core.Verdict
}

// Resolver produces the label written into every image.
type Resolver interface {
	Resolve(ctx context.Context, id string) string
}

// Rewriter rewrites image markup in a body and reports how many elements changed.
type Rewriter interface {
	Rewrite(body, label string) (string, int)
}

// Recorder stores the outcome of a committed run.
type Recorder interface {
	Record(ctx context.Context, id, title string, count int, ts time.Time) error
}

// Suppressor mutes a handler for one document while its own write is in flight.
type Suppressor interface {
	Suppress(h core.Handler, id string) (release func())
}

// Observer is notified once per finished run.
type Observer interface {
	Observe(res Result, err error)
}

// Result describes a finished run.
type Result struct {
	RunID    string
	ID       string
	Verdict  core.Verdict
	Stage    Stage
	Label    string
	Count    int
	Duration time.Duration
}

// Pipeline handles saved events. It is safe for concurrent use.
type Pipeline struct {
	store      core.DocumentStore
	validator  Validator
	resolver   Resolver
	rewriter   Rewriter
	recorder   Recorder
	suppressor Suppressor
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	stats stats
}

type stats struct {
	runs     int
	skipped  int
	updated  int
	failed   int
	inFlight int
	last     Result
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Without it the pipeline does not log.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver registers an observer for finished runs.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithClock overrides the time source used for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithSuppressor sets the guard that keeps the pipeline from reacting to its own writes.
func WithSuppressor(s Suppressor) Option {
	return func(p *Pipeline) {
		p.suppressor = s
	}
}

// New creates a Pipeline.
func New(store core.DocumentStore, validator Validator, resolver Resolver, rewriter Rewriter, recorder Recorder, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		validator: validator,
		resolver:  resolver,
		rewriter:  rewriter,
		recorder:  recorder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnSaved implements core.Handler.
func (p *Pipeline) OnSaved(ctx context.Context, ev core.SavedEvent) error {
	_, err := p.Run(ctx, ev)
	return err
}

// Run processes one saved event.
// A skipped event is not an error; the verdict is reported in the Result.
func (p *Pipeline) Run(ctx context.Context, ev core.SavedEvent) (res Result, err error) {
	started := time.Now()
	res = Result{RunID: newRunID(), ID: ev.ID, Stage: Validating}

	p.begin()
	defer func() {
		res.Duration = time.Since(started)
		p.finish(res, err)
	}()

	res.Verdict = p.validator.Validate(ctx, ev)
	if res.Verdict.Skipped() {
		p.debug("skipped", "run", res.RunID, "id", ev.ID, "verdict", res.Verdict.String())
		return res, nil
	}

	res.Stage = Resolving
	res.Label = p.resolver.Resolve(ctx, ev.ID)

	res.Stage = Rewriting
	body, count := p.rewriter.Rewrite(ev.Document.Body, res.Label)
	res.Count = count
	if count == 0 {
		p.debug("nothing to rewrite", "run", res.RunID, "id", ev.ID)
		return res, nil
	}

	res.Stage = Committing
	if err := p.persist(ctx, ev.ID, body); err != nil {
		return res, err
	}

	title, err := p.store.DisplayTitle(ctx, ev.ID)
	if err != nil {
		return res, fmt.Errorf("read title of %s: %w", ev.ID, err)
	}
	if err := p.recorder.Record(ctx, ev.ID, title, count, p.now()); err != nil {
		return res, fmt.Errorf("record %s: %w", ev.ID, err)
	}

	if p.logger != nil {
		p.logger.Info("images updated", "run", res.RunID, "id", ev.ID, "count", count, "label", res.Label)
	}
	return res, nil
}

// persist writes the new body while the pipeline is muted for that document.
func (p *Pipeline) persist(ctx context.Context, id, body string) error {
	if p.suppressor != nil {
		release := p.suppressor.Suppress(p, id)
		defer release()
	}
	if err := p.store.UpdateBody(ctx, id, body); err != nil {
		return &core.PersistError{ID: id, Err: err}
	}
	return nil
}

func (p *Pipeline) begin() {
	p.mu.Lock()
	p.stats.inFlight++
	p.mu.Unlock()
}

func (p *Pipeline) finish(res Result, err error) {
	p.mu.Lock()
	p.stats.inFlight--
	p.stats.runs++
	switch {
	case err != nil:
		p.stats.failed++
	case res.Verdict.Skipped():
		p.stats.skipped++
	case res.Count > 0:
		p.stats.updated++
	}
	p.stats.last = res
	p.mu.Unlock()

	if err != nil && p.logger != nil {
		p.logger.Error("pipeline run failed", "run", res.RunID, "id", res.ID, "stage", res.Stage.String(), "error", err)
	}
	if p.observer != nil {
		p.observer.Observe(res, err)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

var _ core.Handler = (*Pipeline)(nil)
