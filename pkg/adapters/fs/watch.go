package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/alttag/pkg/core"
)

// DefaultDebounce is how long the watcher waits for a path to go quiet before publishing.
const DefaultDebounce = 50 * time.Millisecond

// Watcher turns filesystem saves inside the vault into SavedEvents on a bus.
type Watcher struct {
	vault   *Vault
	bus     core.TriggerBus
	logger  *slog.Logger
	delay   time.Duration
	onError func(error)

	debouncer *debouncer
	done      chan struct{}

	mu        sync.Mutex
	published int
	ignored   int
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period per path.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithErrorHandler receives errors that happen outside any caller, such as a failed publish.
func WithErrorHandler(fn func(error)) WatchOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher creates a watcher for v that publishes to bus.
func NewWatcher(v *Vault, bus core.TriggerBus, opts ...WatchOption) *Watcher {
	w := &Watcher{
		vault:  v,
		bus:    bus,
		logger: v.config.Logger,
		delay:  DefaultDebounce,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the watch is registered;
// events are handled in the background until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.recursiveAdd(fsw, w.vault.Path); err != nil {
		_ = fsw.Close()
		return err
	}

	w.debouncer = newDebouncer(w.delay)
	w.vault.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		return w.run(ctx, fsw)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.report(fmt.Errorf("watcher panic: %w", err))
	}))
	return nil
}

// Done is closed when the watcher has stopped and every pending event has been handled.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) error {
	defer close(w.done)
	defer w.vault.setWatcherActive(false)
	defer fsw.Close()

	err := w.loop(ctx, fsw)
	w.debouncer.stopAndWait()
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.report(fmt.Errorf("fsnotify: %w", err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	if w.logger != nil {
		w.logger.Debug("event received", "name", event.Name, "op", event.Op.String())
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.vault.skipDir(info.Name()) {
				if err := w.recursiveAdd(fsw, event.Name); err != nil {
					w.report(err)
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	id, ok := w.vault.idFor(event.Name)
	if !ok {
		return
	}
	path := event.Name
	w.debouncer.add(id, func() {
		w.dispatch(ctx, id, path)
	})
}

// dispatch reads the settled file and publishes it unless the vault wrote these exact bytes.
func (w *Watcher) dispatch(ctx context.Context, id, path string) {
	if ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.report(fmt.Errorf("read %s: %w", id, err))
		}
		return
	}

	if w.vault.wroteLast(id, data) {
		w.mu.Lock()
		w.ignored++
		w.mu.Unlock()
		if w.logger != nil {
			w.logger.Debug("ignoring own write", "id", id)
		}
		return
	}

	doc, err := parseDocument(id, data)
	if err != nil {
		w.report(fmt.Errorf("failed to parse document %s: %w", id, err))
		return
	}

	w.mu.Lock()
	w.published++
	w.mu.Unlock()

	if err := w.bus.Publish(ctx, w.vault.Event(doc, core.SourceWatcher, true)); err != nil {
		w.report(fmt.Errorf("publish %s: %w", id, err))
	}
}

func (w *Watcher) recursiveAdd(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.vault.Path && w.vault.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) report(err error) {
	if w.logger != nil {
		w.logger.Error("watcher error", "error", err)
	}
	if w.onError != nil {
		w.onError(err)
	}
}

// debouncer coalesces bursts of events per key into a single call.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

// add schedules fn for key, replacing any call still pending for it.
func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		fn()
	})
	d.timers[key] = t
}

// stopAndWait drops pending calls and waits for running ones.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
