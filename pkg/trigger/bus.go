// Package trigger implements the in-process bus that delivers saved events to handlers.
package trigger

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/alttag/pkg/core"
)

// suppression identifies one handler muted for one document.
type suppression struct {
	handler core.Handler
	id      string
}

// Bus delivers SavedEvents synchronously to its subscribers, in subscription order.
// It is safe for concurrent use.
type Bus struct {
	mu         sync.RWMutex
	handlers   []core.Handler
	suppressed map[suppression]int
	published  int
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{suppressed: make(map[suppression]int)}
}

// Subscribe registers h. Subscribing the same handler twice is a no-op.
func (b *Bus) Subscribe(h core.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.handlers {
		if existing == h {
			return
		}
	}
	b.handlers = append(b.handlers, h)
}

// Unsubscribe removes h if present.
func (b *Bus) Unsubscribe(h core.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.handlers {
		if existing == h {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Publish calls every subscribed handler that is not suppressed for ev.ID.
// All handlers run even if one fails; the errors are joined.
func (b *Bus) Publish(ctx context.Context, ev core.SavedEvent) error {
	b.mu.Lock()
	b.published++
	targets := make([]core.Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		if b.suppressed[suppression{handler: h, id: ev.ID}] > 0 {
			continue
		}
		targets = append(targets, h)
	}
	b.mu.Unlock()

	var errs []error
	for _, h := range targets {
		if err := h.OnSaved(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Suppress mutes h for events about id until the returned release is called.
// Suppressions nest; release is safe to call more than once.
func (b *Bus) Suppress(h core.Handler, id string) (release func()) {
	key := suppression{handler: h, id: id}

	b.mu.Lock()
	b.suppressed[key]++
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.suppressed[key] <= 1 {
				delete(b.suppressed, key)
				return
			}
			b.suppressed[key]--
		})
	}
}

var _ core.TriggerBus = (*Bus)(nil)
