package trigger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/trigger"
)

type recorder struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (r *recorder) OnSaved(ctx context.Context, ev core.SavedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ev.ID)
	return r.err
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestBus_SubscribeUnsubscribe(t *testing.T) {
	bus := trigger.NewBus()
	h := &recorder{}
	ctx := context.Background()

	bus.Subscribe(h)
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "a"}))
	assert.Equal(t, []string{"a"}, h.ids())

	bus.Unsubscribe(h)
	assert.Zero(t, bus.State().(trigger.BusState).Subscribers)
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "b"}))
	assert.Equal(t, []string{"a"}, h.ids())
}

func TestBus_PublishJoinsErrors(t *testing.T) {
	bus := trigger.NewBus()
	boom := errors.New("boom")
	failing := &recorder{err: boom}
	healthy := &recorder{}

	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), core.SavedEvent{ID: "a"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, healthy.ids())
}

func TestBus_SuppressIsScopedToHandlerAndDocument(t *testing.T) {
	bus := trigger.NewBus()
	self := &recorder{}
	other := &recorder{}
	ctx := context.Background()

	bus.Subscribe(self)
	bus.Subscribe(other)

	release := bus.Suppress(self, "doc")
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "doc"}))
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "elsewhere"}))
	release()
	release()
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "doc"}))

	assert.Equal(t, []string{"elsewhere", "doc"}, self.ids())
	assert.Equal(t, []string{"doc", "elsewhere", "doc"}, other.ids())
	assert.Equal(t, 2, bus.State().(trigger.BusState).Subscribers)
	assert.Zero(t, bus.State().(trigger.BusState).Suppressions)
}

func TestBus_SuppressNests(t *testing.T) {
	bus := trigger.NewBus()
	h := &recorder{}
	ctx := context.Background()
	bus.Subscribe(h)

	outer := bus.Suppress(h, "doc")
	inner := bus.Suppress(h, "doc")
	inner()
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "doc"}))
	assert.Empty(t, h.ids())

	outer()
	require.NoError(t, bus.Publish(ctx, core.SavedEvent{ID: "doc"}))
	assert.Equal(t, []string{"doc"}, h.ids())

	state := bus.State().(trigger.BusState)
	assert.Zero(t, state.Suppressions)
	assert.Equal(t, 1, state.Subscribers)
	assert.Equal(t, 2, state.Published)
}

// reentrant publishes again from inside its handler, like a store write would.
type reentrant struct {
	bus   *trigger.Bus
	calls int
}

func (r *reentrant) OnSaved(ctx context.Context, ev core.SavedEvent) error {
	r.calls++
	if r.calls > 5 {
		return errors.New("runaway recursion")
	}
	release := r.bus.Suppress(r, ev.ID)
	defer release()
	return r.bus.Publish(ctx, ev)
}

func TestBus_SuppressStopsRecursion(t *testing.T) {
	bus := trigger.NewBus()
	h := &reentrant{bus: bus}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), core.SavedEvent{ID: "doc"}))
	assert.Equal(t, 1, h.calls)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := trigger.NewBus()
	h := &recorder{}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), core.SavedEvent{ID: "x"})
		}()
	}
	wg.Wait()
	assert.Len(t, h.ids(), 20)
}
