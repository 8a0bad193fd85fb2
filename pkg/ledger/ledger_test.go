package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/alttag/pkg/adapters/memory"
	"github.com/aretw0/alttag/pkg/ledger"
)

func openLedger(t *testing.T) (*ledger.Ledger, *memory.KV) {
	t.Helper()
	kv := memory.NewKV()
	l, err := ledger.Open(context.Background(), kv)
	require.NoError(t, err)
	return l, kv
}

func TestLedger_EmptyOnFirstOpen(t *testing.T) {
	l, _ := openLedger(t)
	s := l.Summary()
	assert.Empty(t, s.Records)
	assert.Zero(t, s.Total)
}

func TestLedger_RecordTwiceKeepsOneEntry(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, l.Record(ctx, "a", "First", 3, t1))
	require.NoError(t, l.Record(ctx, "a", "Second", 1, t2))

	s := l.Summary()
	require.Len(t, s.Records, 1)
	assert.Equal(t, ledger.Record{ID: "a", Title: "Second", Count: 1, UpdatedAt: t2}, s.Records[0])
	assert.Equal(t, 1, s.Total)
}

func TestLedger_InsertionOrderSurvivesUpsert(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, l.Record(ctx, "a", "A", 1, now))
	require.NoError(t, l.Record(ctx, "b", "B", 2, now))
	require.NoError(t, l.Record(ctx, "c", "C", 3, now))
	require.NoError(t, l.Record(ctx, "a", "A2", 5, now))

	s := l.Summary()
	ids := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, 10, s.Total)
}

func TestLedger_ClearEmptiesAndIsIdempotent(t *testing.T) {
	l, kv := openLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "a", "A", 4, time.Now()))
	require.NoError(t, l.Clear(ctx))
	require.NoError(t, l.Clear(ctx))

	s := l.Summary()
	assert.Empty(t, s.Records)
	assert.Zero(t, s.Total)

	_, ok, err := kv.Get(ctx, ledger.DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_PersistsAcrossReopen(t *testing.T) {
	l, kv := openLedger(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	require.NoError(t, l.Record(ctx, "x", "Doc X", 2, ts))
	require.NoError(t, l.Record(ctx, "y", "Doc Y", 7, ts))

	reopened, err := ledger.Open(ctx, kv)
	require.NoError(t, err)

	assert.Equal(t, l.Summary(), reopened.Summary())
	rec, ok := reopened.Get("y")
	require.True(t, ok)
	assert.Equal(t, 7, rec.Count)
	assert.True(t, rec.UpdatedAt.Equal(ts))
}

func TestLedger_CustomKey(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()

	l, err := ledger.Open(ctx, kv, ledger.WithKey("other"))
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, "a", "A", 1, time.Now()))

	_, ok, _ := kv.Get(ctx, "other")
	assert.True(t, ok)
	_, ok, _ = kv.Get(ctx, ledger.DefaultKey)
	assert.False(t, ok)
}

func TestLedger_CorruptDataFailsOpen(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, ledger.DefaultKey, []byte("{not json")))

	_, err := ledger.Open(ctx, kv)
	assert.Error(t, err)
}

func TestLedger_DuplicateStoredIDsCollapse(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()
	raw := `[{"id":"a","title":"old","count":1},{"id":"b","title":"B","count":2},{"id":"a","title":"new","count":3}]`
	require.NoError(t, kv.Set(ctx, ledger.DefaultKey, []byte(raw)))

	l, err := ledger.Open(ctx, kv)
	require.NoError(t, err)

	s := l.Summary()
	require.Len(t, s.Records, 2)
	assert.Equal(t, "a", s.Records[0].ID)
	assert.Equal(t, "new", s.Records[0].Title)
	assert.Equal(t, 5, s.Total)
}

// failingKV rejects writes after the ledger has been opened.
type failingKV struct {
	*memory.KV
	fail bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.KV.Set(ctx, key, value)
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.KV.Delete(ctx, key)
}

func TestLedger_FailedWriteLeavesStateIntact(t *testing.T) {
	kv := &failingKV{KV: memory.NewKV()}
	ctx := context.Background()

	l, err := ledger.Open(ctx, kv)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, "a", "A", 2, time.Now()))

	kv.fail = true
	assert.Error(t, l.Record(ctx, "a", "A", 9, time.Now()))
	assert.Error(t, l.Record(ctx, "b", "B", 1, time.Now()))
	assert.Error(t, l.Clear(ctx))

	s := l.Summary()
	require.Len(t, s.Records, 1)
	assert.Equal(t, 2, s.Total)
}

func TestLedger_RejectsEmptyID(t *testing.T) {
	l, _ := openLedger(t)
	assert.Error(t, l.Record(context.Background(), "", "T", 1, time.Now()))
}

func TestLedger_State(t *testing.T) {
	l, _ := openLedger(t)
	require.NoError(t, l.Record(context.Background(), "a", "A", 3, time.Now()))

	state, ok := l.State().(ledger.LedgerState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Records)
	assert.Equal(t, 3, state.Total)
	assert.Equal(t, 1, state.Writes)
	assert.Equal(t, "ledger", l.ComponentType())
}
