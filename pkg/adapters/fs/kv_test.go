package fs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/alttag/pkg/adapters/fs"
	"github.com/aretw0/alttag/pkg/ledger"
)

func TestKV_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := fs.NewKV(filepath.Join(t.TempDir(), "kv"))

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":1}`)))
	got, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, kv.Delete(ctx, "k"))
	require.NoError(t, kv.Delete(ctx, "k"))
	_, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_RejectsPathKeys(t *testing.T) {
	kv := fs.NewKV(t.TempDir())
	for _, key := range []string{"", "../x", "a/b", ".."} {
		assert.Error(t, kv.Set(context.Background(), key, nil), key)
	}
}

func TestKV_BacksDurableLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	l, err := ledger.Open(ctx, fs.NewKV(dir))
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, "home", "Home", 2, testTime))

	reopened, err := ledger.Open(ctx, fs.NewKV(dir))
	require.NoError(t, err)
	assert.Equal(t, l.Summary(), reopened.Summary())
	assert.FileExists(t, filepath.Join(dir, ledger.DefaultKey+".json"))
}
