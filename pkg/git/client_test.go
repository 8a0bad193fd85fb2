package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	unlock, err := client.Lock(context.Background())
	require.NoError(t, err)

	lockPath := filepath.Join(tmpDir, DefaultLockName)
	_, err = os.Stat(lockPath)
	require.NoError(t, err, "lock file not created")

	unlock()

	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "lock file not removed after unlock")
}

func TestClient_LockHonoursContext(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "custom.lock", nil)

	unlock, err := client.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = client.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_InitAndCommit(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	require.NoError(t, client.Init(ctx))
	assert.True(t, client.IsRepo())

	_, _ = client.Run(ctx, "config", "user.email", "test@example.com")
	_, _ = client.Run(ctx, "config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.md"), []byte("hi"), 0644))
	require.NoError(t, client.Add(ctx, "a.md"))
	require.NoError(t, client.Commit(ctx, ImageCommitMessage("a")))

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status)

	// Nothing staged.
	require.NoError(t, client.Commit(ctx, "noop"))

	log, err := client.Run(ctx, "log", "-1", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "fix(images): sync alt text of a", log)
}

func TestFormatCommitMessage(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		msg := FormatCommitMessage(CommitTypeFix, "images", "sync", "  two images  ")
		assert.Equal(t, "fix(images): sync\n\ntwo images\n\n"+Footer, msg)
	})
	t.Run("defaults to chore", func(t *testing.T) {
		msg := FormatCommitMessage("", "", "tidy", "")
		assert.Equal(t, "chore: tidy\n\n"+Footer, msg)
	})
}
