package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates and overwrites", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "note.md")

		require.NoError(t, writeFileAtomic(filename, []byte("first"), 0644))
		require.NoError(t, writeFileAtomic(filename, []byte("second"), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "a.md"), []byte("x"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover %s", e.Name())
		}
	})

	t.Run("keeps the mode of an existing file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "private.md")
		require.NoError(t, os.WriteFile(filename, []byte("old"), 0600))
		require.NoError(t, os.Chmod(filename, 0600))

		require.NoError(t, writeFileAtomic(filename, []byte("new"), 0644))

		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("applies perm to new files", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "fresh.md")
		require.NoError(t, writeFileAtomic(filename, []byte("x"), 0640))

		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	})

	t.Run("refuses to replace a directory", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "dir.md")
		require.NoError(t, os.Mkdir(target, 0755))
		assert.Error(t, writeFileAtomic(target, []byte("x"), 0644))
	})

	t.Run("fails if directory missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "a.md")
		assert.Error(t, writeFileAtomic(filename, []byte("x"), 0644))
	})
}
