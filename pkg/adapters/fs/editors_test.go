package fs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/alttag/pkg/adapters/fs"
)

var testTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestEditors_CanEdit(t *testing.T) {
	ctx := context.Background()
	editors, err := fs.NewEditors(map[string][]string{
		"alice": {"**"},
		"bob":   {"blog/*"},
		"*":     {"public/**"},
	})
	require.NoError(t, err)

	assert.True(t, editors.CanEdit(ctx, "alice", "anything/deep/here"))
	assert.True(t, editors.CanEdit(ctx, "bob", "blog/post"))
	assert.False(t, editors.CanEdit(ctx, "bob", "blog/nested/post"))
	assert.True(t, editors.CanEdit(ctx, "bob", "public/x"))
	assert.False(t, editors.CanEdit(ctx, "mallory", "blog/post"))
	assert.True(t, editors.CanEdit(ctx, "", "public/a/b"))
}

func TestEditors_NoRulesAllowsEveryone(t *testing.T) {
	editors, err := fs.NewEditors(nil)
	require.NoError(t, err)
	assert.True(t, editors.CanEdit(context.Background(), "anyone", "x"))
}

func TestEditors_InvalidPattern(t *testing.T) {
	_, err := fs.NewEditors(map[string][]string{"alice": {"[unclosed"}})
	var pe *fs.PatternError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "alice", pe.Actor)
}
