package core_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/alttag/pkg/core"
)

func TestMetadataString(t *testing.T) {
	m := core.Metadata{
		"s":     "text",
		"b":     true,
		"i":     42,
		"i64":   int64(-7),
		"f":     2.5,
		"day":   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"stamp": time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		"list":  []any{"a"},
		"nil":   nil,
	}

	assert.Equal(t, "text", m.String("s"))
	assert.Equal(t, "true", m.String("b"))
	assert.Equal(t, "42", m.String("i"))
	assert.Equal(t, "-7", m.String("i64"))
	assert.Equal(t, "2.5", m.String("f"))
	assert.Equal(t, "2024-03-01", m.String("day"))
	assert.Equal(t, "2024-03-01T09:30:00Z", m.String("stamp"))
	assert.Equal(t, "", m.String("list"))
	assert.Equal(t, "", m.String("nil"))
	assert.Equal(t, "", m.String("missing"))

	var empty core.Metadata
	assert.Equal(t, "", empty.String("s"))
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "proceed", core.Proceed.String())
	assert.Equal(t, "skip_autosave", core.SkipAutosave.String())
	assert.Equal(t, "skip_revision", core.SkipRevision.String())
	assert.Equal(t, "skip_permission", core.SkipPermission.String())
	assert.Equal(t, "skip_kind", core.SkipKind.String())
	assert.Equal(t, "unknown", core.Verdict(99).String())

	assert.False(t, core.Proceed.Skipped())
	for _, v := range []core.Verdict{core.SkipAutosave, core.SkipRevision, core.SkipPermission, core.SkipKind} {
		assert.True(t, v.Skipped(), v.String())
	}
}

func TestPersistError(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("run: %w", &core.PersistError{ID: "blog/a", Err: cause})

	assert.ErrorIs(t, err, core.ErrPersist)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, core.ErrNotFound)
	assert.EqualError(t, err, "run: persist blog/a: disk full")

	var pe *core.PersistError
	if assert.ErrorAs(t, err, &pe) {
		assert.Equal(t, "blog/a", pe.ID)
	}
}
