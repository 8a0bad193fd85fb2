package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/alttag/internal/metrics"
	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/pipeline"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Observe(t *testing.T) {
	m := metrics.New()

	m.Observe(pipeline.Result{Verdict: core.Proceed, Stage: pipeline.Committing, Count: 3, Duration: time.Millisecond}, nil)
	m.Observe(pipeline.Result{Verdict: core.SkipRevision, Stage: pipeline.Validating}, nil)
	m.Observe(pipeline.Result{Verdict: core.Proceed, Stage: pipeline.Committing, Count: 1},
		&core.PersistError{ID: "a", Err: errors.New("disk")})
	m.SetLedger(2, 5)

	out := scrape(t, m)
	assert.Contains(t, out, `alttag_pipeline_runs_total{outcome="ok",verdict="proceed"} 1`)
	assert.Contains(t, out, `alttag_pipeline_runs_total{outcome="skipped",verdict="skip_revision"} 1`)
	assert.Contains(t, out, `alttag_pipeline_runs_total{outcome="error",verdict="proceed"} 1`)
	assert.Contains(t, out, "alttag_images_rewritten_total 3")
	assert.Contains(t, out, "alttag_persist_failures_total 1")
	assert.Contains(t, out, "alttag_ledger_records 2")
	assert.Contains(t, out, "alttag_ledger_images_total 5")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := metrics.New()
	b := metrics.New()
	a.Observe(pipeline.Result{Verdict: core.Proceed, Count: 1}, nil)

	assert.Contains(t, scrape(t, a), "alttag_images_rewritten_total 1")
	assert.Contains(t, scrape(t, b), "alttag_images_rewritten_total 0")
}
