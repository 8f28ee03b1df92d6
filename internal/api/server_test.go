package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/workloadhq/insights/internal/insights/metrics"
)

func TestInstrument_CountsByRoutePattern(t *testing.T) {
	f := newFixture()

	// Counters are process-global, so assert deltas.
	listed := metrics.HTTPRequests.WithLabelValues("GET /api/users", "200")
	before := testutil.ToFloat64(listed)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := testutil.ToFloat64(listed) - before; got != 1 {
		t.Errorf("GET /api/users counted %v times, want 1", got)
	}

	unmatched := metrics.HTTPRequests.WithLabelValues("unmatched", "404")
	before = testutil.ToFloat64(unmatched)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := testutil.ToFloat64(unmatched) - before; got != 1 {
		t.Errorf("unmatched route counted %v times, want 1", got)
	}
}
