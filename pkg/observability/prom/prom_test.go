package prom

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/observability"
)

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

func TestFetchOutcomes(t *testing.T) {
	ctx := context.Background()
	m := New()

	m.OnFetchComplete(ctx, "12345678", 10, time.Millisecond, nil)
	m.OnFetchComplete(ctx, "12345678", 0, time.Millisecond,
		errors.New(errors.ErrCodeUpstreamUnavailable, "down"))

	if got := testutil.ToFloat64(m.fetches.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok fetches = %v", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("UPSTREAM_UNAVAILABLE")); got != 1 {
		t.Errorf("failed fetches = %v", got)
	}
}

func TestCacheAndRenderCounters(t *testing.T) {
	ctx := context.Background()
	m := New()

	m.OnCacheHit(ctx, "artifact")
	m.OnCacheHit(ctx, "artifact")
	m.OnCacheMiss(ctx, "lookup")
	m.OnCacheSet(ctx, "lookup", 512)
	m.OnRenderComplete(ctx, "tree", "png", 4096, time.Millisecond, nil)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"artifact hits", testutil.ToFloat64(m.cacheAccess.WithLabelValues("artifact", "hit")), 2},
		{"lookup misses", testutil.ToFloat64(m.cacheAccess.WithLabelValues("lookup", "miss")), 1},
		{"lookup bytes", testutil.ToFloat64(m.cacheWrites.WithLabelValues("lookup")), 512},
		{"tree renders", testutil.ToFloat64(m.renders.WithLabelValues("tree", "png", "ok")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("/v1/render", "POST", 200, 10*time.Millisecond)
	m.OnError(context.Background(), "GET", "registry.example", "/dni", io.EOF)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`kinreport_http_requests_total{method="POST",route="/v1/render",status="200"} 1`,
		`kinreport_upstream_requests_total{host="registry.example",status="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
