package metrics_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/metrics"
	"go.trai.ch/press/internal/core/domain"
)

func family(t *testing.T, r *metrics.Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func counterValue(t *testing.T, r *metrics.Recorder, name string, labels map[string]string) float64 {
	t.Helper()
	for _, m := range family(t, r, name).GetMetric() {
		if matches(m, labels) {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestRecorder_JobFinished(t *testing.T) {
	r := metrics.NewRecorder()

	r.JobFinished(domain.KindDocument, domain.JobDone, 20*time.Millisecond)
	r.JobFinished(domain.KindDocument, domain.JobDone, 30*time.Millisecond)
	r.JobFinished(domain.KindAsset, domain.JobCached, 0)

	assert.InDelta(t, 2, counterValue(t, r, "press_jobs_total",
		map[string]string{"kind": string(domain.KindDocument), "state": string(domain.JobDone)}), 0)
	assert.InDelta(t, 1, counterValue(t, r, "press_jobs_total",
		map[string]string{"kind": string(domain.KindAsset), "state": string(domain.JobCached)}), 0)

	// Cached jobs never ran, so they observe no duration.
	hist := family(t, r, "press_job_duration_seconds").GetMetric()
	require.Len(t, hist, 1)
	assert.Equal(t, uint64(2), hist[0].GetHistogram().GetSampleCount())
}

func TestRecorder_CacheAndSandbox(t *testing.T) {
	r := metrics.NewRecorder()

	r.CacheEvent("hit")
	r.CacheEvent("hit")
	r.CacheEvent("corruption")
	r.SandboxOutcome("wordcount", "ok")
	r.SandboxOutcome("wordcount", "CapabilityViolation")

	assert.InDelta(t, 2, counterValue(t, r, "press_cache_events_total", map[string]string{"event": "hit"}), 0)
	assert.InDelta(t, 1, counterValue(t, r, "press_cache_events_total", map[string]string{"event": "corruption"}), 0)
	assert.InDelta(t, 1, counterValue(t, r, "press_sandbox_invocations_total",
		map[string]string{"plugin": "wordcount", "outcome": "CapabilityViolation"}), 0)
}

func TestRecorder_BuildFinished(t *testing.T) {
	r := metrics.NewRecorder()

	report := domain.NewBuildReport("b1", time.Now())
	report.Record(domain.NewNodeID("a.md"), domain.JobDone)
	report.Record(domain.NewNodeID("b.md"), domain.JobFailed)
	report.Record(domain.NewNodeID("c.md"), domain.JobSkipped)
	report.Duration = time.Second
	r.BuildFinished(report)

	ok := domain.NewBuildReport("b2", time.Now())
	ok.Record(domain.NewNodeID("a.md"), domain.JobCached)
	r.BuildFinished(ok)

	assert.InDelta(t, 1, counterValue(t, r, "press_builds_total", map[string]string{"outcome": "failed"}), 0)
	assert.InDelta(t, 1, counterValue(t, r, "press_builds_total", map[string]string{"outcome": "success"}), 0)

	for _, m := range family(t, r, "press_last_build_nodes").GetMetric() {
		if matches(m, map[string]string{"state": string(domain.JobCached)}) {
			assert.InDelta(t, 1, m.GetGauge().GetValue(), 0)
		}
		if matches(m, map[string]string{"state": string(domain.JobFailed)}) {
			assert.InDelta(t, 0, m.GetGauge().GetValue(), 0)
		}
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.NewRecorder()
	r.CacheEvent("miss")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `press_cache_events_total{event="miss"} 1`)
}

func TestRecorder_ServeStopsWithContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	r := metrics.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), "press_")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestRecorder_ServeBadAddress(t *testing.T) {
	r := metrics.NewRecorder()
	err := r.Serve(context.Background(), "256.0.0.1:bogus")
	assert.Error(t, err)
}
