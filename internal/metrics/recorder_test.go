package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_AllMethodsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.ObserveStageDuration("walk", time.Second)
	r.IncPageResult(ResultSuccess)
	r.IncAssetResult(ResultFailure)
	r.IncBuildOutcome("success")
}

func TestPrometheusRecorder_CountersIncrement(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncPageResult(ResultSuccess)
	r.IncPageResult(ResultSuccess)
	r.IncPageResult(ResultFailure)
	r.IncAssetResult(ResultSuccess)
	r.IncBuildOutcome("failed")

	require.Equal(t, float64(2), testutil.ToFloat64(r.pageResults.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.pageResults.WithLabelValues("failure")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.assetResults.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.buildOutcome.WithLabelValues("failed")))
}

func TestPrometheusRecorder_NilReceiverSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveBuildDuration(time.Second)
	r.IncPageResult(ResultSuccess)
}

func TestPrometheusRecorder_Histograms_Observed(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveBuildDuration(250 * time.Millisecond)
	r.ObserveStageDuration("pages", 100*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "mdsite_build_duration_seconds")
	require.Contains(t, names, "mdsite_stage_duration_seconds")
}
