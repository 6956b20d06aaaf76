package metrics

import "time"

// ResultLabel enumerates per-file result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder defines observability hooks for build metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe on
// the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	IncPageResult(result ResultLabel)
	IncAssetResult(result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|failed
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration)  {}
func (NoopRecorder) IncPageResult(ResultLabel)                   {}
func (NoopRecorder) IncAssetResult(ResultLabel)                  {}
func (NoopRecorder) IncBuildOutcome(string)                      {}
