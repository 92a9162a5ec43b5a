// Package metrics exposes Prometheus instrumentation for the
// transcription pipeline and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stage labels a pipeline phase in the run metrics.
type Stage string

const (
	StageConvert    Stage = "convert"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StagePersist    Stage = "persist"
)

// Metrics holds the pipeline collectors, all registered on a single registry
// so the HTTP handler and tests can scope what they see.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	AudioDuration prometheus.Histogram
}

// New builds a Metrics with its own registry, including the standard process
// and Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "msum",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome. Failed runs carry the stage that broke.",
		}, []string{"result", "stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "msum",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
		AudioDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "msum",
			Name:      "audio_duration_seconds",
			Help:      "Duration of processed audio files.",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 10),
		}),
	}
	registry.MustRegister(m.RunsTotal, m.StageDuration, m.AudioDuration)
	return m
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records a completed pipeline run. stage is empty on success and
// names the failing stage otherwise.
func (m *Metrics) ObserveRun(err error, stage Stage) {
	if err == nil {
		m.RunsTotal.WithLabelValues("success", "").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("failure", string(stage)).Inc()
}
