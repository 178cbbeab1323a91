// Package metrics records submission metrics in a private Prometheus registry.
// A CLI process is short-lived, so the registry is exported with WriteTextfile
// for the node exporter textfile collector instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/odkupload/internal/ports/secondary"
)

const (
	namespace = "odkupload"
	subsystem = "submission"
)

// Recorder implements secondary.MetricsRecorder.
type Recorder struct {
	registry *prometheus.Registry

	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	runsTotal      *prometheus.CounterVec
	deletionsTotal prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "uploads_total",
				Help:      "Total number of instance uploads by outcome kind",
			},
			[]string{"kind"},
		),
		uploadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "upload_duration_seconds",
				Help:      "Duration of a single instance upload including the HEAD probe",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total number of submission passes by trigger and result",
			},
			[]string{"trigger", "result"},
		),
		deletionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "deletions_total",
				Help:      "Total number of instances deleted after a successful upload",
			},
		),
	}
}

// ObserveUpload records one instance upload outcome and its duration.
func (r *Recorder) ObserveUpload(kind string, duration time.Duration) {
	r.uploadsTotal.WithLabelValues(kind).Inc()
	r.uploadDuration.Observe(duration.Seconds())
}

// ObserveRun records the result of a pass.
func (r *Recorder) ObserveRun(trigger, result string) {
	r.runsTotal.WithLabelValues(trigger, result).Inc()
}

// ObserveDeletion records an instance deleted after sending.
func (r *Recorder) ObserveDeletion() {
	r.deletionsTotal.Inc()
}

// Registry returns the registry holding the submission collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every collected metric to path in the Prometheus text format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Ensure Recorder implements the interface
var _ secondary.MetricsRecorder = (*Recorder)(nil)
