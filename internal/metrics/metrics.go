// Package metrics is a backend-agnostic facade for run-level instrumentation
// of the join pipeline: step outcomes and durations (reference load, join,
// sink), record counters per kind and batch counters.
//
// A no-op backend is installed by default, so every Record* call is safe
// without configuration. Concrete systems live in subpackages (prompush,
// datadog) and are installed with SetBackend.
package metrics

import "time"

// Metric names emitted by the Record* helpers.
const (
	StepTotal           = "meshjoin_step_total"
	StepDurationSeconds = "meshjoin_step_duration_seconds"
	RecordsTotal        = "meshjoin_records_total"
	BatchesTotal        = "meshjoin_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step and observes its duration, labelled
// success or failure by err.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRecords adds delta to the record counter of the given kind, e.g.
// "lines", "malformed", "joined", "unmatched_customer", "stored".
// Non-positive deltas are ignored.
func RecordRecords(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordBatches increments the batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job})
}
