package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend records every call in memory.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushes    int
	flushErr   error
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return f.flushErr
}

// swapBackend installs fb for the duration of the test. Tests using it must
// not run in parallel.
func swapBackend(t *testing.T, fb Backend) {
	t.Helper()
	orig := backend
	backend = fb
	t.Cleanup(func() { backend = orig })
}

func TestRecordStep(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	RecordStep("sales", "reference", nil, 2*time.Second)
	RecordStep("sales", "sink", errors.New("disk full"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls counters=%d histograms=%d, want 2/2", len(fb.counters), len(fb.histograms))
	}

	tests := []struct {
		i      int
		step   string
		status string
		secs   float64
	}{
		{0, "reference", "success", 2.0},
		{1, "sink", "failure", 1.5},
	}
	for _, tt := range tests {
		c := fb.counters[tt.i]
		if c.name != StepTotal || c.value != 1 {
			t.Fatalf("counter[%d] = %+v", tt.i, c)
		}
		if c.labels["job"] != "sales" || c.labels["step"] != tt.step || c.labels["status"] != tt.status {
			t.Fatalf("counter[%d] labels = %v", tt.i, c.labels)
		}
		h := fb.histograms[tt.i]
		if h.name != StepDurationSeconds || h.value < tt.secs-0.001 || h.value > tt.secs+0.001 {
			t.Fatalf("histogram[%d] = %+v, want ~%v", tt.i, h, tt.secs)
		}
	}
}

func TestRecordRecordsAndBatches(t *testing.T) {
	fb := &fakeBackend{}
	swapBackend(t, fb)

	RecordRecords("sales", "joined", 3)
	RecordRecords("sales", "malformed", 0)
	RecordRecords("sales", "unmatched_product", -2)
	RecordRecords("sales", "stored", 5)
	RecordBatches("sales", 2)
	RecordBatches("sales", 0)

	want := []call{
		{RecordsTotal, 3, Labels{"job": "sales", "kind": "joined"}},
		{RecordsTotal, 5, Labels{"job": "sales", "kind": "stored"}},
		{BatchesTotal, 2, Labels{"job": "sales"}},
	}
	if len(fb.counters) != len(want) {
		t.Fatalf("counter calls = %d, want %d: %+v", len(fb.counters), len(want), fb.counters)
	}
	for i, w := range want {
		got := fb.counters[i]
		if got.name != w.name || got.value != w.value {
			t.Fatalf("counter[%d] = %+v, want %+v", i, got, w)
		}
		for k, v := range w.labels {
			if got.labels[k] != v {
				t.Fatalf("counter[%d] label %s = %q, want %q", i, k, got.labels[k], v)
			}
		}
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	swapBackend(t, nopBackend{})

	fb := &fakeBackend{flushErr: errors.New("gateway down")}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err == nil || fb.flushes != 1 {
		t.Fatalf("Flush err=%v flushes=%d", err, fb.flushes)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) changed the backend")
	}
}

func TestNopBackend(t *testing.T) {
	swapBackend(t, nopBackend{})

	RecordStep("j", "s", nil, time.Millisecond)
	RecordRecords("j", "k", 1)
	RecordBatches("j", 1)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
