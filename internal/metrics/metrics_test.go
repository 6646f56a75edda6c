package metrics

import (
	"errors"
	"testing"
	"time"
)

// captureBackend records every call for assertions.
type captureBackend struct {
	counters   []capturedMetric
	histograms []capturedMetric
	flushed    int
	flushErr   error
}

type capturedMetric struct {
	name   string
	value  float64
	labels Labels
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters = append(c.counters, capturedMetric{name, delta, labels})
}

func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms = append(c.histograms, capturedMetric{name, value, labels})
}

func (c *captureBackend) Flush() error {
	c.flushed++
	return c.flushErr
}

// install swaps in b and restores the previous backend on cleanup.
func install(t *testing.T, b Backend) {
	t.Helper()
	prev := backend
	SetBackend(b)
	t.Cleanup(func() { backend = prev })
}

func TestRecordStepSuccess(t *testing.T) {
	be := &captureBackend{}
	install(t, be)

	RecordStep("books_csv", "load", nil, 250*time.Millisecond)

	if len(be.counters) != 1 || len(be.histograms) != 1 {
		t.Fatalf("counters=%d histograms=%d", len(be.counters), len(be.histograms))
	}
	c := be.counters[0]
	if c.name != "booketl_step_total" || c.value != 1 {
		t.Errorf("counter=%+v", c)
	}
	if c.labels["step"] != "load" || c.labels["status"] != "success" || c.labels["job"] != "books_csv" {
		t.Errorf("labels=%v", c.labels)
	}
	h := be.histograms[0]
	if h.name != "booketl_step_duration_seconds" || h.value != 0.25 {
		t.Errorf("histogram=%+v", h)
	}
}

func TestRecordStepFailure(t *testing.T) {
	be := &captureBackend{}
	install(t, be)

	RecordStep("books_csv", "load", errors.New("boom"), time.Second)

	if got := be.counters[0].labels["status"]; got != "failure" {
		t.Errorf("status=%q", got)
	}
}

func TestRecordRows(t *testing.T) {
	be := &captureBackend{}
	install(t, be)

	RecordRows("books_csv", "books", 3)
	RecordRows("books_csv", "duplicates", 0)
	RecordRows("books_csv", "date_errors", -1)

	// Zero and negative deltas are dropped.
	if len(be.counters) != 1 {
		t.Fatalf("counters=%d want 1", len(be.counters))
	}
	c := be.counters[0]
	if c.name != "booketl_records_total" || c.value != 3 || c.labels["kind"] != "books" {
		t.Errorf("counter=%+v", c)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	be := &captureBackend{}
	install(t, be)

	SetBackend(nil)
	RecordRows("books_csv", "rows", 1)

	if len(be.counters) != 1 {
		t.Fatalf("nil SetBackend replaced the backend")
	}
}

func TestFlushDelegates(t *testing.T) {
	be := &captureBackend{flushErr: errors.New("push failed")}
	install(t, be)

	if err := Flush(); err == nil {
		t.Fatalf("expected flush error")
	}
	if be.flushed != 1 {
		t.Fatalf("flushed=%d want 1", be.flushed)
	}
}
