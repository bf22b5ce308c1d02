package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAggregateOperation("catalog.update_lesson", "success", 20*time.Millisecond)
	m.ObserveAggregateOperation("catalog.update_lesson", "validation", 5*time.Millisecond)
	m.ObserveSchedulerPass("success", 3, 1, 40*time.Millisecond)
	m.ObserveSchedulerPass("success", 2, 0, 10*time.Millisecond)

	if got := m.LessonsPublished(); got != 5 {
		t.Fatalf("LessonsPublished=%v want 5", got)
	}
	if got := m.ProgramsCascaded(); got != 1 {
		t.Fatalf("ProgramsCascaded=%v want 1", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`curriculum_aggregate_operations_total{operation="catalog.update_lesson",status="success"} 1.000000`,
		`curriculum_aggregate_operations_total{operation="catalog.update_lesson",status="validation"} 1.000000`,
		`curriculum_scheduler_passes_total{status="success"} 2.000000`,
		`curriculum_scheduler_pass_duration_seconds_bucket{status="success",le="+Inf"} 2`,
		`# TYPE curriculum_scheduler_lessons_published_total counter`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveSchedulerPass("failure", 0, 0, time.Millisecond)
	m.IncCatalogCache("hit")
	if m.LessonsPublished() != 0 {
		t.Fatalf("nil metrics should report zero")
	}
}
