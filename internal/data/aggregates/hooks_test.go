package aggregates

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/curriculum-backend/internal/observability"
)

func TestMetricsHooksRecordOnRegistry(t *testing.T) {
	m := observability.NewMetrics()
	h := NewObservabilityHooks(m)
	h.ObserveOperation("catalog.update_lesson", "validation", 3*time.Millisecond)
	h.IncConflict("catalog.update_lesson")
	h.IncEvent("lesson.published", "sent")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`operation="catalog.update_lesson"`, `status="validation"`, `kind="lesson.published"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics missing %s:\n%s", want, out)
		}
	}
}

func TestZeroMetricsHooksAreNoop(t *testing.T) {
	var h MetricsHooks
	h.ObserveOperation("catalog.update_program", "success", time.Millisecond)
	h.IncRetry("catalog.update_program")
	h.IncEvent("program.published", "failed")
}
