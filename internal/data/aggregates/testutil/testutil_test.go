package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
)

func TestInjectedTxRunnerCounters(t *testing.T) {
	bodyErr := errors.New("boom")
	commitErr := errors.New("commit failed")
	beginErr := errors.New("begin failed")

	cases := []struct {
		name                     string
		runner                   *InjectedTxRunner
		body                     error
		wantErr                  error
		wantCommits, wantRollbks int
		wantBodyRan              bool
	}{
		{"commit", &InjectedTxRunner{}, nil, nil, 1, 0, true},
		{"body error", &InjectedTxRunner{}, bodyErr, bodyErr, 0, 1, true},
		{"commit failure", &InjectedTxRunner{FailCommit: commitErr}, nil, commitErr, 0, 1, true},
		{"begin failure", &InjectedTxRunner{FailBegin: beginErr}, nil, beginErr, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ran := false
			err := tc.runner.InTx(context.Background(), func(dbctx.Context) error {
				ran = true
				return tc.body
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v want %v", err, tc.wantErr)
			}
			if ran != tc.wantBodyRan {
				t.Fatalf("body ran=%v want %v", ran, tc.wantBodyRan)
			}
			r := tc.runner
			if r.BeginCalls != 1 || r.CommitCalls != tc.wantCommits || r.RollbackCalls != tc.wantRollbks {
				t.Fatalf("begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
			}
		})
	}
}

type countingRunner struct{ calls int }

func (c *countingRunner) InTx(ctx context.Context, fn func(dbctx.Context) error) error {
	c.calls++
	return fn(dbctx.Context{Ctx: ctx})
}

func TestInjectedTxRunnerDelegatesToInner(t *testing.T) {
	inner := &countingRunner{}
	commitErr := errors.New("commit failed")
	r := &InjectedTxRunner{Inner: inner, FailCommit: commitErr}
	if err := r.InTx(context.Background(), func(dbctx.Context) error { return nil }); !errors.Is(err, commitErr) {
		t.Fatalf("err=%v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner runner calls=%d", inner.calls)
	}
}

func TestHooksRecorderStatusOf(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("catalog.update_lesson", "validation", time.Millisecond)
	h.ObserveOperation("catalog.update_lesson", "success", time.Millisecond)
	h.IncEvent("lesson.published", "sent")

	if got := h.StatusOf("catalog.update_lesson"); got != "success" {
		t.Fatalf("StatusOf=%q", got)
	}
	if got := h.StatusOf("catalog.update_program"); got != "" {
		t.Fatalf("unknown op StatusOf=%q", got)
	}
	if len(h.Events) != 1 || h.Events[0] != "lesson.published:sent" {
		t.Fatalf("events=%v", h.Events)
	}
}
