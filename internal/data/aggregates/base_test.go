package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/publishing"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
)

func TestExecuteWriteClassifiesOutcomes(t *testing.T) {
	cases := []struct {
		name          string
		body          error
		wantCode      domainagg.ErrorCode
		wantStatus    string
		wantConflicts int
		wantRetries   int
	}{
		{"success", nil, "", "success", 0, 0},
		{"publish gate", publishing.Invalid(publishing.ReasonMissingContentURL, "missing content url for language en"), domainagg.CodeValidation, "validation", 0, 0},
		{"missing lesson", gorm.ErrRecordNotFound, domainagg.CodeNotFound, "not_found", 0, 0},
		{"invariant", InvariantError("published_at already set"), domainagg.CodeInvariantViolation, "invariant_violation", 0, 0},
		{"duplicate asset key", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict, "conflict", 1, 0},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, domainagg.CodeRetryable, "retryable", 0, 1},
		{"cancelled", context.Canceled, domainagg.CodeRetryable, "retryable", 0, 1},
		{"opaque", errors.New("driver: bad connection state"), domainagg.CodeInternal, "internal", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "catalog.test",
				func(dbctx.Context) error { return tc.body })

			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
			} else if !domainagg.IsCode(err, tc.wantCode) {
				t.Fatalf("code=%q want %q (err=%v)", domainagg.CodeOf(err), tc.wantCode, err)
			}
			if len(hooks.Operations) != 1 || hooks.Operations[0] != (spyOperation{Name: "catalog.test", Status: tc.wantStatus}) {
				t.Fatalf("operations=%+v", hooks.Operations)
			}
			if len(hooks.Conflicts) != tc.wantConflicts || len(hooks.Retries) != tc.wantRetries {
				t.Fatalf("conflicts=%v retries=%v", hooks.Conflicts, hooks.Retries)
			}
		})
	}
}

func TestExecuteWriteKeepsPublishingReason(t *testing.T) {
	err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}}, "catalog.update_program",
		func(dbctx.Context) error {
			return publishing.Invalid(publishing.ReasonMissingRequiredAssets, "missing LANDSCAPE poster for language en")
		})
	if got := domainagg.ReasonOf(err); got != string(publishing.ReasonMissingRequiredAssets) {
		t.Fatalf("reason=%q", got)
	}
	if got := domainagg.MessageOf(err); got != "missing LANDSCAPE poster for language en" {
		t.Fatalf("message=%q", got)
	}
}

func TestExecuteWriteDefaultsOpName(t *testing.T) {
	hooks := &spyHooks{}
	_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "  ", func(dbctx.Context) error { return nil })
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "aggregate.write" {
		t.Fatalf("operations=%+v", hooks.Operations)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) { h.Conflicts = append(h.Conflicts, name) }
func (h *spyHooks) IncRetry(name string)    { h.Retries = append(h.Retries, name) }
func (h *spyHooks) IncEvent(string, string) {}
