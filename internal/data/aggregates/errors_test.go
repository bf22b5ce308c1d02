package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/publishing"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_KeepsPublishingReason(t *testing.T) {
	err := MapError("catalog.update_lesson", publishing.Invalid(publishing.ReasonMissingRequiredAssets, "missing LANDSCAPE thumbnail for language en"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if got := domainagg.ReasonOf(err); got != string(publishing.ReasonMissingRequiredAssets) {
		t.Fatalf("reason: got %q", got)
	}
	if got := domainagg.MessageOf(err); got != "missing LANDSCAPE thumbnail for language en" {
		t.Fatalf("message: got %q", got)
	}
}

func TestMapError_StoreFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"unique pg", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"serialization pg", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, domainagg.CodeRetryable},
		{"missing parent pg", &pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		{"unique sqlite", errors.New("UNIQUE constraint failed: topic.name"), domainagg.CodeConflict},
		{"sqlite busy", errors.New("database is locked"), domainagg.CodeRetryable},
		{"canceled", context.Canceled, domainagg.CodeRetryable},
		{"unknown", errors.New("disk on fire"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domainagg.CodeOf(MapError("op", tc.err)); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
