package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
)

func TestGormTxRunnerRollsBackOnError(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	runner := NewGormTxRunner(db, WithLockTimeout(2*time.Second))

	boom := errors.New("boom")
	err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := dbc.Tx.Create(&catalog.Topic{Name: "Rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err=%v want boom", err)
	}
	var count int64
	if err := db.Model(&catalog.Topic{}).Where("name = ?", "Rolled back").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("topic persisted despite rollback")
	}
}

func TestGormTxRunnerNilDB(t *testing.T) {
	err := NewGormTxRunner(nil).InTx(context.Background(), func(dbctx.Context) error { return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
