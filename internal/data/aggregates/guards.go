package aggregates

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
)

// StatusGuard moves rows between statuses with compare-and-set semantics: a row changes only
// while its stored status is still one of the expected sources.
type StatusGuard struct {
	db *gorm.DB
}

func NewStatusGuard(db *gorm.DB) StatusGuard {
	return StatusGuard{db: db}
}

// Transition applies updates to the row of model's table with id when its status is in from.
// It reports false, without error, when another writer moved the row first.
func Transition[S ~string](g StatusGuard, dbc dbctx.Context, model schema.Tabler, id uuid.UUID, from []S, updates map[string]any) (bool, error) {
	if dbc.Tx == nil && g.db == nil {
		return false, ValidationError("status guard has no db")
	}
	if model == nil || id == uuid.Nil {
		return false, ValidationError("model and id are required for a status transition")
	}
	if len(from) == 0 {
		return false, ValidationError("at least one source status is required")
	}
	if len(updates) == 0 {
		return false, ValidationError("a status transition needs updates")
	}
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}
	res := dbc.DB(g.db).
		Table(model.TableName()).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
