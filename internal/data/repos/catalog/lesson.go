package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

// LessonPosition is one lesson in program reading order.
type LessonPosition struct {
	ID           uuid.UUID
	Status       types.LessonStatus
	TermNumber   int
	LessonNumber int
}

type LessonRepo interface {
	Create(dbc dbctx.Context, lesson *types.Lesson) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListByTerm(dbc dbctx.Context, termID uuid.UUID) ([]*types.Lesson, error)
	// ClaimDue flips up to limit due SCHEDULED lessons to PUBLISHED in one statement and returns them.
	// Rows locked by a concurrent claimant are skipped, never waited on.
	ClaimDue(dbc dbctx.Context, now time.Time, limit int) ([]types.Lesson, error)
	// ProgramSequence lists the program's lessons ordered by (term_number, lesson_number).
	ProgramSequence(dbc dbctx.Context, programID uuid.UUID) ([]LessonPosition, error)
	ProgramIDOf(dbc dbctx.Context, lessonID uuid.UUID) (uuid.UUID, error)
	GetPublished(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{
		db:  db,
		log: baseLog.With("repo", "LessonRepo"),
	}
}

func (r *lessonRepo) Create(dbc dbctx.Context, lesson *types.Lesson) error {
	return dbc.DB(r.db).Omit(clause.Associations).Create(lesson).Error
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	var lesson types.Lesson
	err := dbc.DB(r.db).
		Preload("Assets", orderAssets).
		Where("id = ?", id).
		Limit(1).
		Find(&lesson).Error
	if err != nil {
		return nil, err
	}
	if lesson.ID == uuid.Nil {
		return nil, nil
	}
	return &lesson, nil
}

func (r *lessonRepo) GetPublished(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	var lesson types.Lesson
	err := dbc.DB(r.db).
		Preload("Assets", orderAssets).
		Where("id = ? AND status = ?", id, types.LessonPublished).
		Limit(1).
		Find(&lesson).Error
	if err != nil {
		return nil, err
	}
	if lesson.ID == uuid.Nil {
		return nil, nil
	}
	return &lesson, nil
}

func (r *lessonRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	var lesson types.Lesson
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&lesson).Error
	if err != nil {
		return nil, err
	}
	if lesson.ID == uuid.Nil {
		return nil, nil
	}
	return &lesson, nil
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.Lesson{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *lessonRepo) ListByTerm(dbc dbctx.Context, termID uuid.UUID) ([]*types.Lesson, error) {
	var out []*types.Lesson
	if err := dbc.DB(r.db).
		Preload("Assets", orderAssets).
		Where("term_id = ?", termID).
		Order("lesson_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) ClaimDue(dbc dbctx.Context, now time.Time, limit int) ([]types.Lesson, error) {
	if limit <= 0 {
		limit = 500
	}
	now = now.UTC()
	db := dbc.DB(r.db)

	due := db.Model(&types.Lesson{}).
		Select("id").
		Where("status = ? AND publish_at <= ?", types.LessonScheduled, now).
		Order("publish_at ASC").
		Limit(limit).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})

	var claimed []types.Lesson
	err := db.Model(&claimed).
		Clauses(clause.Returning{}).
		Where("id IN (?)", due).
		Where("status = ?", types.LessonScheduled).
		Updates(map[string]interface{}{
			"status":       types.LessonPublished,
			"published_at": gorm.Expr("COALESCE(published_at, ?)", now),
			"updated_at":   now,
		}).Error
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *lessonRepo) ProgramSequence(dbc dbctx.Context, programID uuid.UUID) ([]LessonPosition, error) {
	var out []LessonPosition
	err := dbc.DB(r.db).
		Table("lesson").
		Select("lesson.id AS id, lesson.status AS status, term.term_number AS term_number, lesson.lesson_number AS lesson_number").
		Joins("JOIN term ON term.id = lesson.term_id").
		Where("term.program_id = ?", programID).
		Order("term.term_number ASC").
		Order("lesson.lesson_number ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) ProgramIDOf(dbc dbctx.Context, lessonID uuid.UUID) (uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbc.DB(r.db).
		Table("lesson").
		Joins("JOIN term ON term.id = lesson.term_id").
		Where("lesson.id = ?", lessonID).
		Limit(1).
		Pluck("term.program_id", &ids).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(ids) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}
