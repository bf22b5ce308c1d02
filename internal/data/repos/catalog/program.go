package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type ProgramFilter struct {
	Status   types.ProgramStatus
	Language types.LanguageCode
	Topic    string
}

// CatalogFilter selects published programs that have at least one published lesson.
type CatalogFilter struct {
	Language types.LanguageCode
	Topic    string
	// Cursor is the id of the last program of the previous page.
	Cursor *uuid.UUID
	Limit  int
}

type TreeOptions struct {
	// PublishedLessonsOnly drops every lesson that is not PUBLISHED.
	PublishedLessonsOnly bool
}

type ProgramRepo interface {
	Create(dbc dbctx.Context, program *types.Program) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ReplaceTopics(dbc dbctx.Context, programID uuid.UUID, topics []*types.Topic) error
	List(dbc dbctx.Context, filter ProgramFilter) ([]*types.Program, error)
	GetTree(dbc dbctx.Context, id uuid.UUID, opts TreeOptions) (*types.Program, error)
	ListCatalog(dbc dbctx.Context, filter CatalogFilter) ([]*types.Program, error)
	GetCatalogTree(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
}

type programRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return &programRepo{
		db:  db,
		log: baseLog.With("repo", "ProgramRepo"),
	}
}

func (r *programRepo) Create(dbc dbctx.Context, program *types.Program) error {
	return dbc.DB(r.db).Omit(clause.Associations).Create(program).Error
}

func (r *programRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	var program types.Program
	err := dbc.DB(r.db).
		Preload("Topics", orderByName).
		Preload("Assets", orderAssets).
		Where("id = ?", id).
		Limit(1).
		Find(&program).Error
	if err != nil {
		return nil, err
	}
	if program.ID == uuid.Nil {
		return nil, nil
	}
	return &program, nil
}

// LockByID reads the row FOR UPDATE so concurrent editors serialize on it.
func (r *programRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	var program types.Program
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&program).Error
	if err != nil {
		return nil, err
	}
	if program.ID == uuid.Nil {
		return nil, nil
	}
	return &program, nil
}

func (r *programRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.Program{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *programRepo) ReplaceTopics(dbc dbctx.Context, programID uuid.UUID, topics []*types.Topic) error {
	program := &types.Program{ID: programID}
	return dbc.DB(r.db).Model(program).Association("Topics").Replace(topics)
}

func (r *programRepo) List(dbc dbctx.Context, filter ProgramFilter) ([]*types.Program, error) {
	q := dbc.DB(r.db).
		Preload("Topics", orderByName).
		Preload("Assets", orderAssets)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = applyProgramFilters(q, filter.Language, filter.Topic)

	var out []*types.Program
	if err := q.Order("updated_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *programRepo) GetTree(dbc dbctx.Context, id uuid.UUID, opts TreeOptions) (*types.Program, error) {
	var program types.Program
	err := preloadTree(dbc.DB(r.db), opts.PublishedLessonsOnly).
		Where("id = ?", id).
		Limit(1).
		Find(&program).Error
	if err != nil {
		return nil, err
	}
	if program.ID == uuid.Nil {
		return nil, nil
	}
	return &program, nil
}

func (r *programRepo) ListCatalog(dbc dbctx.Context, filter CatalogFilter) ([]*types.Program, error) {
	db := dbc.DB(r.db)
	q := db.
		Preload("Topics", orderByName).
		Preload("Assets", orderAssets).
		Where("status = ?", types.ProgramPublished).
		Where(`EXISTS (
			SELECT 1 FROM term
			JOIN lesson ON lesson.term_id = term.id
			WHERE term.program_id = program.id AND lesson.status = ?
		)`, types.LessonPublished)
	q = applyProgramFilters(q, filter.Language, filter.Topic)

	if filter.Cursor != nil && *filter.Cursor != uuid.Nil {
		var cursor types.Program
		if err := db.Select("id", "published_at").
			Where("id = ?", *filter.Cursor).
			Limit(1).
			Find(&cursor).Error; err != nil {
			return nil, err
		}
		if cursor.ID == uuid.Nil {
			return []*types.Program{}, nil
		}
		if cursor.PublishedAt != nil {
			q = q.Where("(published_at < ? OR (published_at = ? AND id < ?))", *cursor.PublishedAt, *cursor.PublishedAt, cursor.ID)
		} else {
			q = q.Where("published_at IS NULL AND id < ?", cursor.ID)
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	var out []*types.Program
	if err := q.Order("published_at DESC").Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *programRepo) GetCatalogTree(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	var program types.Program
	err := preloadTree(dbc.DB(r.db), true).
		Where("id = ? AND status = ?", id, types.ProgramPublished).
		Limit(1).
		Find(&program).Error
	if err != nil {
		return nil, err
	}
	if program.ID == uuid.Nil {
		return nil, nil
	}
	return &program, nil
}

func applyProgramFilters(q *gorm.DB, language types.LanguageCode, topic string) *gorm.DB {
	if language != "" {
		q = q.Where("language_primary = ?", language)
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		q = q.Where(`id IN (
			SELECT program_topic.program_id FROM program_topic
			JOIN topic ON topic.id = program_topic.topic_id
			WHERE topic.name = ?
		)`, topic)
	}
	return q
}

func preloadTree(q *gorm.DB, publishedLessonsOnly bool) *gorm.DB {
	return q.
		Preload("Topics", orderByName).
		Preload("Assets", orderAssets).
		Preload("Terms", func(db *gorm.DB) *gorm.DB {
			return db.Order("term_number ASC")
		}).
		Preload("Terms.Lessons", func(db *gorm.DB) *gorm.DB {
			if publishedLessonsOnly {
				db = db.Where("status = ?", types.LessonPublished)
			}
			return db.Order("lesson_number ASC")
		}).
		Preload("Terms.Lessons.Assets", orderAssets)
}

func orderByName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

func orderAssets(db *gorm.DB) *gorm.DB {
	return db.Order("language ASC").Order("variant ASC")
}
