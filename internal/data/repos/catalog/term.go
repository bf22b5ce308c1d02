package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type TermRepo interface {
	Create(dbc dbctx.Context, term *types.Term) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Term, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// ProgramIDsForTerms returns the distinct owning programs of termIDs.
	ProgramIDsForTerms(dbc dbctx.Context, termIDs []uuid.UUID) ([]uuid.UUID, error)
}

type termRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return &termRepo{
		db:  db,
		log: baseLog.With("repo", "TermRepo"),
	}
}

func (r *termRepo) Create(dbc dbctx.Context, term *types.Term) error {
	return dbc.DB(r.db).Create(term).Error
}

func (r *termRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Term, error) {
	var term types.Term
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&term).Error; err != nil {
		return nil, err
	}
	if term.ID == uuid.Nil {
		return nil, nil
	}
	return &term, nil
}

func (r *termRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.Term{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *termRepo) ProgramIDsForTerms(dbc dbctx.Context, termIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(termIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Model(&types.Term{}).
		Distinct("program_id").
		Where("id IN ?", termIDs).
		Order("program_id").
		Pluck("program_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
