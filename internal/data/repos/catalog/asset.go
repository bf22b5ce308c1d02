package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type AssetRepo interface {
	// UpsertLessonAssets inserts or updates the url by (lesson_id, language, variant, asset_type).
	UpsertLessonAssets(dbc dbctx.Context, assets []*types.LessonAsset) error
	UpsertProgramAssets(dbc dbctx.Context, assets []*types.ProgramAsset) error
	ListLessonAssets(dbc dbctx.Context, lessonID uuid.UUID, assetType types.AssetType) ([]*types.LessonAsset, error)
	// DeleteLessonAssetsExcept removes assets of assetType whose (language, variant) is not in keep.
	DeleteLessonAssetsExcept(dbc dbctx.Context, lessonID uuid.UUID, assetType types.AssetType, keep []types.AssetKey) (int64, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{
		db:  db,
		log: baseLog.With("repo", "AssetRepo"),
	}
}

var assetConflictUpdates = clause.AssignmentColumns([]string{"url", "updated_at"})

func (r *assetRepo) UpsertLessonAssets(dbc dbctx.Context, assets []*types.LessonAsset) error {
	if len(assets) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "language"}, {Name: "variant"}, {Name: "asset_type"}},
			DoUpdates: assetConflictUpdates,
		}).
		Create(&assets).Error
}

func (r *assetRepo) UpsertProgramAssets(dbc dbctx.Context, assets []*types.ProgramAsset) error {
	if len(assets) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "program_id"}, {Name: "language"}, {Name: "variant"}, {Name: "asset_type"}},
			DoUpdates: assetConflictUpdates,
		}).
		Create(&assets).Error
}

func (r *assetRepo) ListLessonAssets(dbc dbctx.Context, lessonID uuid.UUID, assetType types.AssetType) ([]*types.LessonAsset, error) {
	var out []*types.LessonAsset
	q := dbc.DB(r.db).Where("lesson_id = ?", lessonID)
	if assetType != "" {
		q = q.Where("asset_type = ?", assetType)
	}
	if err := q.Order("language ASC").Order("variant ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) DeleteLessonAssetsExcept(dbc dbctx.Context, lessonID uuid.UUID, assetType types.AssetType, keep []types.AssetKey) (int64, error) {
	existing, err := r.ListLessonAssets(dbc, lessonID, assetType)
	if err != nil {
		return 0, err
	}
	wanted := make(map[types.AssetKey]struct{}, len(keep))
	for _, k := range keep {
		k.AssetType = assetType
		wanted[k] = struct{}{}
	}
	var stale []uuid.UUID
	for _, a := range existing {
		if _, ok := wanted[a.Key()]; !ok {
			stale = append(stale, a.ID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", stale).Delete(&types.LessonAsset{})
	return res.RowsAffected, res.Error
}
