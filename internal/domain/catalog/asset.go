package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetVariant string

const (
	VariantPortrait  AssetVariant = "PORTRAIT"
	VariantLandscape AssetVariant = "LANDSCAPE"
	VariantSquare    AssetVariant = "SQUARE"
	VariantBanner    AssetVariant = "BANNER"
)

func ParseAssetVariant(raw string) (AssetVariant, bool) {
	v := AssetVariant(strings.ToUpper(strings.TrimSpace(raw)))
	switch v {
	case VariantPortrait, VariantLandscape, VariantSquare, VariantBanner:
		return v, true
	default:
		return "", false
	}
}

type AssetType string

const (
	AssetPoster    AssetType = "POSTER"
	AssetThumbnail AssetType = "THUMBNAIL"
	AssetSubtitle  AssetType = "SUBTITLE"
)

// RequiredVariants are the variants a poster or thumbnail set needs before publishing.
var RequiredVariants = []AssetVariant{VariantPortrait, VariantLandscape}

// AssetKey is the composite identity of an asset within its owner.
type AssetKey struct {
	Language  LanguageCode
	Variant   AssetVariant
	AssetType AssetType
}

// ProgramAsset is unique per (program_id, language, variant, asset_type).
type ProgramAsset struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID uuid.UUID    `gorm:"type:uuid;column:program_id;not null;uniqueIndex:idx_program_asset_key,priority:1" json:"program_id"`
	Language  LanguageCode `gorm:"column:language;not null;size:8;uniqueIndex:idx_program_asset_key,priority:2" json:"language"`
	Variant   AssetVariant `gorm:"column:variant;not null;size:16;uniqueIndex:idx_program_asset_key,priority:3" json:"variant"`
	AssetType AssetType    `gorm:"column:asset_type;not null;size:16;uniqueIndex:idx_program_asset_key,priority:4" json:"asset_type"`
	URL       string       `gorm:"column:url;not null" json:"url"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (ProgramAsset) TableName() string { return "program_asset" }

func (a *ProgramAsset) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a ProgramAsset) Key() AssetKey {
	return AssetKey{Language: a.Language, Variant: a.Variant, AssetType: a.AssetType}
}

// LessonAsset is unique per (lesson_id, language, variant, asset_type).
type LessonAsset struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID  uuid.UUID    `gorm:"type:uuid;column:lesson_id;not null;uniqueIndex:idx_lesson_asset_key,priority:1" json:"lesson_id"`
	Language  LanguageCode `gorm:"column:language;not null;size:8;uniqueIndex:idx_lesson_asset_key,priority:2" json:"language"`
	Variant   AssetVariant `gorm:"column:variant;not null;size:16;uniqueIndex:idx_lesson_asset_key,priority:3" json:"variant"`
	AssetType AssetType    `gorm:"column:asset_type;not null;size:16;uniqueIndex:idx_lesson_asset_key,priority:4" json:"asset_type"`
	URL       string       `gorm:"column:url;not null" json:"url"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (LessonAsset) TableName() string { return "lesson_asset" }

func (a *LessonAsset) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a LessonAsset) Key() AssetKey {
	return AssetKey{Language: a.Language, Variant: a.Variant, AssetType: a.AssetType}
}

// AssetInput is one (language, variant, url) entry of an editor's asset list.
type AssetInput struct {
	Language LanguageCode
	Variant  AssetVariant
	URL      string
}

// GroupedAssets renders assets as {language: {variant: url}} with lower-case variant names.
type GroupedAssets map[LanguageCode]map[string]string

// GroupProgramAssets returns the posters keyed by language then variant.
func GroupProgramAssets(assets []ProgramAsset) GroupedAssets {
	out := GroupedAssets{}
	for _, a := range assets {
		if a.AssetType == AssetPoster {
			out.add(a.Language, a.Variant, a.URL)
		}
	}
	return out
}

// GroupLessonAssets returns the thumbnails keyed by language then variant.
func GroupLessonAssets(assets []LessonAsset) GroupedAssets {
	out := GroupedAssets{}
	for _, a := range assets {
		if a.AssetType == AssetThumbnail {
			out.add(a.Language, a.Variant, a.URL)
		}
	}
	return out
}

func (g GroupedAssets) add(lang LanguageCode, variant AssetVariant, url string) {
	if g[lang] == nil {
		g[lang] = map[string]string{}
	}
	g[lang][strings.ToLower(string(variant))] = url
}
