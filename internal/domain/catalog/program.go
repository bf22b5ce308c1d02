package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Program struct {
	ID                 uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string                            `gorm:"column:title;not null" json:"title"`
	Description        string                            `gorm:"column:description;type:text" json:"description"`
	LanguagePrimary    LanguageCode                      `gorm:"column:language_primary;not null;size:8;index" json:"language_primary"`
	LanguagesAvailable datatypes.JSONSlice[LanguageCode] `gorm:"column:languages_available" json:"languages_available"`
	Status             ProgramStatus                     `gorm:"column:status;not null;size:16;index" json:"status"`
	// PublishedAt is written once, on the first transition into PUBLISHED.
	PublishedAt *time.Time     `gorm:"column:published_at;index" json:"published_at"`
	Topics      []Topic        `gorm:"many2many:program_topic;" json:"topics,omitempty"`
	Assets      []ProgramAsset `gorm:"foreignKey:ProgramID" json:"assets,omitempty"`
	Terms       []Term         `gorm:"foreignKey:ProgramID" json:"terms,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
}

func (Program) TableName() string { return "program" }

func (p *Program) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProgramDraft
	}
	return nil
}

func (p *Program) Languages() LanguageSet {
	return LanguageSet(p.LanguagesAvailable)
}

// HasPoster reports whether a POSTER asset exists for exactly this language and variant.
func (p *Program) HasPoster(lang LanguageCode, variant AssetVariant) bool {
	for _, a := range p.Assets {
		if a.AssetType == AssetPoster && a.Variant == variant && a.Language == lang {
			return true
		}
	}
	return false
}

type Term struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID   uuid.UUID `gorm:"type:uuid;column:program_id;not null;uniqueIndex:idx_term_program_number,priority:1" json:"program_id"`
	TermNumber  int       `gorm:"column:term_number;not null;uniqueIndex:idx_term_program_number,priority:2" json:"term_number"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Lessons     []Lesson  `gorm:"foreignKey:TermID" json:"lessons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Term) TableName() string { return "term" }

func (t *Term) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Topic struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
