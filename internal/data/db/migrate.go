package db

import (
	"fmt"

	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Models lists every table owned by the catalog, in dependency order.
func Models() []any {
	return []any{
		&catalog.Topic{},
		&catalog.Program{},
		&catalog.ProgramAsset{},
		&catalog.Term{},
		&catalog.Lesson{},
		&catalog.LessonAsset{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return EnsureCatalogIndexes(db)
}

func EnsureCatalogIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	// Partial index backing the scheduler claim.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_lesson_due
		ON lesson (publish_at)
		WHERE status = 'SCHEDULED';
	`).Error; err != nil {
		return fmt.Errorf("create idx_lesson_due: %w", err)
	}
	// Catalog keyset ordering.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_program_catalog_order
		ON program (published_at DESC, id DESC)
		WHERE status = 'PUBLISHED';
	`).Error; err != nil {
		return fmt.Errorf("create idx_program_catalog_order: %w", err)
	}
	return nil
}
