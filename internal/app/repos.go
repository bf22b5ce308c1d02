package app

import (
	"gorm.io/gorm"

	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type Repos struct {
	Topics   catalogrepo.TopicRepo
	Programs catalogrepo.ProgramRepo
	Terms    catalogrepo.TermRepo
	Lessons  catalogrepo.LessonRepo
	Assets   catalogrepo.AssetRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Topics:   catalogrepo.NewTopicRepo(db, log),
		Programs: catalogrepo.NewProgramRepo(db, log),
		Terms:    catalogrepo.NewTermRepo(db, log),
		Lessons:  catalogrepo.NewLessonRepo(db, log),
		Assets:   catalogrepo.NewAssetRepo(db, log),
	}
}
