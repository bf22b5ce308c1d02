package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, topic *types.Topic) error
	List(dbc dbctx.Context) ([]*types.Topic, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error)
	GetByName(dbc dbctx.Context, name string) (*types.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{
		db:  db,
		log: baseLog.With("repo", "TopicRepo"),
	}
}

func (r *topicRepo) Create(dbc dbctx.Context, topic *types.Topic) error {
	topic.Name = strings.TrimSpace(topic.Name)
	return dbc.DB(r.db).Create(topic).Error
}

func (r *topicRepo) List(dbc dbctx.Context) ([]*types.Topic, error) {
	var out []*types.Topic
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error) {
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByName(dbc dbctx.Context, name string) (*types.Topic, error) {
	var topic types.Topic
	err := dbc.DB(r.db).
		Where("name = ?", strings.TrimSpace(name)).
		Limit(1).
		Find(&topic).Error
	if err != nil {
		return nil, err
	}
	if topic.ID == uuid.Nil {
		return nil, nil
	}
	return &topic, nil
}
