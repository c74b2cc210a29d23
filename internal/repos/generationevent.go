package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/types"
)

// GenerationEventRepo is append-and-read only. There is deliberately no
// update or delete: usage history is immutable.
type GenerationEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.GenerationEvent) ([]*types.GenerationEvent, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.GenerationEvent, error)
	GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.GenerationEvent, error)
}

type generationEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationEventRepo(db *gorm.DB, baseLog *logger.Logger) GenerationEventRepo {
	repoLog := baseLog.With("repo", "GenerationEventRepo")
	return &generationEventRepo{db: db, log: repoLog}
}

func (r *generationEventRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *generationEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.GenerationEvent) ([]*types.GenerationEvent, error) {
	if len(events) == 0 {
		return []*types.GenerationEvent{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *generationEventRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.GenerationEvent, error) {
	var events []*types.GenerationEvent
	if len(userIDs) == 0 {
		return events, nil
	}
	if err := r.conn(tx).WithContext(ctx).Where("user_id IN ?", userIDs).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *generationEventRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.GenerationEvent, error) {
	var events []*types.GenerationEvent
	q := r.conn(tx).WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
