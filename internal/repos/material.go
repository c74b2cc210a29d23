package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/types"
)

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, materials []*types.Material) ([]*types.Material, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, materialIDs []uuid.UUID) ([]*types.Material, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Material, error)
	UpdateEditedContent(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, edited datatypes.JSON) error
	UpdateTableOfContents(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, toc datatypes.JSON) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, materialIDs []uuid.UUID) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	repoLog := baseLog.With("repo", "MaterialRepo")
	return &materialRepo{db: db, log: repoLog}
}

func (r *materialRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *materialRepo) Create(ctx context.Context, tx *gorm.DB, materials []*types.Material) ([]*types.Material, error) {
	if len(materials) == 0 {
		return []*types.Material{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *materialRepo) GetByIDs(ctx context.Context, tx *gorm.DB, materialIDs []uuid.UUID) ([]*types.Material, error) {
	var materials []*types.Material
	if len(materialIDs) == 0 {
		return materials, nil
	}
	if err := r.conn(tx).WithContext(ctx).Where("id IN ?", materialIDs).Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *materialRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Material, error) {
	var materials []*types.Material
	if len(userIDs) == 0 {
		return materials, nil
	}
	if err := r.conn(tx).WithContext(ctx).Where("user_id IN ?", userIDs).Order("updated_at DESC").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// UpdateEditedContent overwrites only the edited representation; the
// stored generation result is left untouched.
func (r *materialRepo) UpdateEditedContent(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, edited datatypes.JSON) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Material{}).
		Where("id = ?", materialID).
		Update("edited_content", edited).Error
}

func (r *materialRepo) UpdateTableOfContents(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, toc datatypes.JSON) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Material{}).
		Where("id = ?", materialID).
		Update("table_of_contents", toc).Error
}

func (r *materialRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, materialIDs []uuid.UUID) error {
	if len(materialIDs) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Unscoped().Where("id IN ?", materialIDs).Delete(&types.Material{}).Error
}
