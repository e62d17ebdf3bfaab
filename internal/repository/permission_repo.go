package repository

import (
	"context"

	"gorm.io/gorm"

	"crewdesk/internal/model"
)

// PermissionRepository 工头授权数据访问接口
type PermissionRepository interface {
	Create(ctx context.Context, permission *model.CrewChiefPermission) error
	GetByID(ctx context.Context, id string) (*model.CrewChiefPermission, error)
	ListByUser(ctx context.Context, userID string) ([]model.CrewChiefPermission, error)
	Exists(ctx context.Context, userID, scopeType, targetID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type permissionRepo struct {
	db *gorm.DB
}

// NewPermissionRepo 创建 PermissionRepository 实例
func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Create(ctx context.Context, permission *model.CrewChiefPermission) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

func (r *permissionRepo) GetByID(ctx context.Context, id string) (*model.CrewChiefPermission, error) {
	var permission model.CrewChiefPermission
	err := r.db.WithContext(ctx).
		Where("permission_id = ?", id).
		First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *permissionRepo) ListByUser(ctx context.Context, userID string) ([]model.CrewChiefPermission, error) {
	var permissions []model.CrewChiefPermission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&permissions).Error
	return permissions, err
}

func (r *permissionRepo) Exists(ctx context.Context, userID, scopeType, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CrewChiefPermission{}).
		Where("user_id = ? AND scope_type = ? AND target_id = ?", userID, scopeType, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *permissionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("permission_id = ?", id).
		Delete(&model.CrewChiefPermission{}).Error
}
