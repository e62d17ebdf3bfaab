package repository

import (
	"context"

	"gorm.io/gorm"

	"crewdesk/internal/model"
)

// WorkerRoleRepository 工种数据访问接口
type WorkerRoleRepository interface {
	Create(ctx context.Context, role *model.WorkerRole) error
	GetByCode(ctx context.Context, code string) (*model.WorkerRole, error)
	List(ctx context.Context) ([]model.WorkerRole, error)
}

type workerRoleRepo struct {
	db *gorm.DB
}

// NewWorkerRoleRepo 创建 WorkerRoleRepository 实例
func NewWorkerRoleRepo(db *gorm.DB) WorkerRoleRepository {
	return &workerRoleRepo{db: db}
}

func (r *workerRoleRepo) Create(ctx context.Context, role *model.WorkerRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *workerRoleRepo) GetByCode(ctx context.Context, code string) (*model.WorkerRole, error) {
	var role model.WorkerRole
	err := r.db.WithContext(ctx).
		Where("role_code = ?", code).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *workerRoleRepo) List(ctx context.Context) ([]model.WorkerRole, error) {
	var roles []model.WorkerRole
	err := r.db.WithContext(ctx).
		Order("is_built_in DESC, role_code ASC").
		Find(&roles).Error
	return roles, err
}
