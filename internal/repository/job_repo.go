package repository

import (
	"context"

	"gorm.io/gorm"

	"crewdesk/internal/model"
)

// JobRepository 用工项目数据访问接口
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListByCompany(ctx context.Context, companyID string, offset, limit int) ([]model.Job, int64, error)
	Update(ctx context.Context, job *model.Job) error
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("job_id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) ListByCompany(ctx context.Context, companyID string, offset, limit int) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Job{}).
		Where("company_id = ?", companyID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *jobRepo) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}
