package dto

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Name      string  `json:"name"       binding:"required,max=100"`
	Email     string  `json:"email"      binding:"required,email"`
	Phone     string  `json:"phone"      binding:"omitempty,max=20"`
	Role      string  `json:"role"       binding:"required,oneof=admin staff crew_chief employee company_user"`
	CompanyID *string `json:"company_id" binding:"omitempty,uuid"`
	Password  string  `json:"password"   binding:"required,min=8,max=72"`
}

// UpdateUserRequest 更新用户请求（仅提供的字段会被更新）
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	Phone    *string `json:"phone"     binding:"omitempty,max=20"`
	IsActive *bool   `json:"is_active"`
}

// AssignRoleRequest 调整系统角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin staff crew_chief employee company_user"`
}

// UserListRequest 用户列表请求
type UserListRequest struct {
	PaginationRequest
}
