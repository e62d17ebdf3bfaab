package dto

// RegisterRoleRequest 注册自定义工种请求
// 工种代码格式在 Service 层校验（2-4 位大写字母）
type RegisterRoleRequest struct {
	Code       string `json:"code"        binding:"required,min=2,max=4"`
	Name       string `json:"name"        binding:"required,max=100"`
	BadgeColor string `json:"badge_color" binding:"omitempty,max=20"`
}

// RoleDefinitionResponse 工种定义响应
type RoleDefinitionResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	BadgeColor string `json:"badge_color,omitempty"`
	IsBuiltIn  bool   `json:"is_built_in"`
}
