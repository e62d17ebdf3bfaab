package dto

// GrantPermissionRequest 授予工头权限请求
type GrantPermissionRequest struct {
	UserID    string `json:"user_id"    binding:"required,uuid"`
	ScopeType string `json:"scope_type" binding:"required,oneof=client job shift"`
	TargetID  string `json:"target_id"  binding:"required,uuid"`
}

// PermissionResponse 工头权限响应
type PermissionResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ScopeType string `json:"scope_type"`
	TargetID  string `json:"target_id"`
	CreatedAt string `json:"created_at"`
}
