package dto

// CreateCompanyRequest 创建客户公司请求
type CreateCompanyRequest struct {
	Name         string `json:"name"          binding:"required,max=200"`
	ContactName  string `json:"contact_name"  binding:"omitempty,max=100"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Address      string `json:"address"       binding:"omitempty,max=500"`
}

// UpdateCompanyRequest 更新客户公司请求
type UpdateCompanyRequest struct {
	Name         *string `json:"name"          binding:"omitempty,max=200"`
	ContactName  *string `json:"contact_name"  binding:"omitempty,max=100"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	Address      *string `json:"address"       binding:"omitempty,max=500"`
}

// CompanyResponse 客户公司响应
type CompanyResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	Address      string `json:"address,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// CompanyListRequest 客户公司列表请求
type CompanyListRequest struct {
	PaginationRequest
}
