package dto

// CreateJobRequest 创建用工项目请求
type CreateJobRequest struct {
	CompanyID string `json:"company_id" binding:"required,uuid"`
	Name      string `json:"name"       binding:"required,max=200"`
	Location  string `json:"location"   binding:"omitempty,max=500"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
}

// UpdateJobRequest 更新用工项目请求
type UpdateJobRequest struct {
	Name     *string `json:"name"     binding:"omitempty,max=200"`
	Status   *string `json:"status"   binding:"omitempty,oneof=pending active completed cancelled"`
	Location *string `json:"location" binding:"omitempty,max=500"`
}

// JobResponse 用工项目响应
type JobResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Location  string        `json:"location,omitempty"`
	StartDate *string       `json:"start_date,omitempty"`
	EndDate   *string       `json:"end_date,omitempty"`
	Company   *CompanyBrief `json:"company,omitempty"`
	CreatedAt string        `json:"created_at"`
}

// JobListRequest 用工项目列表请求
type JobListRequest struct {
	PaginationRequest
	CompanyID string `form:"company_id" binding:"required,uuid"`
}

// ImportShiftCalendarResponse ICS 班次导入结果
type ImportShiftCalendarResponse struct {
	TotalEvents   int      `json:"total_events"`
	ImportedCount int      `json:"imported_count"`
	SkippedCount  int      `json:"skipped_count"`
	Warnings      []string `json:"warnings,omitempty"`
}
