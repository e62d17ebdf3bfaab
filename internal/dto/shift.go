package dto

// CreateShiftRequest 创建班次请求
type CreateShiftRequest struct {
	JobID     string `json:"job_id"     binding:"required,uuid"`
	ShiftDate string `json:"shift_date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required"` // RFC3339
	EndTime   string `json:"end_time"   binding:"required"` // RFC3339
	Location  string `json:"location"   binding:"omitempty,max=500"`

	RequiredCrewChiefs   int `json:"required_crew_chiefs"    binding:"omitempty,min=0"`
	RequiredStagehands   int `json:"required_stagehands"     binding:"omitempty,min=0"`
	RequiredForkOps      int `json:"required_fork_ops"       binding:"omitempty,min=0"`
	RequiredReachForkOps int `json:"required_reach_fork_ops" binding:"omitempty,min=0"`
	RequiredRiggers      int `json:"required_riggers"        binding:"omitempty,min=0"`
	RequiredGeneralLabor int `json:"required_general_labor"  binding:"omitempty,min=0"`
}

// AssignWorkerRequest 派工请求
type AssignWorkerRequest struct {
	UserID   string `json:"user_id"   binding:"required,uuid"`
	RoleCode string `json:"role_code" binding:"required,min=2,max=4"`
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ID          string               `json:"id"`
	JobID       string               `json:"job_id"`
	ShiftDate   string               `json:"shift_date"`
	StartTime   string               `json:"start_time"`
	EndTime     string               `json:"end_time"`
	Status      string               `json:"status"`
	Location    string               `json:"location,omitempty"`
	Required    map[string]int       `json:"required"` // 工种代码 → 需求人数
	Assignments []AssignmentResponse `json:"assignments,omitempty"`
}

// AssignmentResponse 派工记录响应
type AssignmentResponse struct {
	ID          string              `json:"id"`
	ShiftID     string              `json:"shift_id"`
	UserID      string              `json:"user_id"`
	UserName    string              `json:"user_name,omitempty"`
	RoleCode    string              `json:"role_code"`
	Status      string              `json:"status"`
	TimeEntries []TimeEntryResponse `json:"time_entries,omitempty"`
	Hours       *HoursBreakdown     `json:"hours,omitempty"`
}

// TimeEntryResponse 打卡条目响应
type TimeEntryResponse struct {
	ID          string  `json:"id"`
	EntryNumber int     `json:"entry_number"`
	ClockIn     string  `json:"clock_in"`
	ClockOut    *string `json:"clock_out,omitempty"`
}

// HoursBreakdown 工时拆分（单位：小时，保留两位小数）
type HoursBreakdown struct {
	Total    float64 `json:"total"`
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
}

// ── 配齐率 ──

// RoleFulfillment 单工种配齐率
type RoleFulfillment struct {
	RoleCode string  `json:"role_code"`
	Required int     `json:"required"`
	Assigned int     `json:"assigned"`
	Ratio    float64 `json:"ratio"`
	Band     string  `json:"band"` // critical | low | good | full | overstaffed
}

// ShiftFulfillmentResponse 班次配齐率响应
type ShiftFulfillmentResponse struct {
	ShiftID   string            `json:"shift_id"`
	ByRole    []RoleFulfillment `json:"by_role"`
	Aggregate RoleFulfillment   `json:"aggregate"`
	Cached    bool              `json:"cached,omitempty"` // 命中读侧缓存时为 true
}

// ── 批量出勤操作 ──

// BulkAttendanceItem 批量操作单条结果
type BulkAttendanceItem struct {
	AssignmentID string `json:"assignment_id"`
	UserName     string `json:"user_name,omitempty"`
	Status       string `json:"status"`          // 操作后的出勤状态
	Error        string `json:"error,omitempty"` // 该条失败原因；成功为空
}

// BulkAttendanceResponse 批量出勤操作结果
// 部分失败是预期内行为：失败项逐条列出，绝不静默吞掉
type BulkAttendanceResponse struct {
	Affected int                  `json:"affected"`
	Skipped  int                  `json:"skipped"`
	Failed   int                  `json:"failed"`
	Items    []BulkAttendanceItem `json:"items"`
}
