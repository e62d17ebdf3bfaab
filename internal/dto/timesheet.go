package dto

// ApproveTimesheetRequest 审批（签名）请求
type ApproveTimesheetRequest struct {
	Signature string `json:"signature" binding:"required"` // base64 签名图像或签名串
}

// RejectTimesheetRequest 驳回请求
type RejectTimesheetRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// UnlockTimesheetRequest 解锁请求
type UnlockTimesheetRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TimesheetResponse 工时单响应
type TimesheetResponse struct {
	ID                  string  `json:"id"`
	ShiftID             string  `json:"shift_id"`
	Status              string  `json:"status"`
	HasCompanySignature bool    `json:"has_company_signature"`
	HasManagerSignature bool    `json:"has_manager_signature"`
	CompanySignedAt     *string `json:"company_signed_at,omitempty"`
	ManagerSignedAt     *string `json:"manager_signed_at,omitempty"`
	UnsignedDocURL      *string `json:"unsigned_doc_url,omitempty"`
	SignedDocURL        *string `json:"signed_doc_url,omitempty"`
	SubmittedAt         *string `json:"submitted_at,omitempty"`
	RejectionReason     string  `json:"rejection_reason,omitempty"`
	// DocumentRefreshDue 提交后置位，提示文档协作方重新生成未签名快照
	DocumentRefreshDue bool `json:"document_refresh_due,omitempty"`
}

// TimesheetDetailResponse 工时单详情（含出勤只读快照，供外部协作方消费）
type TimesheetDetailResponse struct {
	Timesheet   TimesheetResponse    `json:"timesheet"`
	Assignments []AssignmentResponse `json:"assignments"`
	ShiftTotals HoursBreakdown       `json:"shift_totals"`
}

// TimesheetAuditLogResponse 审批流水响应
type TimesheetAuditLogResponse struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Reason     string `json:"reason,omitempty"`
	ActorID    string `json:"actor_id"`
	CreatedAt  string `json:"created_at"`
}

// TimesheetAuditLogListRequest 审批流水列表请求
type TimesheetAuditLogListRequest struct {
	PaginationRequest
}
