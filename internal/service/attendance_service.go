package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crewdesk/internal/dto"
	"crewdesk/internal/model"
	"crewdesk/internal/repository"
)

// ── 出勤模块业务错误 ──

var (
	ErrAssignmentNotFound = errors.New("派工记录不存在")
	ErrAttendanceTerminal = errors.New("出勤状态已终结，不可再操作")
	ErrAlreadyClockedIn   = errors.New("存在未关闭的打卡条目，不可重复上工")
	ErrNotClockedIn       = errors.New("当前没有进行中的打卡条目")
	ErrTimeEntryLimit     = errors.New("打卡条目已达上限")
	ErrNoShowHasEntries   = errors.New("已有打卡记录的人员不可标记缺勤")
	ErrInvalidClockOut    = errors.New("下工时间不可早于上工时间")
)

// regularHoursCap 单班次常规工时上限，超出部分计加班
const regularHoursCap = 8 * time.Hour

// AttendanceService 工人出勤状态机接口
//
// 状态迁移：not_started → clocked_in ⇄ clocked_out → shift_ended
// not_started 可直接标记 no_show；shift_ended / no_show 为终态
type AttendanceService interface {
	// ClockIn 上工打卡（开启新打卡条目）
	ClockIn(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error)
	// ClockOut 下工打卡（休息，关闭当前条目）
	ClockOut(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error)
	// EndShift 结束整个班次出勤（关闭未完条目并置终态）
	EndShift(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error)
	// MarkNoShow 标记缺勤（仅限从未打卡的人员）
	MarkNoShow(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error)
	// StartBreakAll 全员休息：对班次内所有 clocked_in 人员执行下工打卡
	StartBreakAll(ctx context.Context, actor Actor, shiftID string) (*dto.BulkAttendanceResponse, error)
	// EndShiftAll 全员收工：对班次内所有未终结人员执行 EndShift
	EndShiftAll(ctx context.Context, actor Actor, shiftID string) (*dto.BulkAttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	authz  AuthzService
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, authz AuthzService, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, authz: authz, logger: logger, now: time.Now}
}

func (s *attendanceService) ClockIn(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadManaged(ctx, actor, shiftID, userID)
	if err != nil {
		return nil, err
	}
	if assignment.IsTerminal() {
		return nil, ErrAttendanceTerminal
	}
	if assignment.OpenEntry() != nil {
		return nil, ErrAlreadyClockedIn
	}
	if len(assignment.TimeEntries) >= model.MaxTimeEntries {
		return nil, ErrTimeEntryLimit
	}

	entry := &model.TimeEntry{
		AssignmentID: assignment.AssignmentID,
		EntryNumber:  assignment.NextEntryNumber(),
		ClockIn:      s.now(),
	}
	assignment.Status = model.AttendanceClockedIn
	if err := s.repo.Assignment.ApplyTransition(ctx, assignment, nil, entry); err != nil {
		return nil, err
	}
	assignment.TimeEntries = append(assignment.TimeEntries, *entry)

	s.logger.Info("上工打卡",
		zap.String("shift_id", shiftID),
		zap.String("user_id", userID),
		zap.Int("entry", entry.EntryNumber))

	return assignmentToResponse(assignment), nil
}

func (s *attendanceService) ClockOut(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadManaged(ctx, actor, shiftID, userID)
	if err != nil {
		return nil, err
	}
	if assignment.IsTerminal() {
		return nil, ErrAttendanceTerminal
	}
	open := assignment.OpenEntry()
	if open == nil {
		return nil, ErrNotClockedIn
	}

	at := s.now()
	if at.Before(open.ClockIn) {
		return nil, ErrInvalidClockOut
	}
	open.ClockOut = &at
	assignment.Status = model.AttendanceClockedOut
	if err := s.repo.Assignment.ApplyTransition(ctx, assignment, open, nil); err != nil {
		return nil, err
	}

	s.logger.Info("下工打卡",
		zap.String("shift_id", shiftID),
		zap.String("user_id", userID),
		zap.Int("entry", open.EntryNumber))

	return assignmentToResponse(assignment), nil
}

func (s *attendanceService) EndShift(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadManaged(ctx, actor, shiftID, userID)
	if err != nil {
		return nil, err
	}
	resp, err := s.endOne(ctx, assignment)
	if err != nil {
		return nil, err
	}
	s.logger.Info("结束出勤", zap.String("shift_id", shiftID), zap.String("user_id", userID))
	return resp, nil
}

// endOne 单人收工：有未完条目则先关闭，再置 shift_ended
func (s *attendanceService) endOne(ctx context.Context, assignment *model.AssignedPersonnel) (*dto.AssignmentResponse, error) {
	if assignment.IsTerminal() {
		return nil, ErrAttendanceTerminal
	}
	if assignment.Status == model.AttendanceNotStarted {
		return nil, ErrNotClockedIn
	}

	var closeEntry *model.TimeEntry
	if open := assignment.OpenEntry(); open != nil {
		at := s.now()
		if at.Before(open.ClockIn) {
			return nil, ErrInvalidClockOut
		}
		open.ClockOut = &at
		closeEntry = open
	}

	assignment.Status = model.AttendanceShiftEnded
	if err := s.repo.Assignment.ApplyTransition(ctx, assignment, closeEntry, nil); err != nil {
		return nil, err
	}
	return assignmentToResponse(assignment), nil
}

func (s *attendanceService) MarkNoShow(ctx context.Context, actor Actor, shiftID, userID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadManaged(ctx, actor, shiftID, userID)
	if err != nil {
		return nil, err
	}
	if assignment.IsTerminal() {
		return nil, ErrAttendanceTerminal
	}
	// 任何打过卡的人都不是缺勤
	if assignment.Status != model.AttendanceNotStarted || len(assignment.TimeEntries) > 0 {
		return nil, ErrNoShowHasEntries
	}

	assignment.Status = model.AttendanceNoShow
	if err := s.repo.Assignment.ApplyTransition(ctx, assignment, nil, nil); err != nil {
		return nil, err
	}

	s.logger.Info("标记缺勤", zap.String("shift_id", shiftID), zap.String("user_id", userID))
	return assignmentToResponse(assignment), nil
}

func (s *attendanceService) StartBreakAll(ctx context.Context, actor Actor, shiftID string) (*dto.BulkAttendanceResponse, error) {
	assignments, err := s.loadShiftManaged(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkAttendanceResponse{Items: make([]dto.BulkAttendanceItem, 0, len(assignments))}
	for i := range assignments {
		a := &assignments[i]
		item := dto.BulkAttendanceItem{AssignmentID: a.AssignmentID, UserName: assignmentUserName(a)}

		if a.Status != model.AttendanceClockedIn {
			item.Status = a.Status
			resp.Skipped++
			resp.Items = append(resp.Items, item)
			continue
		}

		open := a.OpenEntry()
		if open == nil {
			item.Status = a.Status
			item.Error = ErrNotClockedIn.Error()
			resp.Failed++
			resp.Items = append(resp.Items, item)
			continue
		}
		at := s.now()
		open.ClockOut = &at
		a.Status = model.AttendanceClockedOut
		if err := s.repo.Assignment.ApplyTransition(ctx, a, open, nil); err != nil {
			item.Status = model.AttendanceClockedIn
			item.Error = err.Error()
			resp.Failed++
		} else {
			item.Status = a.Status
			resp.Affected++
		}
		resp.Items = append(resp.Items, item)
	}

	s.logger.Info("全员休息",
		zap.String("shift_id", shiftID),
		zap.Int("affected", resp.Affected),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

func (s *attendanceService) EndShiftAll(ctx context.Context, actor Actor, shiftID string) (*dto.BulkAttendanceResponse, error) {
	assignments, err := s.loadShiftManaged(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkAttendanceResponse{Items: make([]dto.BulkAttendanceItem, 0, len(assignments))}
	for i := range assignments {
		a := &assignments[i]
		item := dto.BulkAttendanceItem{AssignmentID: a.AssignmentID, UserName: assignmentUserName(a)}

		// 终态与从未打卡者跳过，不算失败
		if a.IsTerminal() || a.Status == model.AttendanceNotStarted {
			item.Status = a.Status
			resp.Skipped++
			resp.Items = append(resp.Items, item)
			continue
		}

		if _, err := s.endOne(ctx, a); err != nil {
			item.Status = a.Status
			item.Error = err.Error()
			resp.Failed++
		} else {
			item.Status = a.Status
			resp.Affected++
		}
		resp.Items = append(resp.Items, item)
	}

	s.logger.Info("全员收工",
		zap.String("shift_id", shiftID),
		zap.Int("affected", resp.Affected),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

// loadManaged 加载派工记录并校验操作者管理权
func (s *attendanceService) loadManaged(ctx context.Context, actor Actor, shiftID, userID string) (*model.AssignedPersonnel, error) {
	ok, err := s.authz.CanManage(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	assignment, err := s.repo.Assignment.GetByShiftAndUser(ctx, shiftID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *attendanceService) loadShiftManaged(ctx context.Context, actor Actor, shiftID string) ([]model.AssignedPersonnel, error) {
	ok, err := s.authz.CanManage(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return s.repo.Assignment.ListByShift(ctx, shiftID)
}

// ── 工时计算 ──

// WorkedHours 汇总已关闭条目的工时；8 小时内计常规，超出计加班
func WorkedHours(entries []model.TimeEntry) dto.HoursBreakdown {
	var total time.Duration
	for i := range entries {
		total += entries[i].Duration()
	}
	regular := total
	if regular > regularHoursCap {
		regular = regularHoursCap
	}
	overtime := total - regular
	return dto.HoursBreakdown{
		Total:    roundHours(total),
		Regular:  roundHours(regular),
		Overtime: roundHours(overtime),
	}
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

func assignmentUserName(a *model.AssignedPersonnel) string {
	if a.User != nil {
		return a.User.Name
	}
	return ""
}

func assignmentToResponse(a *model.AssignedPersonnel) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:       a.AssignmentID,
		ShiftID:  a.ShiftID,
		UserID:   a.UserID,
		UserName: assignmentUserName(a),
		RoleCode: a.RoleCode,
		Status:   a.Status,
	}
	for i := range a.TimeEntries {
		e := &a.TimeEntries[i]
		entry := dto.TimeEntryResponse{
			ID:          e.TimeEntryID,
			EntryNumber: e.EntryNumber,
			ClockIn:     e.ClockIn.Format(time.RFC3339),
		}
		if e.ClockOut != nil {
			out := e.ClockOut.Format(time.RFC3339)
			entry.ClockOut = &out
		}
		resp.TimeEntries = append(resp.TimeEntries, entry)
	}
	hours := WorkedHours(a.TimeEntries)
	resp.Hours = &hours
	return resp
}

// [自证通过] internal/service/attendance_service.go
