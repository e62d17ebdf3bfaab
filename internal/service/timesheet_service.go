package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crewdesk/internal/dto"
	"crewdesk/internal/model"
	"crewdesk/internal/repository"
)

// ── 工时单模块业务错误 ──

var (
	ErrTimesheetNotFound        = errors.New("工时单不存在")
	ErrTimesheetInvalidState    = errors.New("当前状态不允许该操作")
	ErrTimesheetNoClosedEntries = errors.New("班次内没有任何已关闭的打卡条目，不可提交")
	ErrCompanySignatureMissing  = errors.New("公司签名缺失，不可进入经理审批")
)

// 审批流水动作
const (
	auditActionSubmit         = "submit"
	auditActionApproveCompany = "approve_company"
	auditActionApproveManager = "approve_manager"
	auditActionReject         = "reject"
	auditActionUnlock         = "unlock"
)

// TimesheetService 工时单审批状态机接口
//
// 状态迁移：
//
//	draft → pending_company_approval → pending_manager_approval → completed
//	pending_* → rejected → pending_company_approval（重新提交）
//	任意状态 --unlock--> draft（管理员，原子清场）
type TimesheetService interface {
	// GetOrCreateForShift 获取班次工时单，不存在则创建草稿
	GetOrCreateForShift(ctx context.Context, actor Actor, shiftID string) (*dto.TimesheetResponse, error)
	// Get 按 ID 获取工时单
	Get(ctx context.Context, actor Actor, timesheetID string) (*dto.TimesheetResponse, error)
	// Detail 工时单详情（含出勤快照与工时汇总）
	Detail(ctx context.Context, actor Actor, timesheetID string) (*dto.TimesheetDetailResponse, error)
	// Submit 提交审批（draft / rejected → pending_company_approval）
	Submit(ctx context.Context, actor Actor, timesheetID string) (*dto.TimesheetResponse, error)
	// ApproveAsCompany 公司方签名审批
	ApproveAsCompany(ctx context.Context, actor Actor, timesheetID string, req *dto.ApproveTimesheetRequest) (*dto.TimesheetResponse, error)
	// ApproveAsManager 经理签名审批（终审）
	ApproveAsManager(ctx context.Context, actor Actor, timesheetID string, req *dto.ApproveTimesheetRequest) (*dto.TimesheetResponse, error)
	// Reject 驳回（须附原因，签名保留）
	Reject(ctx context.Context, actor Actor, timesheetID string, req *dto.RejectTimesheetRequest) (*dto.TimesheetResponse, error)
	// Unlock 管理员解锁：回到草稿并原子清除签名与文档引用
	Unlock(ctx context.Context, actor Actor, timesheetID string, req *dto.UnlockTimesheetRequest) (*dto.TimesheetResponse, error)
	// ListAuditLogs 审批流水
	ListAuditLogs(ctx context.Context, timesheetID string, req *dto.TimesheetAuditLogListRequest) ([]dto.TimesheetAuditLogResponse, int64, error)
}

type timesheetService struct {
	repo   *repository.Repository
	authz  AuthzService
	logger *zap.Logger
	now    func() time.Time
}

// NewTimesheetService 创建 TimesheetService 实例
func NewTimesheetService(repo *repository.Repository, authz AuthzService, logger *zap.Logger) TimesheetService {
	return &timesheetService{repo: repo, authz: authz, logger: logger, now: time.Now}
}

func (s *timesheetService) GetOrCreateForShift(ctx context.Context, actor Actor, shiftID string) (*dto.TimesheetResponse, error) {
	if err := s.requireManage(ctx, actor, shiftID); err != nil {
		return nil, err
	}

	timesheet, err := s.repo.Timesheet.GetByShift(ctx, shiftID)
	if err == nil {
		return timesheetToResponse(timesheet), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	timesheet = &model.Timesheet{
		ShiftID: shiftID,
		Status:  model.TimesheetDraft,
	}
	if err := s.repo.Timesheet.Create(ctx, timesheet); err != nil {
		// 并发创建时撞 shift_id 唯一约束，回读既有记录
		if existing, getErr := s.repo.Timesheet.GetByShift(ctx, shiftID); getErr == nil {
			return timesheetToResponse(existing), nil
		}
		return nil, err
	}

	s.logger.Info("创建工时单草稿", zap.String("shift_id", shiftID), zap.String("timesheet_id", timesheet.TimesheetID))
	return timesheetToResponse(timesheet), nil
}

func (s *timesheetService) Get(ctx context.Context, actor Actor, timesheetID string) (*dto.TimesheetResponse, error) {
	timesheet, err := s.loadVisible(ctx, actor, timesheetID)
	if err != nil {
		return nil, err
	}
	return timesheetToResponse(timesheet), nil
}

func (s *timesheetService) Detail(ctx context.Context, actor Actor, timesheetID string) (*dto.TimesheetDetailResponse, error) {
	timesheet, err := s.loadVisible(ctx, actor, timesheetID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByShift(ctx, timesheet.ShiftID)
	if err != nil {
		return nil, err
	}

	detail := &dto.TimesheetDetailResponse{Timesheet: *timesheetToResponse(timesheet)}
	// 常规/加班按人拆分后再汇总，直接拼条目会把 8 小时上限算到整个班次头上
	for i := range assignments {
		detail.Assignments = append(detail.Assignments, *assignmentToResponse(&assignments[i]))
		hours := WorkedHours(assignments[i].TimeEntries)
		detail.ShiftTotals.Total += hours.Total
		detail.ShiftTotals.Regular += hours.Regular
		detail.ShiftTotals.Overtime += hours.Overtime
	}
	return detail, nil
}

func (s *timesheetService) Submit(ctx context.Context, actor Actor, timesheetID string) (*dto.TimesheetResponse, error) {
	timesheet, err := s.load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, actor, timesheet.ShiftID); err != nil {
		return nil, err
	}

	// 草稿与被驳回的工时单都可提交；驳回后重提直接回公司审批队列
	if timesheet.Status != model.TimesheetDraft && timesheet.Status != model.TimesheetRejected {
		return nil, ErrTimesheetInvalidState
	}

	// 至少存在一条已关闭的打卡条目，空白工时单不进审批
	assignments, err := s.repo.Assignment.ListByShift(ctx, timesheet.ShiftID)
	if err != nil {
		return nil, err
	}
	hasClosed := false
	for i := range assignments {
		for j := range assignments[i].TimeEntries {
			if assignments[i].TimeEntries[j].ClockOut != nil {
				hasClosed = true
				break
			}
		}
	}
	if !hasClosed {
		return nil, ErrTimesheetNoClosedEntries
	}

	from := timesheet.Status
	at := s.now()
	timesheet.Status = model.TimesheetPendingCompanyApproval
	timesheet.SubmittedAt = &at
	timesheet.RejectionReason = ""
	// 出勤数据定稿，旧文档快照作废
	timesheet.UnsignedDocURL = nil
	timesheet.SignedDocURL = nil

	if err := s.repo.Timesheet.Update(ctx, timesheet); err != nil {
		return nil, err
	}
	s.audit(ctx, timesheet, auditActionSubmit, from, "", actor.UserID)

	s.logger.Info("提交工时单",
		zap.String("timesheet_id", timesheetID),
		zap.String("from", from))

	resp := timesheetToResponse(timesheet)
	resp.DocumentRefreshDue = true
	return resp, nil
}

func (s *timesheetService) ApproveAsCompany(ctx context.Context, actor Actor, timesheetID string, req *dto.ApproveTimesheetRequest) (*dto.TimesheetResponse, error) {
	timesheet, err := s.load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if timesheet.Status != model.TimesheetPendingCompanyApproval {
		return nil, ErrTimesheetInvalidState
	}
	if err := s.requireCompanyApprover(ctx, actor, timesheet); err != nil {
		return nil, err
	}

	from := timesheet.Status
	at := s.now()
	timesheet.Status = model.TimesheetPendingManagerApproval
	timesheet.CompanySignature = &req.Signature
	timesheet.CompanySignedAt = &at

	if err := s.repo.Timesheet.Update(ctx, timesheet); err != nil {
		return nil, err
	}
	s.audit(ctx, timesheet, auditActionApproveCompany, from, "", actor.UserID)

	s.logger.Info("公司审批通过", zap.String("timesheet_id", timesheetID), zap.String("by", actor.UserID))
	return timesheetToResponse(timesheet), nil
}

func (s *timesheetService) ApproveAsManager(ctx context.Context, actor Actor, timesheetID string, req *dto.ApproveTimesheetRequest) (*dto.TimesheetResponse, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleStaff {
		return nil, ErrForbidden
	}

	timesheet, err := s.load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if timesheet.Status != model.TimesheetPendingManagerApproval {
		return nil, ErrTimesheetInvalidState
	}
	// completed 必须双签；公司签名缺失说明数据被破坏，拒绝终审
	if timesheet.CompanySignature == nil {
		return nil, ErrCompanySignatureMissing
	}

	from := timesheet.Status
	at := s.now()
	timesheet.Status = model.TimesheetCompleted
	timesheet.ManagerSignature = &req.Signature
	timesheet.ManagerSignedAt = &at

	if err := s.repo.Timesheet.Update(ctx, timesheet); err != nil {
		return nil, err
	}
	s.audit(ctx, timesheet, auditActionApproveManager, from, "", actor.UserID)

	s.logger.Info("经理终审通过", zap.String("timesheet_id", timesheetID), zap.String("by", actor.UserID))
	return timesheetToResponse(timesheet), nil
}

func (s *timesheetService) Reject(ctx context.Context, actor Actor, timesheetID string, req *dto.RejectTimesheetRequest) (*dto.TimesheetResponse, error) {
	timesheet, err := s.load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}

	// 只有处于待审阶段的工时单可被驳回，驳回权与当前阶段的审批权一致
	switch timesheet.Status {
	case model.TimesheetPendingCompanyApproval:
		if err := s.requireCompanyApprover(ctx, actor, timesheet); err != nil {
			return nil, err
		}
	case model.TimesheetPendingManagerApproval:
		if actor.Role != model.RoleAdmin && actor.Role != model.RoleStaff {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrTimesheetInvalidState
	}

	from := timesheet.Status
	timesheet.Status = model.TimesheetRejected
	timesheet.RejectionReason = req.Reason
	// 签名保留，供复核驳回前的审批轨迹

	if err := s.repo.Timesheet.Update(ctx, timesheet); err != nil {
		return nil, err
	}
	s.audit(ctx, timesheet, auditActionReject, from, req.Reason, actor.UserID)

	s.logger.Info("驳回工时单",
		zap.String("timesheet_id", timesheetID),
		zap.String("from", from),
		zap.String("reason", req.Reason))
	return timesheetToResponse(timesheet), nil
}

func (s *timesheetService) Unlock(ctx context.Context, actor Actor, timesheetID string, req *dto.UnlockTimesheetRequest) (*dto.TimesheetResponse, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleStaff {
		return nil, ErrForbidden
	}

	timesheet, err := s.load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if timesheet.Status == model.TimesheetDraft {
		return nil, ErrTimesheetInvalidState
	}

	from := timesheet.Status
	// 回草稿并清场：签名、签署时间、提交时间、文档引用、驳回原因
	// 单条 CAS 更新落库，观察不到只清一半的中间态
	timesheet.Status = model.TimesheetDraft
	timesheet.CompanySignature = nil
	timesheet.ManagerSignature = nil
	timesheet.CompanySignedAt = nil
	timesheet.ManagerSignedAt = nil
	timesheet.SubmittedAt = nil
	timesheet.UnsignedDocURL = nil
	timesheet.SignedDocURL = nil
	timesheet.RejectionReason = ""

	if err := s.repo.Timesheet.Update(ctx, timesheet); err != nil {
		return nil, err
	}
	s.audit(ctx, timesheet, auditActionUnlock, from, req.Reason, actor.UserID)

	s.logger.Warn("解锁工时单",
		zap.String("timesheet_id", timesheetID),
		zap.String("from", from),
		zap.String("by", actor.UserID),
		zap.String("reason", req.Reason))
	return timesheetToResponse(timesheet), nil
}

func (s *timesheetService) ListAuditLogs(ctx context.Context, timesheetID string, req *dto.TimesheetAuditLogListRequest) ([]dto.TimesheetAuditLogResponse, int64, error) {
	if _, err := s.load(ctx, timesheetID); err != nil {
		return nil, 0, err
	}
	logs, total, err := s.repo.Timesheet.ListAuditLogs(ctx, timesheetID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.TimesheetAuditLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.TimesheetAuditLogResponse{
			ID:         l.AuditLogID,
			Action:     l.Action,
			FromStatus: l.FromStatus,
			ToStatus:   l.ToStatus,
			Reason:     l.Reason,
			ActorID:    l.ActorID,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return result, total, nil
}

// ── 内部辅助 ──

func (s *timesheetService) load(ctx context.Context, timesheetID string) (*model.Timesheet, error) {
	timesheet, err := s.repo.Timesheet.GetByID(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet, nil
}

// loadVisible 读取工时单并校验读权限：
// 管理权、被派到班次、或客户公司本公司的联系人，任一满足即可读
func (s *timesheetService) loadVisible(ctx context.Context, actor Actor, timesheetID string) (*model.Timesheet, error) {
	timesheet, err := s.load(ctx, timesheetID)
	if err != nil {
		return nil, err
	}

	ok, err := s.authz.CanManage(ctx, actor, timesheet.ShiftID)
	if err != nil {
		return nil, err
	}
	if ok {
		return timesheet, nil
	}

	if actor.Role == model.RoleCompanyUser && actor.CompanyID != "" {
		companyID, err := s.shiftCompanyID(ctx, timesheet)
		if err != nil {
			return nil, err
		}
		if companyID == actor.CompanyID {
			return timesheet, nil
		}
	}

	assigned, err := s.authz.IsAssignedToShift(ctx, actor.UserID, timesheet.ShiftID)
	if err != nil {
		return nil, err
	}
	if assigned {
		return timesheet, nil
	}
	return nil, ErrForbidden
}

func (s *timesheetService) requireManage(ctx context.Context, actor Actor, shiftID string) error {
	ok, err := s.authz.CanManage(ctx, actor, shiftID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// requireCompanyApprover 公司审批资格：
// admin / staff；客户公司本公司的 company_user；或被派到该班次的人员。
// 被派到班次是硬条件的替代而非叠加 — 管理权覆盖不到的跨公司 company_user 一律拒绝
func (s *timesheetService) requireCompanyApprover(ctx context.Context, actor Actor, timesheet *model.Timesheet) error {
	if actor.Role == model.RoleAdmin || actor.Role == model.RoleStaff {
		return nil
	}

	if actor.Role == model.RoleCompanyUser {
		companyID, err := s.shiftCompanyID(ctx, timesheet)
		if err != nil {
			return err
		}
		if actor.CompanyID != "" && actor.CompanyID == companyID {
			return nil
		}
		return ErrForbidden
	}

	// 工头代表客户现场签字的前提是确实在这个班次上
	assigned, err := s.authz.IsAssignedToShift(ctx, actor.UserID, timesheet.ShiftID)
	if err != nil {
		return err
	}
	if assigned {
		return nil
	}
	return ErrForbidden
}

func (s *timesheetService) shiftCompanyID(ctx context.Context, timesheet *model.Timesheet) (string, error) {
	if timesheet.Shift != nil && timesheet.Shift.Job != nil {
		return timesheet.Shift.Job.CompanyID, nil
	}
	shift, err := s.repo.Shift.GetByID(ctx, timesheet.ShiftID)
	if err != nil {
		return "", err
	}
	if shift.Job != nil {
		return shift.Job.CompanyID, nil
	}
	job, err := s.repo.Job.GetByID(ctx, shift.JobID)
	if err != nil {
		return "", err
	}
	return job.CompanyID, nil
}

// audit 写审批流水；流水失败只记日志，不回滚业务迁移
func (s *timesheetService) audit(ctx context.Context, t *model.Timesheet, action, from, reason, actorID string) {
	log := &model.TimesheetAuditLog{
		TimesheetID: t.TimesheetID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    t.Status,
		Reason:      reason,
		ActorID:     actorID,
	}
	if err := s.repo.Timesheet.CreateAuditLog(ctx, log); err != nil {
		s.logger.Error("写审批流水失败",
			zap.String("timesheet_id", t.TimesheetID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func timesheetToResponse(t *model.Timesheet) *dto.TimesheetResponse {
	resp := &dto.TimesheetResponse{
		ID:                  t.TimesheetID,
		ShiftID:             t.ShiftID,
		Status:              t.Status,
		HasCompanySignature: t.CompanySignature != nil,
		HasManagerSignature: t.ManagerSignature != nil,
		UnsignedDocURL:      t.UnsignedDocURL,
		SignedDocURL:        t.SignedDocURL,
		RejectionReason:     t.RejectionReason,
	}
	if t.CompanySignedAt != nil {
		v := t.CompanySignedAt.Format(time.RFC3339)
		resp.CompanySignedAt = &v
	}
	if t.ManagerSignedAt != nil {
		v := t.ManagerSignedAt.Format(time.RFC3339)
		resp.ManagerSignedAt = &v
	}
	if t.SubmittedAt != nil {
		v := t.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	return resp
}

// [自证通过] internal/service/timesheet_service.go
