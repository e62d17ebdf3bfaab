package service

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"crewdesk/internal/model"
	"crewdesk/internal/repository"
	pkgerrors "crewdesk/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%03d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(m.users)), nil
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[string]*model.Company)}
}

func (m *mockCompanyRepo) Create(_ context.Context, company *model.Company) error {
	if company.CompanyID == "" {
		company.CompanyID = fmt.Sprintf("company-%03d", len(m.companies)+1)
	}
	m.companies[company.CompanyID] = company
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) List(_ context.Context, offset, limit int) ([]model.Company, int64, error) {
	var result []model.Company
	for _, c := range m.companies {
		result = append(result, *c)
	}
	return result, int64(len(m.companies)), nil
}

func (m *mockCompanyRepo) Update(_ context.Context, company *model.Company) error {
	if _, ok := m.companies[company.CompanyID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.companies[company.CompanyID] = company
	return nil
}

// ── Mock JobRepository ──

type mockJobRepo struct {
	jobs map[string]*model.Job
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job)}
}

func (m *mockJobRepo) Create(_ context.Context, job *model.Job) error {
	if job.JobID == "" {
		job.JobID = fmt.Sprintf("job-%03d", len(m.jobs)+1)
	}
	m.jobs[job.JobID] = job
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) ListByCompany(_ context.Context, companyID string, offset, limit int) ([]model.Job, int64, error) {
	var result []model.Job
	for _, j := range m.jobs {
		if j.CompanyID == companyID {
			result = append(result, *j)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockJobRepo) Update(_ context.Context, job *model.Job) error {
	if _, ok := m.jobs[job.JobID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.jobs[job.JobID] = job
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = fmt.Sprintf("shift-%03d", len(m.shifts)+1)
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	for i := range shifts {
		s := shifts[i]
		if err := m.Create(ctx, &s); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListByJob(_ context.Context, jobID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.JobID == jobID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	stored, ok := m.shifts[shift.ShiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	cp := *shift
	m.shifts[shift.ShiftID] = &cp
	return nil
}

// ── Mock AssignmentRepository ──
//
// ApplyTransition 模拟真实实现的 (id, version) CAS：版本不匹配
// 返回 ErrOptimisticLock 且不落任何变更。带锁以支撑并发用例。

type mockAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]*model.AssignedPersonnel
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.AssignedPersonnel)}
}

func copyAssignment(a *model.AssignedPersonnel) *model.AssignedPersonnel {
	cp := *a
	cp.TimeEntries = make([]model.TimeEntry, len(a.TimeEntries))
	copy(cp.TimeEntries, a.TimeEntries)
	return &cp
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.AssignedPersonnel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = fmt.Sprintf("assign-%03d", len(m.assignments)+1)
	}
	m.assignments[assignment.AssignmentID] = copyAssignment(assignment)
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.AssignedPersonnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assignments[id]; ok {
		return copyAssignment(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) GetByShiftAndUser(_ context.Context, shiftID, userID string) (*model.AssignedPersonnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ShiftID == shiftID && a.UserID == userID {
			return copyAssignment(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByShift(_ context.Context, shiftID string) ([]model.AssignedPersonnel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AssignedPersonnel
	for _, a := range m.assignments {
		if a.ShiftID == shiftID {
			result = append(result, *copyAssignment(a))
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ExistsOnShift(_ context.Context, shiftID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ShiftID == shiftID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) HasRoleOnShift(_ context.Context, shiftID, userID, roleCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ShiftID == shiftID && a.UserID == userID && a.RoleCode == roleCode {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) ApplyTransition(_ context.Context, assignment *model.AssignedPersonnel, closeEntry *model.TimeEntry, newEntry *model.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.assignments[assignment.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != assignment.Version {
		return pkgerrors.ErrOptimisticLock
	}

	stored.Status = assignment.Status
	stored.Version++
	assignment.Version++

	if closeEntry != nil {
		for i := range stored.TimeEntries {
			if stored.TimeEntries[i].EntryNumber == closeEntry.EntryNumber {
				stored.TimeEntries[i] = *closeEntry
			}
		}
	}
	if newEntry != nil {
		if newEntry.TimeEntryID == "" {
			newEntry.TimeEntryID = fmt.Sprintf("%s-entry-%d", assignment.AssignmentID, newEntry.EntryNumber)
		}
		stored.TimeEntries = append(stored.TimeEntries, *newEntry)
	}
	return nil
}

func (m *mockAssignmentRepo) SoftDelete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

// ── Mock TimesheetRepository ──
//
// Update 模拟真实实现的单条 CAS UPDATE：全部可变字段同时落库，
// 版本不匹配返回 ErrOptimisticLock。

type mockTimesheetRepo struct {
	mu         sync.Mutex
	timesheets map[string]*model.Timesheet
	auditLogs  []model.TimesheetAuditLog
}

func newMockTimesheetRepo() *mockTimesheetRepo {
	return &mockTimesheetRepo{timesheets: make(map[string]*model.Timesheet)}
}

func (m *mockTimesheetRepo) Create(_ context.Context, timesheet *model.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.timesheets {
		if t.ShiftID == timesheet.ShiftID {
			return gorm.ErrDuplicatedKey
		}
	}
	if timesheet.TimesheetID == "" {
		timesheet.TimesheetID = fmt.Sprintf("ts-%03d", len(m.timesheets)+1)
	}
	cp := *timesheet
	m.timesheets[timesheet.TimesheetID] = &cp
	return nil
}

func (m *mockTimesheetRepo) GetByID(_ context.Context, id string) (*model.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timesheets[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) GetByShift(_ context.Context, shiftID string) (*model.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.timesheets {
		if t.ShiftID == shiftID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) Update(_ context.Context, timesheet *model.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.timesheets[timesheet.TimesheetID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != timesheet.Version {
		return pkgerrors.ErrOptimisticLock
	}
	timesheet.Version++
	cp := *timesheet
	m.timesheets[timesheet.TimesheetID] = &cp
	return nil
}

func (m *mockTimesheetRepo) CreateAuditLog(_ context.Context, log *model.TimesheetAuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.AuditLogID == "" {
		log.AuditLogID = fmt.Sprintf("audit-%03d", len(m.auditLogs)+1)
	}
	m.auditLogs = append(m.auditLogs, *log)
	return nil
}

func (m *mockTimesheetRepo) ListAuditLogs(_ context.Context, timesheetID string, offset, limit int) ([]model.TimesheetAuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TimesheetAuditLog
	for _, l := range m.auditLogs {
		if l.TimesheetID == timesheetID {
			result = append(result, l)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock PermissionRepository ──

type mockPermissionRepo struct {
	permissions map[string]*model.CrewChiefPermission
}

func newMockPermissionRepo() *mockPermissionRepo {
	return &mockPermissionRepo{permissions: make(map[string]*model.CrewChiefPermission)}
}

func (m *mockPermissionRepo) Create(_ context.Context, permission *model.CrewChiefPermission) error {
	if permission.PermissionID == "" {
		permission.PermissionID = fmt.Sprintf("perm-%03d", len(m.permissions)+1)
	}
	m.permissions[permission.PermissionID] = permission
	return nil
}

func (m *mockPermissionRepo) GetByID(_ context.Context, id string) (*model.CrewChiefPermission, error) {
	if p, ok := m.permissions[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPermissionRepo) ListByUser(_ context.Context, userID string) ([]model.CrewChiefPermission, error) {
	var result []model.CrewChiefPermission
	for _, p := range m.permissions {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPermissionRepo) Exists(_ context.Context, userID, scopeType, targetID string) (bool, error) {
	for _, p := range m.permissions {
		if p.UserID == userID && p.ScopeType == scopeType && p.TargetID == targetID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPermissionRepo) Delete(_ context.Context, id string) error {
	delete(m.permissions, id)
	return nil
}

// ── Mock WorkerRoleRepository ──

type mockWorkerRoleRepo struct {
	roles     map[string]*model.WorkerRole
	createErr error // 注入持久化失败
}

func newMockWorkerRoleRepo() *mockWorkerRoleRepo {
	return &mockWorkerRoleRepo{roles: make(map[string]*model.WorkerRole)}
}

func (m *mockWorkerRoleRepo) Create(_ context.Context, role *model.WorkerRole) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.roles[role.RoleCode] = role
	return nil
}

func (m *mockWorkerRoleRepo) GetByCode(_ context.Context, code string) (*model.WorkerRole, error) {
	if r, ok := m.roles[code]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRoleRepo) List(_ context.Context) ([]model.WorkerRole, error) {
	var result []model.WorkerRole
	for _, r := range m.roles {
		result = append(result, *r)
	}
	return result, nil
}

// ── 组装辅助 ──

// newTestRepo 组装全 mock 的 Repository；各用例按需类型断言取具体 mock
func newTestRepo() *repository.Repository {
	return &repository.Repository{
		User:       newMockUserRepo(),
		Company:    newMockCompanyRepo(),
		Job:        newMockJobRepo(),
		Shift:      newMockShiftRepo(),
		Assignment: newMockAssignmentRepo(),
		Timesheet:  newMockTimesheetRepo(),
		Permission: newMockPermissionRepo(),
		WorkerRole: newMockWorkerRoleRepo(),
	}
}

// [自证通过] internal/service/mock_repos_test.go
