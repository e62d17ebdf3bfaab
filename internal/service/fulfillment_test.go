package service

import "testing"

// ── FulfillmentLevel 测试 ──

func TestFulfillmentLevel_Bands(t *testing.T) {
	cases := []struct {
		name     string
		required int
		assigned int
		want     string
	}{
		{"有需求无人到岗", 10, 0, FulfillmentCritical},
		{"低于七成", 10, 6, FulfillmentLow},
		{"恰好七成", 10, 7, FulfillmentGood},
		{"接近满编", 10, 9, FulfillmentGood},
		{"满编", 10, 10, FulfillmentFull},
		{"超编", 10, 11, FulfillmentOverstaffed},
		{"需求为零无人", 0, 0, FulfillmentFull},
		{"需求为零有人", 0, 2, FulfillmentFull},
		{"需求为零多人", 0, 99, FulfillmentFull},
		{"单人需求满编", 1, 1, FulfillmentFull},
		{"单人需求缺人", 1, 0, FulfillmentCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FulfillmentLevel(tc.required, tc.assigned); got != tc.want {
				t.Errorf("FulfillmentLevel(%d, %d) = %s，期望 %s", tc.required, tc.assigned, got, tc.want)
			}
		})
	}
}

func TestFulfillmentLevel_SevenTenthsBoundary(t *testing.T) {
	// 6/10 = 0.6 < 0.7 → low；7/10 = 0.7 不小于阈值 → good
	if got := FulfillmentLevel(10, 6); got != FulfillmentLow {
		t.Errorf("6/10 期望 low，实际 %s", got)
	}
	if got := FulfillmentLevel(10, 7); got != FulfillmentGood {
		t.Errorf("7/10 期望 good，实际 %s", got)
	}
}

// ── ComputeFulfillment 测试 ──

func TestComputeFulfillment_MixedRoles(t *testing.T) {
	required := map[string]int{"CC": 1, "SH": 4}
	assigned := map[string]int{"CC": 1, "SH": 2}

	result := ComputeFulfillment(required, assigned, []string{"CC", "SH"})

	if result.TotalRequired != 5 || result.TotalAssigned != 3 {
		t.Fatalf("合计期望 5/3，实际 %d/%d", result.TotalRequired, result.TotalAssigned)
	}
	// 3/5 = 0.6 < 0.7 → 整体 low
	if result.Level != FulfillmentLow {
		t.Errorf("整体期望 low，实际 %s", result.Level)
	}

	byRole := make(map[string]RoleFulfillment)
	for _, rf := range result.ByRole {
		byRole[rf.RoleCode] = rf
	}
	if byRole["CC"].Level != FulfillmentFull {
		t.Errorf("CC 期望 full，实际 %s", byRole["CC"].Level)
	}
	if byRole["SH"].Level != FulfillmentLow {
		t.Errorf("SH 期望 low（2/4 = 0.5），实际 %s", byRole["SH"].Level)
	}
}

func TestComputeFulfillment_ZeroRequirement(t *testing.T) {
	result := ComputeFulfillment(map[string]int{"RG": 0}, map[string]int{}, []string{"RG"})
	if result.Level != FulfillmentFull {
		t.Errorf("零需求整体期望 full，实际 %s", result.Level)
	}
	if len(result.ByRole) != 1 || result.ByRole[0].Level != FulfillmentFull {
		t.Errorf("零需求工种期望 full，实际 %+v", result.ByRole)
	}
}

func TestComputeFulfillment_AssignedOutsideRequired(t *testing.T) {
	// 只出现在已派侧的工种按需求零处理 → full
	result := ComputeFulfillment(map[string]int{"CC": 1}, map[string]int{"CC": 1, "GL": 2}, []string{"CC"})

	var gl *RoleFulfillment
	for i := range result.ByRole {
		if result.ByRole[i].RoleCode == "GL" {
			gl = &result.ByRole[i]
		}
	}
	if gl == nil {
		t.Fatal("GL 应出现在结果中")
	}
	if gl.Level != FulfillmentFull {
		t.Errorf("GL 期望 full，实际 %s", gl.Level)
	}
}

func TestComputeFulfillment_RoleOrder(t *testing.T) {
	required := map[string]int{"SH": 2, "CC": 1, "GL": 3}
	result := ComputeFulfillment(required, nil, []string{"CC", "SH", "GL"})

	want := []string{"CC", "SH", "GL"}
	for i, rf := range result.ByRole {
		if rf.RoleCode != want[i] {
			t.Errorf("位置 %d 期望 %s，实际 %s", i, want[i], rf.RoleCode)
		}
	}
}

// [自证通过] internal/service/fulfillment_test.go
