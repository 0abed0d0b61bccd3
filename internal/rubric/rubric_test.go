package rubric

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"L2", 5},
		{"L3", 10},
		{"", 0},
		{"L1", 0},
		{"l2", 0},
		{"L4", 0},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := Score(tt.level); got != tt.want {
				t.Errorf("Score(%q) 期望 %d，实际: %d", tt.level, tt.want, got)
			}
			// 重复计算结果一致
			if got := Score(tt.level); got != tt.want {
				t.Errorf("Score(%q) 重复计算结果不一致: %d", tt.level, got)
			}
		})
	}
}

func TestExamples(t *testing.T) {
	got := Examples("teamwork", LevelL2)
	if len(got) != 3 {
		t.Fatalf("期望 3 条范例，实际: %d", len(got))
	}
	if got[0].Code != "team_L2_1" {
		t.Errorf("期望首条为 team_L2_1，实际: %s", got[0].Code)
	}

	if got := Examples("innovation", LevelL3); len(got) != 0 {
		t.Errorf("未配置的组合应返回空，实际: %d 条", len(got))
	}
	if got := Examples("unknown", "L9"); len(got) != 0 {
		t.Errorf("未知组合应返回空，实际: %d 条", len(got))
	}
}

func TestExamples_ReturnsCopy(t *testing.T) {
	got := Examples("customer_first", LevelL3)
	got[0].Text = "被篡改"
	if Examples("customer_first", LevelL3)[0].Text == "被篡改" {
		t.Error("修改返回值不应影响内置范例表")
	}
}

func TestLookupItem(t *testing.T) {
	if _, ok := LookupItem("customer_first", LevelL2, "cust_L2_3"); !ok {
		t.Error("cust_L2_3 应属于 customer_first/L2")
	}
	if _, ok := LookupItem("customer_first", LevelL3, "cust_L2_3"); ok {
		t.Error("cust_L2_3 不应属于 customer_first/L3")
	}
	if _, ok := LookupItem("teamwork", LevelL2, "cust_L2_1"); ok {
		t.Error("cust_L2_1 不应属于 teamwork/L2")
	}
}

func TestDimensions(t *testing.T) {
	dims := Dimensions()
	if len(dims) != 6 {
		t.Fatalf("期望 6 个维度，实际: %d", len(dims))
	}
	for _, d := range dims {
		if !ValidDimension(d.Key) {
			t.Errorf("维度 %s 应有效", d.Key)
		}
	}
	if ValidDimension("loyalty") {
		t.Error("loyalty 不应是有效维度")
	}
	if DimensionLabel("teamwork") != "团队协作" {
		t.Errorf("期望 团队协作，实际: %s", DimensionLabel("teamwork"))
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("L2") || !ValidLevel("L3") {
		t.Error("L2/L3 应为有效等级")
	}
	if ValidLevel("") || ValidLevel("L1") {
		t.Error("空值与 L1 不应为有效等级")
	}
}
