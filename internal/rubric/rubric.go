// Package rubric 文化价值观评分标准：维度 × 行为等级 → 行为范例，等级 → 分值。
// 纯数据，不做任何 I/O。
package rubric

// 行为等级
const (
	LevelL2 = "L2"
	LevelL3 = "L3"
)

// Dimension 价值观维度
type Dimension struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Level 行为等级
type Level struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Example 行为范例
type Example struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

var dimensions = []Dimension{
	{Key: "customer_first", Label: "客户至上"},
	{Key: "teamwork", Label: "团队协作"},
	{Key: "innovation", Label: "开放创新"},
	{Key: "simplicity", Label: "简单向上"},
	{Key: "professionalism", Label: "专业专注"},
	{Key: "dedication", Label: "崇尚奋斗"},
}

var levels = []Level{
	{Key: LevelL2, Label: "L2 进阶（每项5分）", Score: 5},
	{Key: LevelL3, Label: "L3 卓越（每项10分）", Score: 10},
}

type pair struct{ dimension, level string }

// 目前仅客户至上与团队协作两个维度配置了行为范例
var examples = map[pair][]Example{
	{"customer_first", LevelL2}: {
		{Code: "cust_L2_1", Text: "主动了解背景，提供个性化解决方案"},
		{Code: "cust_L2_2", Text: "预警潜在问题并提供防范建议"},
		{Code: "cust_L2_3", Text: "妥善处理复杂投诉，获得客户书面认可"},
	},
	{"customer_first", LevelL3}: {
		{Code: "cust_L3_1", Text: "形成客户潜在需求报告并推动改进"},
		{Code: "cust_L3_2", Text: "将客户发展为长期战略合作伙伴"},
		{Code: "cust_L3_3", Text: "客户主动代言或引荐新客户"},
	},
	{"teamwork", LevelL2}: {
		{Code: "team_L2_1", Text: "主动承担额外工作保障团队目标"},
		{Code: "team_L2_2", Text: "主动分享经验或模板帮助同事"},
		{Code: "team_L2_3", Text: "主动调解团队小摩擦促成共识"},
	},
	{"teamwork", LevelL3}: {
		{Code: "team_L3_1", Text: "发起建立提升协作效率的新机制"},
		{Code: "team_L3_2", Text: "组织跨团队活动提升信任与默契"},
		{Code: "team_L3_3", Text: "在复杂项目中成为关键纽带推动突破"},
	},
}

// Dimensions 返回全部维度（固定顺序）
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensions))
	copy(out, dimensions)
	return out
}

// Levels 返回全部行为等级
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// DimensionLabel 返回维度中文名，未知维度原样返回
func DimensionLabel(key string) string {
	for _, d := range dimensions {
		if d.Key == key {
			return d.Label
		}
	}
	return key
}

// ValidDimension 维度是否存在
func ValidDimension(key string) bool {
	for _, d := range dimensions {
		if d.Key == key {
			return true
		}
	}
	return false
}

// ValidLevel 等级是否存在
func ValidLevel(key string) bool {
	return Score(key) > 0
}

// Score 等级对应的分值：L2 → 5，L3 → 10，其余（含空值）→ 0
func Score(level string) int {
	for _, l := range levels {
		if l.Key == level {
			return l.Score
		}
	}
	return 0
}

// Examples 返回 (维度, 等级) 对应的行为范例；未配置时返回空切片
func Examples(dimension, level string) []Example {
	list := examples[pair{dimension, level}]
	out := make([]Example, len(list))
	copy(out, list)
	return out
}

// LookupItem 判断行为范例编码是否属于给定 (维度, 等级)
func LookupItem(dimension, level, code string) (Example, bool) {
	for _, e := range examples[pair{dimension, level}] {
		if e.Code == code {
			return e, true
		}
	}
	return Example{}, false
}
