package dto

// DimensionStat 维度申请数
type DimensionStat struct {
	Dimension string `json:"dimension"`
	Label     string `json:"label"`
	Count     int64  `json:"count"`
}

// RankItem 排行榜条目
type RankItem struct {
	StaffID    string `json:"staff_id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Value      int    `json:"value"`
}

// AnalysisResponse 管理端数据分析
type AnalysisResponse struct {
	TotalApplications int64           `json:"total_applications"`
	ApprovedCount     int64           `json:"approved_count"`
	PendingCount      int64           `json:"pending_count"`
	RejectedCount     int64           `json:"rejected_count"`
	DimensionCounts   []DimensionStat `json:"dimension_counts"`
	TopScores         []RankItem      `json:"top_scores"`
	TopLogins         []RankItem      `json:"top_logins"`
}
