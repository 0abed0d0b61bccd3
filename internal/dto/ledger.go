package dto

// ── 积分台账 DTO ──

// HistoryEntryResponse 积分流水
type HistoryEntryResponse struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Dimension     string `json:"dimension"`
	Amount        int    `json:"amount"`
	Status        string `json:"status"`
	Opinion       string `json:"opinion,omitempty"`
}

// LedgerResponse 员工积分台账
type LedgerResponse struct {
	StaffID string                 `json:"staff_id"`
	Score   int                    `json:"score"`
	History []HistoryEntryResponse `json:"history"`
}

// LedgerDrift 档案积分与流水汇总不一致的记录
type LedgerDrift struct {
	StaffID    string `json:"staff_id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	HistorySum int    `json:"history_sum"`
}

// LedgerAuditResponse 对账结果
type LedgerAuditResponse struct {
	Checked   int           `json:"checked"`
	Drifts    []LedgerDrift `json:"drifts"`
	CheckedAt string        `json:"checked_at"`
}
