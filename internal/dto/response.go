package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"` // Access Token 有效期（秒）
	Staff        StaffResponse `json:"staff"`
}

// ── 员工模块响应 ──

// StaffResponse 员工信息响应（脱敏）
type StaffResponse struct {
	ID                 string `json:"id"`
	EmployeeID         string `json:"employee_id"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	Score              int    `json:"score"`
	LoginCount         int    `json:"login_count"`
	Status             string `json:"status"`
	JoinDate           string `json:"join_date"`
	MustChangePassword bool   `json:"must_change_password"`
	Version            int    `json:"version"`
}

// StaffDetailResponse 员工详情（含积分台账）
type StaffDetailResponse struct {
	StaffResponse
	CreatedAt string                 `json:"created_at"`
	History   []HistoryEntryResponse `json:"history"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
