package dto

// ── 员工模块 DTO ──

// StaffListRequest 员工列表查询参数
// 每页条数由服务端固定，不接受客户端指定
type StaffListRequest struct {
	Page      int    `form:"page"       binding:"omitempty,min=1"`
	Status    string `form:"status"     binding:"omitempty,oneof=active inactive"`
	Keyword   string `form:"keyword"    binding:"omitempty,max=50"`
	JoinFrom  string `form:"join_from"  binding:"omitempty,datetime=2006-01-02"`
	JoinTo    string `form:"join_to"    binding:"omitempty,datetime=2006-01-02"`
	ScoreSort string `form:"score_sort" binding:"omitempty,oneof=asc desc"`
}

// GetPage 获取页码（含默认值）
func (r *StaffListRequest) GetPage() int {
	if r.Page <= 0 {
		return 1
	}
	return r.Page
}

// CreateStaffRequest 新增员工请求
type CreateStaffRequest struct {
	Name       string `json:"name"        binding:"required,max=100"`
	EmployeeID string `json:"employee_id" binding:"required,alphanum,max=32"`
	Role       string `json:"role"        binding:"required,oneof=employee admin super_admin"`
	JoinDate   string `json:"join_date"   binding:"omitempty,datetime=2006-01-02"` // 为空取当天
}

// CreateStaffResponse 新增员工响应，初始密码仅返回一次
type CreateStaffResponse struct {
	Staff           StaffResponse `json:"staff"`
	InitialPassword string        `json:"initial_password"`
}

// SetStatusRequest 冻结 / 解冻请求
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// ImportStaffResponse 批量导入员工响应
type ImportStaffResponse struct {
	Total   int                `json:"total"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
	Errors  []ImportStaffError `json:"errors,omitempty"`
}

// ImportStaffError 导入错误详情
type ImportStaffError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
