package dto

// ── 积分申请 DTO ──

// SubmitApplicationRequest 提交积分申请
type SubmitApplicationRequest struct {
	Title               string   `json:"title"                binding:"required"`
	Description         string   `json:"description"          binding:"required"`
	Dimension           string   `json:"dimension"            binding:"required,dimension"`
	BehaviorLevel       string   `json:"behavior_level"       binding:"required,level"`
	BehaviorItems       []string `json:"behavior_items"`
	EvidenceDescription string   `json:"evidence_description"`
	IsRepeat            bool     `json:"is_repeat"`
	RepeatReason        string   `json:"repeat_reason"`
}

// ReviewRequest 审批意见，为空时使用默认意见
type ReviewRequest struct {
	Opinion string `json:"opinion" binding:"omitempty,max=500"`
}

// ResubmitRequest 以被驳回的申请为模板重新提交
// 未提供的字段沿用原申请内容
type ResubmitRequest struct {
	RepeatReason        string   `json:"repeat_reason"        binding:"required"`
	Title               *string  `json:"title"`
	Description         *string  `json:"description"`
	BehaviorItems       []string `json:"behavior_items"`
	EvidenceDescription *string  `json:"evidence_description"`
}

// ApplicationListRequest 申请列表查询参数
type ApplicationListRequest struct {
	PaginationRequest
	Status    string `form:"status"    binding:"omitempty,oneof=pending approved rejected"`
	Dimension string `form:"dimension" binding:"omitempty,dimension"`
}

// ApplicationResponse 申请详情
type ApplicationResponse struct {
	ID                  string   `json:"id"`
	ApplicantID         string   `json:"applicant_id"`
	ApplicantName       string   `json:"applicant_name"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Dimension           string   `json:"dimension"`
	DimensionLabel      string   `json:"dimension_label"`
	BehaviorLevel       string   `json:"behavior_level"`
	BehaviorItems       []string `json:"behavior_items"`
	EvidenceDescription string   `json:"evidence_description,omitempty"`
	IsRepeat            bool     `json:"is_repeat"`
	RepeatReason        string   `json:"repeat_reason,omitempty"`
	SourceApplicationID string   `json:"source_application_id,omitempty"`
	RequestedScore      int      `json:"requested_score"`
	SubmitTime          string   `json:"submit_time"`
	Status              string   `json:"status"`
	AdminOpinion        string   `json:"admin_opinion,omitempty"`
	ReviewedBy          string   `json:"reviewed_by,omitempty"`
	ReviewedAt          string   `json:"reviewed_at,omitempty"`
}
