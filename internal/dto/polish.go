package dto

// PolishRequest AI 润色请求
type PolishRequest struct {
	Title       string `json:"title"       binding:"required"`
	Dimension   string `json:"dimension"`
	Description string `json:"description" binding:"required"`
}

// PolishResponse AI 润色结果；Fallback 为 true 时表示外部服务不可用，内容为固定提示
type PolishResponse struct {
	Suggestion string `json:"suggestion"`
	Feedback   string `json:"feedback"`
	Fallback   bool   `json:"fallback"`
}
