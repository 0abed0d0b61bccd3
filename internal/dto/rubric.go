package dto

import "culture-points/internal/rubric"

// RubricResponse 评分标准
type RubricResponse struct {
	Dimensions []rubric.Dimension `json:"dimensions"`
	Levels     []rubric.Level     `json:"levels"`
}

// RubricExamplesRequest 行为范例查询参数
type RubricExamplesRequest struct {
	Dimension string `form:"dimension" binding:"required,dimension"`
	Level     string `form:"level"     binding:"required,level"`
}

// RubricExamplesResponse 行为范例
type RubricExamplesResponse struct {
	Dimension string           `json:"dimension"`
	Level     string           `json:"level"`
	Score     int              `json:"score"`
	Examples  []rubric.Example `json:"examples"`
}
