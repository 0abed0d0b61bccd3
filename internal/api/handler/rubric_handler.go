package handler

import (
	"github.com/gin-gonic/gin"

	"culture-points/internal/dto"
	"culture-points/internal/rubric"
	"culture-points/pkg/response"
)

// RubricHandler 评分标准查询（静态数据，无需 Service）
type RubricHandler struct{}

// NewRubricHandler 创建 RubricHandler
func NewRubricHandler() *RubricHandler {
	return &RubricHandler{}
}

// Get 维度与行为等级
// GET /api/v1/rubric
func (h *RubricHandler) Get(c *gin.Context) {
	response.OK(c, dto.RubricResponse{
		Dimensions: rubric.Dimensions(),
		Levels:     rubric.Levels(),
	})
}

// Examples 指定维度与等级下的行为范例
// GET /api/v1/rubric/examples?dimension=teamwork&level=L2
func (h *RubricHandler) Examples(c *gin.Context) {
	var req dto.RubricExamplesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	response.OK(c, dto.RubricExamplesResponse{
		Dimension: req.Dimension,
		Level:     req.Level,
		Score:     rubric.Score(req.Level),
		Examples:  rubric.Examples(req.Dimension, req.Level),
	})
}
