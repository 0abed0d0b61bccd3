package handler

import (
	"github.com/gin-gonic/gin"

	"culture-points/internal/dto"
	"culture-points/internal/service"
	"culture-points/pkg/response"
)

// PolishHandler AI 润色 HTTP 处理器
type PolishHandler struct {
	polishSvc service.PolishService
}

// NewPolishHandler 创建 PolishHandler
func NewPolishHandler(polishSvc service.PolishService) *PolishHandler {
	return &PolishHandler{polishSvc: polishSvc}
}

// Polish 润色案例描述；外部服务不可用时返回 fallback=true 的固定提示
// POST /api/v1/polish
func (h *PolishHandler) Polish(c *gin.Context) {
	var req dto.PolishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.polishSvc.Polish(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
