package handler

import (
	"github.com/gin-gonic/gin"

	"culture-points/internal/service"
	"culture-points/pkg/response"
)

// AnalysisHandler 管理端数据分析与积分对账
type AnalysisHandler struct {
	analysisSvc service.AnalysisService
	ledgerSvc   service.LedgerService
}

// NewAnalysisHandler 创建 AnalysisHandler
func NewAnalysisHandler(analysisSvc service.AnalysisService, ledgerSvc service.LedgerService) *AnalysisHandler {
	return &AnalysisHandler{analysisSvc: analysisSvc, ledgerSvc: ledgerSvc}
}

// Overview 申请统计、维度分布与排行榜
// GET /api/v1/analysis
func (h *AnalysisHandler) Overview(c *gin.Context) {
	result, err := h.analysisSvc.Overview(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Audit 立即执行一次积分对账
// GET /api/v1/ledger/audit
func (h *AnalysisHandler) Audit(c *gin.Context) {
	result, err := h.ledgerSvc.Audit(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
