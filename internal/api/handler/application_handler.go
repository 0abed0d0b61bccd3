package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"culture-points/internal/dto"
	"culture-points/internal/service"
	"culture-points/pkg/response"
)

// ApplicationHandler 积分申请 HTTP 处理器
type ApplicationHandler struct {
	appSvc service.ApplicationService
}

// NewApplicationHandler 创建 ApplicationHandler
func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

// ── 员工端 ──

// Submit 提交积分申请
// POST /api/v1/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.appSvc.Submit(c.Request.Context(), &req, staffID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, app)
}

// ListMine 我的申请
// GET /api/v1/applications/mine
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.appSvc.ListMine(c.Request.Context(), &req, staffID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 申请详情（本人或审批角色）
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	staffID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	app, err := h.appSvc.Get(c.Request.Context(), c.Param("id"), staffID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, app)
}

// Resubmit 基于被驳回的申请重新提交
// POST /api/v1/applications/:id/resubmit
func (h *ApplicationHandler) Resubmit(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.appSvc.Resubmit(c.Request.Context(), c.Param("id"), &req, staffID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, app)
}

// ── 管理端 ──

// List 全部申请
// GET /api/v1/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.appSvc.List(c.Request.Context(), &req, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListPending 待审批申请（最早提交的在前）
// GET /api/v1/applications/pending
func (h *ApplicationHandler) ListPending(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	list, err := h.appSvc.ListPending(c.Request.Context(), role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, list)
}

// Approve 审批通过
// POST /api/v1/applications/:id/approve
func (h *ApplicationHandler) Approve(c *gin.Context) {
	h.review(c, h.appSvc.Approve)
}

// Reject 驳回
// POST /api/v1/applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.review(c, h.appSvc.Reject)
}

type reviewFunc func(ctx context.Context, id string, req *dto.ReviewRequest, reviewerID, reviewerRole string) (*dto.ApplicationResponse, error)

func (h *ApplicationHandler) review(c *gin.Context, fn reviewFunc) {
	staffID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	// 审批意见可选，允许空请求体
	var req dto.ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	app, err := fn(c.Request.Context(), c.Param("id"), &req, staffID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, app)
}
