package handler

import (
	"github.com/gin-gonic/gin"

	"culture-points/internal/dto"
	"culture-points/internal/service"
	"culture-points/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StaffHandler 员工档案 HTTP 处理器
type StaffHandler struct {
	staffSvc  service.StaffService
	exportSvc service.ExportService
}

// NewStaffHandler 创建 StaffHandler
func NewStaffHandler(staffSvc service.StaffService, exportSvc service.ExportService) *StaffHandler {
	return &StaffHandler{staffSvc: staffSvc, exportSvc: exportSvc}
}

// List 员工列表（筛选、排序、固定每页条数）
// GET /api/v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	var req dto.StaffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	list, total, err := h.staffSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), h.staffSvc.PageSize())
}

// Get 员工详情与积分流水（本人或审批角色）
// GET /api/v1/staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	staffID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	detail, err := h.staffSvc.Get(c.Request.Context(), c.Param("id"), staffID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, detail)
}

// Create 新增员工，响应中返回一次性初始密码
// POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	staffID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.staffSvc.CreateStaff(c.Request.Context(), &req, staffID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// SetStatus 冻结 / 解冻账号
// PUT /api/v1/staff/:id/status
func (h *StaffHandler) SetStatus(c *gin.Context) {
	staffID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.staffSvc.SetStatus(c.Request.Context(), c.Param("id"), &req, staffID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Import 通过 Excel 批量导入员工
// POST /api/v1/staff/import (multipart/form-data, 字段名 file)
func (h *StaffHandler) Import(c *gin.Context) {
	staffID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer file.Close()

	rows, err := h.staffSvc.ParseImportFile(file)
	if err != nil {
		handleImportParseError(c, err)
		return
	}

	result, err := h.staffSvc.ImportStaff(c.Request.Context(), rows, staffID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleImportParseError 文件内容问题一律按 400 返回
func handleImportParseError(c *gin.Context, err error) {
	response.BadRequest(c, 12005, err.Error())
}

// Export 导出员工积分名册
// GET /api/v1/staff/export
func (h *StaffHandler) Export(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportStaff(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}
