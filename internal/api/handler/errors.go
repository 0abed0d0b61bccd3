package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"culture-points/internal/api/validator"
	"culture-points/internal/service"
	pkgerrors "culture-points/pkg/errors"
	"culture-points/pkg/jwt"
	"culture-points/pkg/response"
)

// badRequest 请求绑定失败
func badRequest(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.FormatErrors(err))
}

// handleServiceError 将业务错误映射为 HTTP 状态码与业务码
//
// 业务码分段：
//   - 10xxx 通用
//   - 11xxx 认证
//   - 12xxx 员工档案
//   - 13xxx 积分申请
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权操作")

	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "工号或密码错误")
	case errors.Is(err, service.ErrAccountFrozen):
		response.Forbidden(c, 11002, "账号已冻结，请联系管理员")
	case errors.Is(err, service.ErrWrongOldPassword):
		response.BadRequest(c, 11003, "原密码错误")
	case errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, jwt.ErrTokenInvalid),
		errors.Is(err, jwt.ErrTokenExpired):
		response.Unauthorized(c, 11004, "登录状态已失效，请重新登录")

	case errors.Is(err, service.ErrStaffNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrDuplicateEmployeeID):
		response.Conflict(c, 12002, "工号已存在")
	case errors.Is(err, service.ErrSelfStatusChange):
		response.BadRequest(c, 12003, "不能修改自己的账号状态")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12004, "数据已被他人修改，请刷新后重试")
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 12005, err.Error())

	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 13001, "申请不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 13002, "申请已处理，不能重复审批")
	case errors.Is(err, service.ErrResubmitNotAllowed):
		response.Conflict(c, 13003, "仅被驳回的申请可以重新提交")

	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
