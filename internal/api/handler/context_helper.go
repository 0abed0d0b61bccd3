package handler

import (
	"github.com/gin-gonic/gin"

	"culture-points/internal/api/middleware"
	"culture-points/pkg/jwt"
	"culture-points/pkg/response"
)

// MustGetStaffID 从 Gin 上下文中安全提取 staff_id。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应，调用方应直接 return。
func MustGetStaffID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextStaffID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextRole)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 同时提取 staff_id 与 role
func MustGetCaller(c *gin.Context) (staffID, role string, ok bool) {
	if staffID, ok = MustGetStaffID(c); !ok {
		return "", "", false
	}
	if role, ok = MustGetRole(c); !ok {
		return "", "", false
	}
	return staffID, role, true
}

// MustGetClaims 提取当前 Access Token 的声明，登出时用于加入黑名单
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
