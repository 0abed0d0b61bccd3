package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culture-points/config"
	"culture-points/internal/api/handler"
	"culture-points/internal/api/middleware"
	"culture-points/internal/model"
	"culture-points/pkg/jwt"
	"culture-points/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流均降级跳过
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var blacklist middleware.TokenChecker
	if rdb != nil {
		blacklist = rdb
	}

	reviewers := middleware.RoleAuth(model.RoleAdmin, model.RoleSuperAdmin)
	superAdmin := middleware.RoleAuth(model.RoleSuperAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginPerMinute, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 评分标准
			authorized.GET("/rubric", h.Rubric.Get)
			authorized.GET("/rubric/examples", h.Rubric.Examples)

			// AI 润色
			authorized.POST("/polish",
				middleware.RateLimit(rdb, "polish", cfg.RateLimit.PolishPerMinute, time.Minute),
				h.Polish.Polish)

			// 积分申请
			apps := authorized.Group("/applications")
			{
				apps.POST("", h.Application.Submit)
				apps.GET("/mine", h.Application.ListMine)
				apps.GET("/:id", h.Application.Get) // 本人或审批角色（Service 层鉴权）
				apps.POST("/:id/resubmit", h.Application.Resubmit)

				apps.GET("", reviewers, h.Application.List)
				apps.GET("/pending", reviewers, h.Application.ListPending)
				apps.POST("/:id/approve", reviewers, h.Application.Approve)
				apps.POST("/:id/reject", reviewers, h.Application.Reject)
			}

			// 员工档案
			staff := authorized.Group("/staff")
			{
				staff.GET("", reviewers, h.Staff.List)
				staff.GET("/export", reviewers, h.Staff.Export)
				staff.GET("/:id", h.Staff.Get) // 本人或审批角色（Service 层鉴权）
				staff.POST("", superAdmin, h.Staff.Create)
				staff.PUT("/:id/status", superAdmin, h.Staff.SetStatus)
				staff.POST("/import", superAdmin, h.Staff.Import)
			}

			// 数据分析与对账
			authorized.GET("/analysis", reviewers, h.Analysis.Overview)
			authorized.GET("/ledger/audit", superAdmin, h.Analysis.Audit)
		}
	}

	return r
}
