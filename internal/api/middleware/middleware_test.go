package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"culture-points/config"
	"culture-points/pkg/jwt"
	"culture-points/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	revoked map[string]bool
	err     error
}

func (s *stubChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "middleware-test-secret-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

// protectedEngine 挂载 JWTAuth 与 RoleAuth 的测试路由，成功时回显 staff_id
func protectedEngine(mgr *jwt.Manager, checker TokenChecker, roles ...string) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuth(mgr, checker, zap.NewNop())}
	if len(roles) > 0 {
		chain = append(chain, RoleAuth(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextStaffID))
	})
	r.GET("/protected", chain...)
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("s1", "GY001", "employee")
	refresh, _ := mgr.GenerateRefreshToken("s1", "GY001", "employee", false)

	r := protectedEngine(mgr, nil)

	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("缺少认证头期望 401, got %d", w.Code)
	}
	if w := doGet(r, "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("无效 Token 期望 401, got %d", w.Code)
	}
	if w := doGet(r, refresh); w.Code != http.StatusUnauthorized {
		t.Errorf("Refresh Token 不能访问业务接口, got %d", w.Code)
	}

	w := doGet(r, access)
	if w.Code != http.StatusOK || w.Body.String() != "s1" {
		t.Errorf("期望 200/s1, got %d/%s", w.Code, w.Body.String())
	}
}

func TestJWTAuth_BadScheme(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("s1", "GY001", "employee")
	r := protectedEngine(mgr, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token "+access)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_Blacklist(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("s1", "GY001", "employee")
	claims, err := mgr.ParseToken(access)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	revoked := protectedEngine(mgr, &stubChecker{revoked: map[string]bool{claims.ID: true}})
	if w := doGet(revoked, access); w.Code != http.StatusUnauthorized {
		t.Errorf("已登出 Token 期望 401, got %d", w.Code)
	}

	// 黑名单不可用时降级放行
	degraded := protectedEngine(mgr, &stubChecker{err: errors.New("redis down")})
	if w := doGet(degraded, access); w.Code != http.StatusOK {
		t.Errorf("黑名单故障应降级放行, got %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	mgr := newTestJWT()
	employee, _ := mgr.GenerateAccessToken("s1", "GY001", "employee")
	admin, _ := mgr.GenerateAccessToken("a1", "GY900", "admin")

	r := protectedEngine(mgr, nil, "admin", "super_admin")

	if w := doGet(r, employee); w.Code != http.StatusForbidden {
		t.Errorf("普通员工期望 403, got %d", w.Code)
	}
	if w := doGet(r, admin); w.Code != http.StatusOK {
		t.Errorf("管理员期望 200, got %d", w.Code)
	}
}

func TestRoleAuth_NoContext(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RoleAuth("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), zap.NewNop())

	r := gin.New()
	r.POST("/login", RateLimit(rdb, "login", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("前两次请求应放行: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("第三次请求期望 429, got %d", codes[2])
	}
}

func TestRateLimit_PerStaff(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), zap.NewNop())

	r := gin.New()
	r.POST("/polish",
		func(c *gin.Context) {
			c.Set(ContextStaffID, c.GetHeader("X-Staff"))
			c.Next()
		},
		RateLimit(rdb, "polish", 1, time.Minute),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	send := func(staff string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/polish", nil)
		req.Header.Set("X-Staff", staff)
		r.ServeHTTP(w, req)
		return w.Code
	}

	if send("s1") != http.StatusOK {
		t.Error("s1 首次请求应放行")
	}
	if send("s1") != http.StatusTooManyRequests {
		t.Error("s1 第二次请求应被限流")
	}
	if send("s2") != http.StatusOK {
		t.Error("不同员工应独立计数")
	}
}

func TestRateLimit_DegradesOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), zap.NewNop())
	mr.Close()

	r := gin.New()
	r.POST("/login", RateLimit(rdb, "login", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Redis 不可用时应放行, got %d", w.Code)
		}
	}

	// 未配置 Redis
	r2 := gin.New()
	r2.POST("/login", RateLimit(nil, "login", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用外部 Request-ID, got %s", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	if len(w.Header().Get(requestIDHeader)) != 36 {
		t.Errorf("缺失时应生成 UUID, got %q", w.Header().Get(requestIDHeader))
	}
}
