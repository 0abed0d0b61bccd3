package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"culture-points/config"
	"culture-points/internal/api/handler"
	"culture-points/internal/service"
	"culture-points/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupEngine(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, CORS: config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}}},
		Auth: config.AuthConfig{
			JWTSecret:               "router-test-secret-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}
	mgr := jwt.NewManager(&cfg.Auth)
	// 以下用例均在到达 Handler 前被中间件拦截，无需真实 Service
	h := handler.NewHandler(&service.Service{})
	return Setup(cfg, h, mgr, nil, zap.NewNop()), mgr
}

func TestHealth(t *testing.T) {
	r, _ := setupEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	r, _ := setupEngine(t)

	routes := []struct{ method, path string }{
		{"GET", "/api/v1/rubric"},
		{"POST", "/api/v1/applications"},
		{"GET", "/api/v1/applications/pending"},
		{"GET", "/api/v1/staff"},
		{"GET", "/api/v1/ledger/audit"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", rt.method, rt.path, w.Code)
		}
	}
}

func TestReviewerRoutes_ForbidEmployee(t *testing.T) {
	r, mgr := setupEngine(t)
	token, _ := mgr.GenerateAccessToken("s1", "GY001", "employee")

	routes := []struct{ method, path string }{
		{"GET", "/api/v1/applications/pending"},
		{"POST", "/api/v1/applications/app-1/approve"},
		{"GET", "/api/v1/staff/export"},
		{"POST", "/api/v1/staff"},
		{"GET", "/api/v1/analysis"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(rt.method, rt.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", rt.method, rt.path, w.Code)
		}
	}
}

func TestSuperAdminRoutes_ForbidAdmin(t *testing.T) {
	r, mgr := setupEngine(t)
	token, _ := mgr.GenerateAccessToken("a1", "GY900", "admin")

	for _, path := range []string{"/api/v1/staff", "/api/v1/staff/import"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("POST %s: expected 403, got %d", path, w.Code)
		}
	}
}
