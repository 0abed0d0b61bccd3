package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"culture-points/config"
	"culture-points/internal/repository"
	"culture-points/pkg/jwt"
	"culture-points/pkg/polish"
)

// TokenBlacklist Token 黑名单存储（Redis 实现），为 nil 时跳过黑名单逻辑
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Polisher 外部润色服务
type Polisher interface {
	Polish(ctx context.Context, title, dimension, description string) (*polish.Result, error)
}

// txRunner 事务执行器，*repository.Repository 满足该接口
type txRunner interface {
	Transaction(ctx context.Context, fn func(tx *repository.Repository) error) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Staff       StaffService
	Application ApplicationService
	Ledger      LedgerService
	Polish      PolishService
	Analysis    AnalysisService
	Export      ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	polisher Polisher,
	logger *zap.Logger,
) *Service {
	ledger := NewLedgerService(repo, logger)
	return &Service{
		Auth:        NewAuthService(repo, jwtMgr, blacklist, logger),
		Staff:       NewStaffService(cfg, repo, ledger, logger),
		Application: NewApplicationService(repo, ledger, logger),
		Ledger:      ledger,
		Polish:      NewPolishService(polisher, cfg.Polish.CacheTTL, logger),
		Analysis:    NewAnalysisService(repo, logger),
		Export:      NewExportService(repo, logger),
	}
}
