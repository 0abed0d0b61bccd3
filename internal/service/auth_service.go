package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"culture-points/internal/dto"
	"culture-points/internal/model"
	"culture-points/internal/repository"
	"culture-points/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("工号或密码错误")
	ErrAccountFrozen      = errors.New("账号已冻结，请联系管理员")
	ErrStaffNotFound      = errors.New("员工不存在")
	ErrWrongOldPassword   = errors.New("原密码错误")
	ErrTokenRevoked       = errors.New("登录状态已失效，请重新登录")
)

// AuthService 认证业务接口
type AuthService interface {
	// Authenticate 校验工号与密码，成功时登录次数 +1
	Authenticate(ctx context.Context, employeeID, password string) (*model.Staff, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	GetCurrentUser(ctx context.Context, staffID string) (*dto.StaffResponse, error)
	ChangePassword(ctx context.Context, staffID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Authenticate ──────────────────────

func (s *authService) Authenticate(ctx context.Context, employeeID, password string) (*model.Staff, error) {
	staff, err := s.repo.Staff.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	// 冻结检查先于密码比对，不泄露密码是否正确
	if !staff.IsActive() {
		return nil, ErrAccountFrozen
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.Staff.IncrementLoginCount(ctx, staff.StaffID); err != nil {
		s.logger.Error("更新登录次数失败", zap.String("staff_id", staff.StaffID), zap.Error(err))
		return nil, err
	}
	staff.LoginCount++

	return staff, nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	staff, err := s.Authenticate(ctx, req.EmployeeID, req.Password)
	if err != nil {
		return nil, err
	}

	s.logger.Info("员工登录",
		zap.String("staff_id", staff.StaffID),
		zap.String("employee_id", staff.EmployeeID),
		zap.Int("login_count", staff.LoginCount),
	)

	return s.issueTokens(staff, req.RememberMe)
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, jwt.ErrTokenInvalid
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败，降级放行", zap.Error(err))
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	staff, err := s.repo.Staff.GetByID(ctx, claims.StaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if !staff.IsActive() {
		return nil, ErrAccountFrozen
	}

	resp, err := s.issueTokens(staff, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// 轮换：旧 Refresh Token 作废
	s.revoke(ctx, claims)

	return resp, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil {
		return nil
	}
	s.revoke(ctx, claims)
	return nil
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, staffID string) (*dto.StaffResponse, error) {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, staffID string, req *dto.ChangePasswordRequest) error {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.String("staff_id", staffID), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	if err := s.repo.Staff.UpdatePassword(ctx, staffID, string(hash), false); err != nil {
		s.logger.Error("更新密码失败", zap.String("staff_id", staffID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(staff *model.Staff, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(staff.StaffID, staff.EmployeeID, staff.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(staff.StaffID, staff.EmployeeID, staff.Role, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Staff:        toStaffResponse(staff),
	}, nil
}

// revoke 将 Token 加入黑名单；Redis 不可用时仅记录日志
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("写入 Token 黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// toStaffResponse 将 model.Staff 转换为 dto.StaffResponse
func toStaffResponse(staff *model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:                 staff.StaffID,
		EmployeeID:         staff.EmployeeID,
		Name:               staff.Name,
		Role:               staff.Role,
		Score:              staff.Score,
		LoginCount:         staff.LoginCount,
		Status:             staff.Status,
		JoinDate:           staff.JoinDate.Format(dateLayout),
		MustChangePassword: staff.MustChangePassword,
		Version:            staff.Version,
	}
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)
