package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"culture-points/internal/dto"
	"culture-points/internal/model"
	"culture-points/internal/repository"
)

// Credit 审批通过后的入账参数
type Credit struct {
	StaffID       string
	ApplicationID string
	Dimension     string
	Title         string
	Amount        int
	Opinion       string
}

// LedgerService 积分台账：积分与流水的唯一写入方
type LedgerService interface {
	// CreditApproval 在调用方事务（repo）内追加流水并累加积分；员工不存在时记录告警后跳过
	CreditApproval(ctx context.Context, repo *repository.Repository, c Credit) error
	GetLedger(ctx context.Context, staffID string) (*dto.LedgerResponse, error)
	// Audit 核对每位员工 score 与 approved 流水之和
	Audit(ctx context.Context) (*dto.LedgerAuditResponse, error)
}

type ledgerService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewLedgerService 创建 LedgerService 实例
func NewLedgerService(repo *repository.Repository, logger *zap.Logger) LedgerService {
	return &ledgerService{repo: repo, now: time.Now, logger: logger}
}

// ────────────────────── CreditApproval ──────────────────────

func (s *ledgerService) CreditApproval(ctx context.Context, repo *repository.Repository, c Credit) error {
	if c.Amount <= 0 {
		return fmt.Errorf("%w: 入账积分必须为正数", ErrValidation)
	}

	if _, err := repo.Staff.GetByID(ctx, c.StaffID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("入账员工不存在，跳过",
				zap.String("staff_id", c.StaffID),
				zap.String("application_id", c.ApplicationID),
			)
			return nil
		}
		return err
	}

	entry := &model.PointHistory{
		StaffID:       c.StaffID,
		ApplicationID: c.ApplicationID,
		Date:          model.Date(s.now()),
		Description:   "[审批通过] " + c.Title,
		Dimension:     c.Dimension,
		Amount:        c.Amount,
		Status:        model.ApplicationApproved,
		Opinion:       c.Opinion,
	}
	if err := repo.PointHistory.Create(ctx, entry); err != nil {
		return fmt.Errorf("写入积分流水失败: %w", err)
	}
	if err := repo.Staff.AddScore(ctx, c.StaffID, c.Amount); err != nil {
		return fmt.Errorf("累加积分失败: %w", err)
	}
	return nil
}

// ────────────────────── GetLedger ──────────────────────

func (s *ledgerService) GetLedger(ctx context.Context, staffID string) (*dto.LedgerResponse, error) {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	history, err := s.repo.PointHistory.ListByStaff(ctx, staffID)
	if err != nil {
		s.logger.Error("查询积分流水失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	entries := make([]dto.HistoryEntryResponse, 0, len(history))
	for _, h := range history {
		entries = append(entries, dto.HistoryEntryResponse{
			ID:            h.HistoryID,
			ApplicationID: h.ApplicationID,
			Date:          h.Date.Format(dateLayout),
			Description:   h.Description,
			Dimension:     h.Dimension,
			Amount:        h.Amount,
			Status:        h.Status,
			Opinion:       h.Opinion,
		})
	}

	return &dto.LedgerResponse{
		StaffID: staff.StaffID,
		Score:   staff.Score,
		History: entries,
	}, nil
}

// ────────────────────── Audit ──────────────────────

func (s *ledgerService) Audit(ctx context.Context) (*dto.LedgerAuditResponse, error) {
	sums, err := s.repo.PointHistory.SumByStaff(ctx)
	if err != nil {
		s.logger.Error("积分对账查询失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.LedgerAuditResponse{
		Checked:   len(sums),
		Drifts:    []dto.LedgerDrift{},
		CheckedAt: s.now().Format(dateTimeLayout),
	}
	for _, row := range sums {
		if row.Score == row.HistorySum {
			continue
		}
		resp.Drifts = append(resp.Drifts, dto.LedgerDrift{
			StaffID:    row.StaffID,
			EmployeeID: row.EmployeeID,
			Name:       row.Name,
			Score:      row.Score,
			HistorySum: row.HistorySum,
		})
	}
	return resp, nil
}
