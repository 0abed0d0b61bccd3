package service

import (
	"context"

	"go.uber.org/zap"

	"culture-points/internal/dto"
	"culture-points/internal/model"
	"culture-points/internal/repository"
	"culture-points/internal/rubric"
)

const topN = 5

// AnalysisService 管理端数据分析
type AnalysisService interface {
	Overview(ctx context.Context) (*dto.AnalysisResponse, error)
}

type analysisService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnalysisService 创建 AnalysisService 实例
func NewAnalysisService(repo *repository.Repository, logger *zap.Logger) AnalysisService {
	return &analysisService{repo: repo, logger: logger}
}

func (s *analysisService) Overview(ctx context.Context) (*dto.AnalysisResponse, error) {
	resp := &dto.AnalysisResponse{}

	statusCounts, err := s.repo.Application.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计申请状态失败", zap.Error(err))
		return nil, err
	}
	for _, c := range statusCounts {
		resp.TotalApplications += c.Count
		switch c.Status {
		case model.ApplicationApproved:
			resp.ApprovedCount = c.Count
		case model.ApplicationPending:
			resp.PendingCount = c.Count
		case model.ApplicationRejected:
			resp.RejectedCount = c.Count
		}
	}

	dimCounts, err := s.repo.Application.CountByDimension(ctx)
	if err != nil {
		s.logger.Error("统计维度分布失败", zap.Error(err))
		return nil, err
	}
	resp.DimensionCounts = make([]dto.DimensionStat, 0, len(dimCounts))
	for _, c := range dimCounts {
		resp.DimensionCounts = append(resp.DimensionCounts, dto.DimensionStat{
			Dimension: c.Dimension,
			Label:     rubric.DimensionLabel(c.Dimension),
			Count:     c.Count,
		})
	}

	topScores, err := s.repo.Staff.TopBy(ctx, "score", topN)
	if err != nil {
		s.logger.Error("查询积分排行失败", zap.Error(err))
		return nil, err
	}
	topLogins, err := s.repo.Staff.TopBy(ctx, "login_count", topN)
	if err != nil {
		s.logger.Error("查询登录排行失败", zap.Error(err))
		return nil, err
	}

	resp.TopScores = make([]dto.RankItem, 0, len(topScores))
	for _, st := range topScores {
		resp.TopScores = append(resp.TopScores, dto.RankItem{
			StaffID: st.StaffID, EmployeeID: st.EmployeeID, Name: st.Name, Value: st.Score,
		})
	}
	resp.TopLogins = make([]dto.RankItem, 0, len(topLogins))
	for _, st := range topLogins {
		resp.TopLogins = append(resp.TopLogins, dto.RankItem{
			StaffID: st.StaffID, EmployeeID: st.EmployeeID, Name: st.Name, Value: st.LoginCount,
		})
	}

	return resp, nil
}
