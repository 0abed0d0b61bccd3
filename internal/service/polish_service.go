package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"culture-points/internal/dto"
	"culture-points/internal/rubric"
)

// 外部服务不可用时的固定提示
const (
	PolishFallbackSuggestion = "AI 优化暂不可用，请手动编辑"
	PolishFallbackFeedback   = "由于系统繁忙，暂时无法提供详细建议。建议您检查是否包含了完整的背景、行动和结果（STAR法则）。"
)

// PolishService AI 润色：外部服务失败时降级为固定提示，不向调用方返回错误
type PolishService interface {
	Polish(ctx context.Context, req *dto.PolishRequest) (*dto.PolishResponse, error)
}

type polishService struct {
	client Polisher
	cache  *cache.Cache
	logger *zap.Logger
}

// NewPolishService 创建 PolishService 实例，client 为 nil 时始终返回降级结果
func NewPolishService(client Polisher, cacheTTL time.Duration, logger *zap.Logger) PolishService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &polishService{
		client: client,
		cache:  cache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

func (s *polishService) Polish(ctx context.Context, req *dto.PolishRequest) (*dto.PolishResponse, error) {
	title := strings.TrimSpace(req.Title)
	desc := strings.TrimSpace(req.Description)
	if title == "" || desc == "" {
		return nil, fmt.Errorf("%w: 请先填写案例标题和描述", ErrValidation)
	}

	dimension := "通用价值观"
	if req.Dimension != "" {
		dimension = rubric.DimensionLabel(req.Dimension)
	}

	key := polishCacheKey(title, dimension, desc)
	if v, found := s.cache.Get(key); found {
		return v.(*dto.PolishResponse), nil
	}

	if s.client == nil {
		return fallbackPolish(), nil
	}

	result, err := s.client.Polish(ctx, title, dimension, desc)
	if err != nil {
		s.logger.Warn("AI 润色不可用，返回降级结果", zap.Error(err))
		return fallbackPolish(), nil
	}

	resp := &dto.PolishResponse{
		Suggestion: result.Suggestion,
		Feedback:   result.Feedback,
	}
	s.cache.Set(key, resp, cache.DefaultExpiration)
	return resp, nil
}

func fallbackPolish() *dto.PolishResponse {
	return &dto.PolishResponse{
		Suggestion: PolishFallbackSuggestion,
		Feedback:   PolishFallbackFeedback,
		Fallback:   true,
	}
}

func polishCacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
