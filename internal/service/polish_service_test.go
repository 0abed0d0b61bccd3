package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"culture-points/internal/dto"
	"culture-points/pkg/polish"
)

func TestPolish_Success_Cached(t *testing.T) {
	client := &mockPolisher{result: &polish.Result{Suggestion: "优化后的描述", Feedback: "结构清晰"}}
	svc := NewPolishService(client, time.Minute, zap.NewNop())

	req := &dto.PolishRequest{Title: "标题", Dimension: "teamwork", Description: "描述"}
	resp, err := svc.Polish(context.Background(), req)
	if err != nil {
		t.Fatalf("Polish 应成功: %v", err)
	}
	if resp.Suggestion != "优化后的描述" || resp.Fallback {
		t.Errorf("结果不符: %+v", resp)
	}

	if _, err := svc.Polish(context.Background(), req); err != nil {
		t.Fatalf("第二次 Polish 失败: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("相同输入应命中缓存，实际调用次数=%d", client.calls)
	}
}

func TestPolish_Fallback(t *testing.T) {
	client := &mockPolisher{err: polish.ErrUnavailable}
	svc := NewPolishService(client, time.Minute, zap.NewNop())

	resp, err := svc.Polish(context.Background(), &dto.PolishRequest{Title: "标题", Description: "描述"})
	if err != nil {
		t.Fatalf("外部服务失败时不应返回错误: %v", err)
	}
	if !resp.Fallback || resp.Suggestion != PolishFallbackSuggestion || resp.Feedback != PolishFallbackFeedback {
		t.Errorf("降级结果不符: %+v", resp)
	}

	// 降级结果不缓存，服务恢复后可重新获取
	client.err = nil
	client.result = &polish.Result{Suggestion: "ok", Feedback: "ok"}
	resp, _ = svc.Polish(context.Background(), &dto.PolishRequest{Title: "标题", Description: "描述"})
	if resp.Fallback {
		t.Error("服务恢复后不应继续返回降级结果")
	}
}

func TestPolish_NilClient(t *testing.T) {
	svc := NewPolishService(nil, 0, zap.NewNop())

	resp, err := svc.Polish(context.Background(), &dto.PolishRequest{Title: "标题", Description: "描述"})
	if err != nil || !resp.Fallback {
		t.Errorf("未配置外部服务时应返回降级结果: %v %+v", err, resp)
	}
}

func TestPolish_EmptyInput(t *testing.T) {
	client := &mockPolisher{}
	svc := NewPolishService(client, time.Minute, zap.NewNop())

	_, err := svc.Polish(context.Background(), &dto.PolishRequest{Title: "标题", Description: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
	if client.calls != 0 {
		t.Error("输入为空时不应调用外部服务")
	}
}
