// Package polish 调用外部生成式文本服务（Gemini generateContent REST 接口）润色案例描述。
package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"culture-points/config"
)

// ErrUnavailable 润色服务不可用（未启用、超时、网络错误或返回内容无法解析）
var ErrUnavailable = errors.New("润色服务不可用")

// Result 润色结果
type Result struct {
	Feedback   string `json:"feedback_points"`
	Suggestion string `json:"optimized_content"`
}

// Client generateContent 客户端，单次调用，不做重试
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	enabled    bool
}

// NewClient 根据配置创建客户端
func NewClient(cfg *config.PolishConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		enabled:    cfg.Enabled,
	}
}

// ── 请求 / 响应结构 ──

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var resultSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"feedback_points": {
			Type:        "STRING",
			Description: "包含一句话肯定和分点改进建议的文本（支持换行符）",
		},
		"optimized_content": {
			Type:        "STRING",
			Description: "最终优化后的完整案例描述内容",
		},
	},
	Required: []string{"feedback_points", "optimized_content"},
}

// Polish 请求润色建议，任何失败均返回包装后的 ErrUnavailable
func (c *Client) Polish(ctx context.Context, title, dimension, description string) (*Result, error) {
	if !c.enabled {
		return nil, fmt.Errorf("%w: 未启用", ErrUnavailable)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPrompt(title, dimension, description)}},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   resultSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.endpoint, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: 读取响应失败: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 状态码 %d", ErrUnavailable, resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("%w: 响应解析失败: %v", ErrUnavailable, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: 响应为空", ErrUnavailable)
	}

	var result Result
	text := strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: 结果不是合法 JSON: %v", ErrUnavailable, err)
	}
	if result.Suggestion == "" {
		return nil, fmt.Errorf("%w: 缺少 optimized_content", ErrUnavailable)
	}
	return &result, nil
}

func buildPrompt(title, dimension, description string) string {
	var b strings.Builder
	b.WriteString("你是一个专业的案例分析优化AI助手，专门帮助用户改进他们撰写的“案例详细描述”。")
	b.WriteString("请基于用户提供的案例内容，给出具体、可操作、建设性的优化建议，让案例描述更清晰、专业、有说服力。\n\n")
	b.WriteString("请从以下几个方面分析：\n")
	b.WriteString("1. 结构清晰度：是否具备清晰逻辑结构（如STAR法则）？\n")
	b.WriteString("2. 内容完整性：是否包含背景、挑战、行动、量化结果、个人贡献？\n")
	b.WriteString("3. 语言表达：是否专业、简洁、积极？\n")
	b.WriteString("4. 突出亮点：贡献、创新点、影响力是否充分突出？\n")
	b.WriteString("5. 针对性与说服力：是否能有效体现核心能力？\n\n")
	b.WriteString("输出要求：feedback_points 先用一句话肯定用户已写的内容，再分点列出改进建议；")
	b.WriteString("optimized_content 为应用全部建议后重写的完整描述，保持原意，不添加虚构内容。\n\n")
	fmt.Fprintf(&b, "案例标题: %s\n价值观维度: %s\n\n用户提交的描述内容：\n%s\n", title, dimension, description)
	return b.String()
}
