// Package llm 封装生成式模型调用，服务层只依赖 Provider 接口
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured 未配置 API Key，调用方应视为模型不可用并走降级逻辑
var ErrNotConfigured = errors.New("llm: provider not configured")

// ErrEmptyResponse 模型返回了空内容
var ErrEmptyResponse = errors.New("llm: empty response")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn 一轮历史对话
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Prompt 一次生成请求
type Prompt struct {
	System    string
	History   []Turn
	Text      string
	Image     []byte
	ImageMIME string
	// JSON 要求模型只输出 JSON 对象
	JSON bool
}

// Provider 生成式模型
type Provider interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Name() string
}

// ProviderFunc 便于测试时注入
type ProviderFunc func(ctx context.Context, p Prompt) (string, error)

func (f ProviderFunc) Generate(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }
func (f ProviderFunc) Name() string                                           { return "func" }

// Config provider 配置
type Config struct {
	Provider string // gemini | openai
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// NewProvider 根据配置创建 provider，APIKey 为空时返回 ErrNotConfigured
func NewProvider(ctx context.Context, cfg Config, log *logrus.Entry) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	var (
		p   Provider
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		p, err = NewGeminiProvider(ctx, cfg, log)
	case "openai":
		p = NewOpenAIProvider(cfg, log)
	default:
		return nil, errors.New("llm: unsupported provider " + cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

// WithTimeout 为每次调用加上超时
func WithTimeout(p Provider, timeout time.Duration) Provider {
	return &timeoutProvider{Provider: p, timeout: timeout}
}

func (t *timeoutProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Provider.Generate(ctx, p)
}

// StripCodeFence 去掉模型有时包裹在 JSON 外面的 ``` 代码块
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
