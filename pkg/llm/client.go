// Package llm provides clients for single-turn calls to Large Language Models.
package llm

import (
	"context"
	"io"

	"filing-advisor-go/internal/config"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrProviderUnavailable 表示模型服务调用失败（网络、鉴权、限流或空响应）。
var ErrProviderUnavailable = eris.New("language model provider unavailable")

// Client defines the interface for an LLM client.
type Client interface {
	// Complete 发送一条 system 指令和一条 user 消息，返回模型的完整文本回答。
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewClient 按 llm.provider 创建客户端，并统一套上限流。
// 返回的 Client 若实现了 io.Closer，调用方负责关闭。
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	var inner Client
	switch cfg.Provider {
	case "openai", "":
		inner = newOpenAICompatibleClient(cfg)
	case "anthropic":
		inner = newAnthropicClient(cfg)
	case "vertex":
		c, err := newVertexClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		inner = c
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	return &limitedClient{inner: inner, limiter: newLimiter(cfg.RateLimit)}, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

type limitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

func (c *limitedClient) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "llm: rate limiter")
	}
	return c.inner.Complete(ctx, system, user)
}

func (c *limitedClient) Close() error {
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// GenerationParams 控制生成行为，nil 字段表示使用服务端默认值。
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

func generationParams(cfg config.LLMGenerationConfig) GenerationParams {
	var gp GenerationParams
	if cfg.Temperature != 0 {
		t := cfg.Temperature
		gp.Temperature = &t
	}
	if cfg.TopP != 0 {
		p := cfg.TopP
		gp.TopP = &p
	}
	if cfg.MaxTokens != 0 {
		m := cfg.MaxTokens
		gp.MaxTokens = &m
	}
	return gp
}
