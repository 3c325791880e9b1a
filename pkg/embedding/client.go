// Package embedding provides a client for interacting with embedding models.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

var (
	// ErrProviderUnavailable 表示 Embedding 服务不可达或返回了无法使用的响应。
	ErrProviderUnavailable = eris.New("embedding provider unavailable")
	// ErrDimensionMismatch 表示返回向量的维度与索引维度不一致，属于配置错误。
	ErrDimensionMismatch = eris.New("embedding dimension mismatch")
)

// Client defines the interface for an embedding client.
type Client interface {
	// CreateEmbedding 对单段文本求向量。
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	// CreateEmbeddings 批量求向量，返回顺序与输入一致。
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

type openAICompatibleClient struct {
	cfg     config.EmbeddingConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates an OpenAI-compatible embedding client.
func NewClient(cfg config.EmbeddingConfig) Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &openAICompatibleClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: newLimiter(cfg.RateLimit),
	}
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

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// CreateEmbedding calls the API for a single text.
func (c *openAICompatibleClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.call(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// CreateEmbeddings 按 batch_size 分批调用，任一批失败即整体失败。
func (c *openAICompatibleClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.call(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *openAICompatibleClient) call(ctx context.Context, input []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "embedding: rate limiter")
	}
	log.Debugf("[EmbeddingClient] 调用 Embedding API, model: %s, inputs: %d", c.cfg.Model, len(input))

	reqBytes, err := json.Marshal(embeddingRequest{
		Model:      c.cfg.Model,
		Input:      input,
		Dimensions: c.cfg.Dimensions,
	})
	if err != nil {
		return nil, eris.Wrap(err, "embedding: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, eris.Wrap(err, "embedding: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[EmbeddingClient] 调用 Embedding API 失败, error: %v", err)
		return nil, eris.Wrapf(ErrProviderUnavailable, "embedding: call api: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Errorf("[EmbeddingClient] Embedding API 返回非 200 状态码: %s", resp.Status)
		return nil, eris.Wrapf(ErrProviderUnavailable, "embedding: status %s: %s", resp.Status, string(body))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrapf(ErrProviderUnavailable, "embedding: decode response: %v", err)
	}
	if len(parsed.Data) != len(input) {
		return nil, eris.Wrapf(ErrProviderUnavailable, "embedding: expected %d vectors, got %d", len(input), len(parsed.Data))
	}

	vectors := make([][]float32, len(input))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(input) || vectors[d.Index] != nil {
			return nil, eris.Wrapf(ErrProviderUnavailable, "embedding: invalid index %d in response", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, eris.Wrap(ErrProviderUnavailable, "embedding: empty vector in response")
		}
		if len(d.Embedding) != config.EmbeddingDimensions {
			return nil, eris.Wrapf(ErrDimensionMismatch, "embedding: model %s returned %d dims, index expects %d",
				c.cfg.Model, len(d.Embedding), config.EmbeddingDimensions)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
