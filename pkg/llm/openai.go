package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"

	"github.com/rotisserie/eris"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAICompatibleClient 调用 /chat/completions（非流式），兼容 OpenAI、DeepSeek 等服务。
type openAICompatibleClient struct {
	cfg    config.LLMConfig
	gen    GenerationParams
	client *http.Client
}

func newOpenAICompatibleClient(cfg config.LLMConfig) *openAICompatibleClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	return &openAICompatibleClient{
		cfg:    cfg,
		gen:    generationParams(cfg.Generation),
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAICompatibleClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:      false,
		Temperature: c.gen.Temperature,
		TopP:        c.gen.TopP,
		MaxTokens:   c.gen.MaxTokens,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "llm: marshal chat request")
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBytes))
	if err != nil {
		return "", eris.Wrap(err, "llm: build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[LLMClient] 调用 chat api 失败: %v", err)
		return "", eris.Wrapf(ErrProviderUnavailable, "llm: call chat api: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", eris.Wrapf(ErrProviderUnavailable, "llm: chat api returned %s: %s", resp.Status, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", eris.Wrapf(ErrProviderUnavailable, "llm: decode chat response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", eris.Wrap(ErrProviderUnavailable, "llm: chat api returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
