package llm

import (
	"context"
	"strings"

	"filing-advisor-go/internal/config"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultAnthropicMaxTokens = 2048

type anthropicClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	gen       GenerationParams
}

func newAnthropicClient(cfg config.LLMConfig, extra ...option.RequestOption) *anthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	maxTokens := int64(cfg.Generation.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &anthropicClient{
		client:    sdk.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		gen:       generationParams(cfg.Generation),
	}
}

func (c *anthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(user))},
	}
	if c.gen.Temperature != nil {
		params.Temperature = sdk.Float(*c.gen.Temperature)
	}
	if c.gen.TopP != nil {
		params.TopP = sdk.Float(*c.gen.TopP)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrapf(ErrProviderUnavailable, "anthropic: create message: %v", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", eris.Wrap(ErrProviderUnavailable, "anthropic: response has no text content")
	}
	return b.String(), nil
}
