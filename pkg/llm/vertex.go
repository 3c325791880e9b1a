package llm

import (
	"context"
	"strings"

	"filing-advisor-go/internal/config"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rotisserie/eris"
)

// vertexClient 通过 Vertex AI 调用 Gemini。
type vertexClient struct {
	client    *genai.Client
	modelName string
	gen       GenerationParams
}

func newVertexClient(ctx context.Context, cfg config.LLMConfig) (*vertexClient, error) {
	if cfg.Vertex.ProjectID == "" || cfg.Vertex.Region == "" {
		return nil, eris.New("llm: vertex project_id and region are required")
	}
	client, err := genai.NewClient(ctx, cfg.Vertex.ProjectID, cfg.Vertex.Region)
	if err != nil {
		return nil, eris.Wrap(err, "llm: genai.NewClient")
	}
	return &vertexClient{
		client:    client,
		modelName: cfg.Model,
		gen:       generationParams(cfg.Generation),
	}, nil
}

func (c *vertexClient) Complete(ctx context.Context, system, user string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if c.gen.Temperature != nil {
		model.SetTemperature(float32(*c.gen.Temperature))
	}
	if c.gen.TopP != nil {
		model.SetTopP(float32(*c.gen.TopP))
	}
	if c.gen.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*c.gen.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", eris.Wrapf(ErrProviderUnavailable, "vertex: generate content: %v", err)
	}
	text := extractVertexText(resp)
	if text == "" {
		return "", eris.Wrap(ErrProviderUnavailable, "vertex: response has no text content")
	}
	return text, nil
}

func (c *vertexClient) Close() error {
	return c.client.Close()
}

func extractVertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
