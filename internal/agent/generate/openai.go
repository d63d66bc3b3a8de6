package generate

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/aqarat-core-poc/server/internal/agent/model"
)

// openaiGenerator adapts the OpenAI chat completion API to TextGenerator.
// Eino call options are accepted for signature compatibility and ignored;
// sampling parameters come from the generator config.
type openaiGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAI creates an OpenAI-backed generator.
func NewOpenAI(apiKey string, cfg model.GeneratorConfig) (TextGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
	}
	return &openaiGenerator{
		client:      openai.NewClient(apiKey),
		model:       cfg.Model,
		maxTokens:   int(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}, nil
}

func (g *openaiGenerator) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages:    toOpenAIMessages(input),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: empty choices")
	}

	msg := schema.AssistantMessage(resp.Choices[0].Message.Content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	return msg, nil
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, m := range input {
		if m == nil {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case schema.System:
			role = openai.ChatMessageRoleSystem
		case schema.Assistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
