package generate

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/aqarat-core-poc/server/internal/agent/model"
)

// TextGenerator is the single capability the dialogue graph needs from a
// language model. The variadic option slot matches the Eino chat model
// signature so provider implementations plug in directly.
type TextGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// Config holds provider selection plus the credentials the selected
// provider needs.
type Config struct {
	GeminiAPIKey  string
	GeminiBaseURL string
	OpenAIAPIKey  string
	Generator     model.GeneratorConfig
}

// New builds the configured provider. Unknown providers are an error at
// startup rather than a silent fallback.
func New(ctx context.Context, cfg Config) (TextGenerator, error) {
	switch cfg.Generator.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.Generator)
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Generator)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}
