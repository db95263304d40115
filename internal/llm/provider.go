package llm

import (
	"fmt"

	llmdomain "github.com/lexlapax/go-llms/pkg/llm/domain"
	"github.com/lexlapax/go-llms/pkg/llm/provider"

	"github.com/olamide-oso/docfields/internal/common"
)

// NewProvider builds the configured go-llms provider. Both agents share one
// provider; the model must be vision-capable for image documents.
func NewProvider(cfg common.LLMConfig) (llmdomain.Provider, error) {
	if cfg.APIKey == "" {
		return nil, common.NewAppError(common.CodeConfig, "LLM API key not set", common.ErrInvalidInput)
	}
	switch cfg.Provider {
	case "openai", "":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o"
		}
		return provider.NewOpenAIProvider(cfg.APIKey, model), nil
	case "anthropic":
		model := cfg.Model
		if model == "" {
			model = "claude-3-5-sonnet-20241022"
		}
		return provider.NewAnthropicProvider(cfg.APIKey, model), nil
	case "gemini":
		model := cfg.Model
		if model == "" {
			model = "gemini-1.5-flash"
		}
		return provider.NewGeminiProvider(cfg.APIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
