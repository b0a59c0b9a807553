package openai

import (
	"fmt"

	"github.com/renatobalun/langchain-error/internal/ai/llm"
	"github.com/renatobalun/langchain-error/internal/config"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// NewProvider returns an OpenAI-backed provider running in JSON mode.
func NewProvider(cfg config.OpenAIConfig) (*llm.Provider, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
	}
	client, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return llm.New("openai", cfg.Model, client, llms.WithJSONMode()), nil
}
