package anthropic

import (
	"fmt"

	"github.com/renatobalun/langchain-error/internal/ai/llm"
	"github.com/renatobalun/langchain-error/internal/config"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
)

func NewProvider(cfg config.AnthropicConfig) (*llm.Provider, error) {
	client, err := lcanthropic.New(
		lcanthropic.WithToken(cfg.APIKey),
		lcanthropic.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic client: %w", err)
	}
	return llm.New("anthropic", cfg.Model, client), nil
}
