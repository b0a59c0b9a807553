package vllm

import (
	"fmt"

	"github.com/renatobalun/langchain-error/internal/ai/llm"
	"github.com/renatobalun/langchain-error/internal/config"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// NewProvider talks to a vLLM server through its OpenAI-compatible API.
// vLLM ignores the token but the client requires one.
func NewProvider(cfg config.VLLMConfig) (*llm.Provider, error) {
	client, err := lcopenai.New(
		lcopenai.WithToken("EMPTY"),
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create vllm client: %w", err)
	}
	return llm.New("vllm", cfg.Model, client, llms.WithJSONMode()), nil
}
