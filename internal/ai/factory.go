package ai

import (
	"fmt"

	"github.com/renatobalun/langchain-error/internal/ai/anthropic"
	"github.com/renatobalun/langchain-error/internal/ai/mock"
	"github.com/renatobalun/langchain-error/internal/ai/ollama"
	"github.com/renatobalun/langchain-error/internal/ai/openai"
	"github.com/renatobalun/langchain-error/internal/ai/vllm"
	"github.com/renatobalun/langchain-error/internal/config"
	"github.com/renatobalun/langchain-error/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama)
	case "vllm":
		return vllm.NewProvider(cfg.VLLM)
	case "openai":
		return openai.NewProvider(cfg.OpenAI)
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic)
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, vllm, openai, anthropic, mock", cfg.Provider)
	}
}
