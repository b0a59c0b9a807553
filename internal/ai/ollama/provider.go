package ollama

import (
	"fmt"

	"github.com/renatobalun/langchain-error/internal/ai/llm"
	"github.com/renatobalun/langchain-error/internal/config"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

// NewProvider returns an Ollama-backed provider with the JSON output format
// forced on the server side.
func NewProvider(cfg config.OllamaConfig) (*llm.Provider, error) {
	client, err := lcollama.New(
		lcollama.WithServerURL(cfg.BaseURL),
		lcollama.WithModel(cfg.Model),
		lcollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return llm.New("ollama", cfg.Model, client), nil
}
