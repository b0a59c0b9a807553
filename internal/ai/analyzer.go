package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/renatobalun/langchain-error/pkg/models"
)

// Analyzer turns a raw error payload into a structured ErrorAnalysis.
type Analyzer struct {
	provider models.LLMProvider
	timeout  time.Duration
}

func NewAnalyzer(provider models.LLMProvider, timeout time.Duration) *Analyzer {
	return &Analyzer{provider: provider, timeout: timeout}
}

// Analyze sends the payload to the reasoning service and returns its analysis.
// A response that does not match the analysis schema fails with
// ErrSchemaViolation; the result is never partially filled in.
func (a *Analyzer) Analyze(ctx context.Context, payload map[string]any) (models.ErrorAnalysis, error) {
	prompt, err := marshalPrompt(analysisPromptPrefix, payload)
	if err != nil {
		return models.ErrorAnalysis{}, fmt.Errorf("encode error payload: %w", err)
	}

	analysis, err := completeAs(ctx, a.provider, a.timeout, analysisShape, analysisInstructions, prompt)
	if err != nil {
		return models.ErrorAnalysis{}, fmt.Errorf("analyze error: %w", err)
	}
	return analysis, nil
}
