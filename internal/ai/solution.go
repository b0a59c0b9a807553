package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/renatobalun/langchain-error/pkg/models"
)

// SolutionGenerator turns an ErrorAnalysis into a remediation plan.
type SolutionGenerator struct {
	provider models.LLMProvider
	timeout  time.Duration
}

func NewSolutionGenerator(provider models.LLMProvider, timeout time.Duration) *SolutionGenerator {
	return &SolutionGenerator{provider: provider, timeout: timeout}
}

// GenerateSolution sees only the analysis, never the original payload.
func (g *SolutionGenerator) GenerateSolution(ctx context.Context, analysis models.ErrorAnalysis) (models.Solution, error) {
	prompt, err := marshalPrompt(solutionPromptPrefix, analysis)
	if err != nil {
		return models.Solution{}, fmt.Errorf("encode analysis: %w", err)
	}

	solution, err := completeAs(ctx, g.provider, g.timeout, solutionShape, solutionInstructions, prompt)
	if err != nil {
		return models.Solution{}, fmt.Errorf("generate solution: %w", err)
	}
	return solution, nil
}
