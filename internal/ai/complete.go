package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/renatobalun/langchain-error/internal/ai/llm"
	"github.com/renatobalun/langchain-error/pkg/models"
)

// completeAs runs one structured completion and decodes the reply into T.
// The timeout bounds the provider call only.
func completeAs[T any](ctx context.Context, provider models.LLMProvider, timeout time.Duration, s *shape[T], instructions, prompt string) (T, error) {
	var zero T

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := provider.Complete(callCtx, models.CompletionRequest{
		Instructions: instructions,
		Conversation: []models.Message{{Role: models.RoleUser, Content: prompt}},
		SchemaName:   s.name,
		Schema:       s.raw,
	})
	if err != nil {
		return zero, classifyProviderError(ctx, callCtx, err)
	}

	return s.decode(text)
}

// classifyProviderError maps a provider failure onto the package sentinels.
// A caller cancellation is passed through untouched.
func classifyProviderError(parent, call context.Context, err error) error {
	switch {
	case errors.Is(err, ErrInferenceTimeout),
		errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, ErrInvalidResponse):
		return err
	case parent.Err() != nil:
		return fmt.Errorf("completion aborted: %w", parent.Err())
	case errors.Is(call.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	case errors.Is(err, llm.ErrEmptyResponse):
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}

func marshalPrompt(prefix string, v any) (string, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return prefix + string(body), nil
}
