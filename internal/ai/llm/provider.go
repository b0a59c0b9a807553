// Package llm adapts langchaingo chat models to models.LLMProvider.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/renatobalun/langchain-error/pkg/models"
	"github.com/tmc/langchaingo/llms"
)

var ErrEmptyResponse = errors.New("model returned no choices")

// Provider wraps any langchaingo model. The backend packages only differ in
// how they build the underlying llms.Model.
type Provider struct {
	name  string
	model string
	llm   llms.Model
	opts  []llms.CallOption
}

func New(name, model string, m llms.Model, opts ...llms.CallOption) *Provider {
	return &Provider{name: name, model: model, llm: m, opts: opts}
}

func (p *Provider) Name() string  { return p.name }
func (p *Provider) Model() string { return p.model }

// Complete sends a system message built from the instructions and schema,
// followed by the conversation, and returns the first choice's text.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	msgs := make([]llms.MessageContent, 0, len(req.Conversation)+1)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt(req)))
	for _, m := range req.Conversation {
		role := llms.ChatMessageTypeHuman
		if m.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}

	opts := append([]llms.CallOption{llms.WithTemperature(0)}, p.opts...)
	resp, err := p.llm.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", p.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s completion: %w", p.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Content, nil
}

func systemPrompt(req models.CompletionRequest) string {
	if len(req.Schema) == 0 {
		return req.Instructions
	}
	return fmt.Sprintf("%s\n\nYour reply must be a single JSON object named %q that validates against this JSON Schema:\n%s",
		req.Instructions, req.SchemaName, req.Schema)
}

var _ models.LLMProvider = (*Provider)(nil)
