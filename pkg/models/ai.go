// Package models contains shared data models used across the ingestion service.
package models

import (
	"context"
	"encoding/json"
)

// LLMProvider is the reasoning service every AI integration implements.
// Callers depend on this interface, never on a specific backend.
type LLMProvider interface {
	// Complete sends the instructions and conversation to the model and
	// returns its raw text output. Req.Schema describes the JSON shape the
	// output must take; callers validate the result themselves.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
	// Model returns the model identifier used for completions.
	Model() string
}

// CompletionRequest is the input to a single structured completion.
type CompletionRequest struct {
	Instructions string
	Conversation []Message
	SchemaName   string
	Schema       json.RawMessage
}

// Message is one turn of a conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Names of the structured shapes the pipeline asks the model for.
const (
	ShapeErrorAnalysis = "error_analysis"
	ShapeErrorSolution = "error_solution"
)
