package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/renatobalun/langchain-error/pkg/models"
)

// CannedAnalysis is the analysis JSON NewMockProvider returns.
const CannedAnalysis = `{
  "probable_root_cause": "Simulated root cause from mock provider",
  "impact_assessment": "Mock impact assessment for testing",
  "urgency": "medium",
  "confidence": 0.85,
  "signals_used": ["error_name", "detail"],
  "immediate_actions": ["Check application logs for more context"],
  "deeper_investigation": ["Correlate with recent deployments"],
  "assumptions": []
}`

// CannedSolution is the solution JSON NewMockProvider returns.
const CannedSolution = `{
  "code_fixes": [
    {"file": "internal/service/handler.go", "description": "Guard against nil dependency", "code": "if dep == nil { return errNotReady }"}
  ],
  "configuration_changes": [
    {"key": "DB_POOL_SIZE", "value": "50", "reason": "Pool exhausted under load"}
  ],
  "deployment_steps": ["Deploy to staging", "Run smoke tests", "Roll out to production"],
  "rollback_plan": {
    "signals_to_monitor": ["error rate", "p99 latency"],
    "steps": ["Revert to previous release"]
  }
}`

// MockProvider satisfies models.LLMProvider for testing.
type MockProvider struct {
	Name_        string
	Model_       string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (string, error)

	mu       sync.Mutex
	requests []models.CompletionRequest
}

func (m *MockProvider) Name() string  { return m.Name_ }
func (m *MockProvider) Model() string { return m.Model_ }

func (m *MockProvider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Requests returns every request seen so far, oldest first.
func (m *MockProvider) Requests() []models.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CompletionRequest(nil), m.requests...)
}

// NewMockProvider returns a MockProvider that answers every known shape
// with a valid canned response.
func NewMockProvider() *MockProvider {
	return NewScriptedProvider(map[string]string{
		models.ShapeErrorAnalysis: CannedAnalysis,
		models.ShapeErrorSolution: CannedSolution,
	})
}

// NewScriptedProvider answers each request with the text registered for its
// schema name. Unknown names fail.
func NewScriptedProvider(responses map[string]string) *MockProvider {
	return &MockProvider{
		Name_:  "mock",
		Model_: "mock-v1",
		CompleteFunc: func(_ context.Context, req models.CompletionRequest) (string, error) {
			text, ok := responses[req.SchemaName]
			if !ok {
				return "", fmt.Errorf("mock: no response scripted for %q", req.SchemaName)
			}
			return text, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_:  "mock-failing",
		Model_: "mock-v1",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock-timeout",
		Model_: "mock-v1",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// ErrUnreachable is a convenience error for NewFailingProvider.
var ErrUnreachable = errors.New("mock: connection refused")

// Compile-time check that MockProvider implements LLMProvider.
var _ models.LLMProvider = (*MockProvider)(nil)
