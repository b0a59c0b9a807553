package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/renatobalun/langchain-error/internal/ai/mock"
	"github.com/renatobalun/langchain-error/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(shape string) models.CompletionRequest {
	return models.CompletionRequest{
		Instructions: "analyze",
		Conversation: []models.Message{{Role: models.RoleUser, Content: "{}"}},
		SchemaName:   shape,
	}
}

func TestNewMockProvider_Name(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
	assert.Equal(t, "mock-v1", p.Model())
}

func TestNewMockProvider_CannedAnalysisIsJSON(t *testing.T) {
	p := mock.NewMockProvider()
	text, err := p.Complete(context.Background(), request(models.ShapeErrorAnalysis))
	require.NoError(t, err)

	var a models.ErrorAnalysis
	require.NoError(t, json.Unmarshal([]byte(text), &a))
	assert.Equal(t, models.SeverityMedium, a.Urgency)
	assert.InDelta(t, 0.85, a.Confidence, 0.001)
	assert.NotNil(t, a.Assumptions)
}

func TestNewMockProvider_CannedSolutionIsJSON(t *testing.T) {
	p := mock.NewMockProvider()
	text, err := p.Complete(context.Background(), request(models.ShapeErrorSolution))
	require.NoError(t, err)

	var s models.Solution
	require.NoError(t, json.Unmarshal([]byte(text), &s))
	require.Len(t, s.CodeFixes, 1)
	assert.Len(t, s.DeploymentSteps, 3)
	assert.NotEmpty(t, s.RollbackPlan.Steps)
}

func TestNewMockProvider_RecordsRequests(t *testing.T) {
	p := mock.NewMockProvider()
	_, _ = p.Complete(context.Background(), request(models.ShapeErrorAnalysis))
	_, _ = p.Complete(context.Background(), request(models.ShapeErrorSolution))

	reqs := p.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, models.ShapeErrorSolution, reqs[1].SchemaName)
}

func TestNewScriptedProvider_UnknownShape(t *testing.T) {
	p := mock.NewScriptedProvider(map[string]string{})
	_, err := p.Complete(context.Background(), request("other"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other")
}

func TestNewFailingProvider(t *testing.T) {
	p := mock.NewFailingProvider(mock.ErrUnreachable)
	assert.Equal(t, "mock-failing", p.Name())

	_, err := p.Complete(context.Background(), request(models.ShapeErrorAnalysis))
	assert.True(t, errors.Is(err, mock.ErrUnreachable))
}

func TestNewTimeoutProvider(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Complete(ctx, request(models.ShapeErrorAnalysis))
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 2*time.Second)
}
