package ingest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/renatobalun/langchain-error/internal/ai"
	"github.com/renatobalun/langchain-error/internal/ai/mock"
	"github.com/renatobalun/langchain-error/internal/ingest"
	"github.com/renatobalun/langchain-error/internal/store"
	"github.com/renatobalun/langchain-error/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory store.Store whose sessions only publish writes on
// Commit.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	errors    map[int64]*models.ErrorRecord
	analyses  map[int64]*models.AnalysisRecord
	solutions map[int64]*models.SolutionRecord
	sessions  []*memSession

	sessionErr  error
	saveErr     error
	analysisErr error
	commitErrAt int // fail the Nth commit (1-based) across sessions
	commits     int
}

func newMemStore() *memStore {
	return &memStore{
		errors:    map[int64]*models.ErrorRecord{},
		analyses:  map[int64]*models.AnalysisRecord{},
		solutions: map[int64]*models.SolutionRecord{},
	}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) NewSession(context.Context) (store.Session, error) {
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	s := &memSession{store: m}
	m.mu.Lock()
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()
	return s, nil
}

func (m *memStore) GetError(_ context.Context, id int64) (*models.ErrorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.errors[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListErrors(context.Context, store.ErrorFilter) ([]*models.ErrorRecord, int, error) {
	return nil, 0, nil
}

func (m *memStore) GetErrorAnalysis(_ context.Context, id int64) (*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.analyses[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetErrorSolution(_ context.Context, id int64) (*models.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.solutions[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

type memSession struct {
	store   *memStore
	pending []func()
	closed  int
}

func (s *memSession) SaveError(_ context.Context, rec *models.ErrorRecord) error {
	if s.store.saveErr != nil {
		return s.store.saveErr
	}
	s.store.mu.Lock()
	s.store.nextID++
	rec.ID = s.store.nextID
	s.store.mu.Unlock()
	rec.CreatedAt = time.Now()
	cp := *rec
	s.pending = append(s.pending, func() { s.store.errors[cp.ID] = &cp })
	return nil
}

func (s *memSession) SaveErrorAnalysis(_ context.Context, errorID int64, a models.ErrorAnalysis) (*models.AnalysisRecord, error) {
	if s.store.analysisErr != nil {
		return nil, s.store.analysisErr
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return nil, errors.New("confidence check violated")
	}
	if _, err := s.store.GetError(context.Background(), errorID); err != nil {
		return nil, store.ErrForeignKey
	}
	rec := &models.AnalysisRecord{ErrorID: errorID, ErrorAnalysis: a}
	s.pending = append(s.pending, func() { s.store.analyses[errorID] = rec })
	return rec, nil
}

func (s *memSession) SaveErrorSolution(_ context.Context, errorID int64, sol models.Solution) (*models.SolutionRecord, error) {
	rec := &models.SolutionRecord{ErrorID: errorID, Solution: sol}
	s.pending = append(s.pending, func() { s.store.solutions[errorID] = rec })
	return rec, nil
}

func (s *memSession) Commit(context.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.commits++
	if s.store.commits == s.store.commitErrAt {
		s.pending = nil
		return errors.New("commit failed")
	}
	for _, apply := range s.pending {
		apply()
	}
	s.pending = nil
	return nil
}

func (s *memSession) Close(context.Context) error {
	s.closed++
	s.pending = nil
	return nil
}

func databasePayload() map[string]any {
	return map[string]any{
		"error_id":    "err_20250101_120000_0",
		"error_name":  "DatabaseConnectionError",
		"status_code": float64(503),
		"detail":      "Unable to connect to database: connection pool exhausted",
		"severity":    "error",
		"context":     map[string]any{"pool_size": float64(20), "active_connections": float64(20)},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []ingest.Event
}

func (r *recorder) OnEvent(_ context.Context, ev ingest.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) stages() []ingest.Stage {
	var out []ingest.Stage
	for _, ev := range r.events {
		out = append(out, ev.Stage)
	}
	return out
}

func newService(st store.Store, p models.LLMProvider, rec *recorder) *ingest.Service {
	return ingest.NewService(st,
		ai.NewAnalyzer(p, time.Second),
		ai.NewSolutionGenerator(p, time.Second),
		ingest.WithObserver(rec),
	)
}

func TestIngest_DatabaseConnectionScenario(t *testing.T) {
	st := newMemStore()
	p := mock.NewScriptedProvider(map[string]string{
		models.ShapeErrorAnalysis: `{
			"probable_root_cause": "Connection pool exhausted by long-running queries",
			"impact_assessment": "All database-backed requests fail",
			"urgency": "high", "confidence": 0.82,
			"signals_used": ["status_code", "detail", "context.active_connections"],
			"immediate_actions": ["Increase pool size", "Kill idle transactions"],
			"deeper_investigation": ["Audit connection release paths"],
			"assumptions": []
		}`,
		models.ShapeErrorSolution: mock.CannedSolution,
	})
	rec := &recorder{}

	id, err := newService(st, p, rec).Ingest(context.Background(), databasePayload())
	require.NoError(t, err)
	assert.Positive(t, id)

	stored := st.errors[id]
	require.NotNil(t, stored)
	assert.Equal(t, "DatabaseConnectionError", stored.Name)
	assert.Equal(t, models.SeverityHigh, stored.Severity)
	require.NotNil(t, stored.StatusCode)
	assert.Equal(t, 503, *stored.StatusCode)
	assert.Equal(t, databasePayload(), stored.Payload)

	a := st.analyses[id]
	require.NotNil(t, a)
	assert.Equal(t, models.SeverityHigh, a.Urgency)
	assert.InDelta(t, 0.82, a.Confidence, 1e-9)

	sol := st.solutions[id]
	require.NotNil(t, sol)
	assert.Len(t, sol.DeploymentSteps, 3)

	assert.Equal(t, ingest.Stages, rec.stages())
	for _, ev := range rec.events {
		assert.NoError(t, ev.Err)
		assert.Equal(t, "DatabaseConnectionError", ev.ErrorName)
	}
	assert.Equal(t, id, rec.events[len(rec.events)-1].ErrorID)

	require.Len(t, st.sessions, 1)
	assert.Equal(t, 1, st.sessions[0].closed)
	assert.Equal(t, 2, st.commits)
}

func TestIngest_SolverSeesOnlyAnalysis(t *testing.T) {
	st := newMemStore()
	p := mock.NewMockProvider()

	_, err := newService(st, p, &recorder{}).Ingest(context.Background(), databasePayload())
	require.NoError(t, err)

	reqs := p.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, models.ShapeErrorAnalysis, reqs[0].SchemaName)
	assert.Contains(t, reqs[0].Conversation[0].Content, "connection pool exhausted")
	assert.Equal(t, models.ShapeErrorSolution, reqs[1].SchemaName)
	assert.NotContains(t, reqs[1].Conversation[0].Content, "err_20250101_120000_0")
	assert.Contains(t, reqs[1].Conversation[0].Content, "Simulated root cause")
}

func TestIngest_AnalysisShapeViolationKeepsOnlyError(t *testing.T) {
	st := newMemStore()
	p := mock.NewScriptedProvider(map[string]string{
		models.ShapeErrorAnalysis: `{"probable_root_cause": "x"}`,
		models.ShapeErrorSolution: mock.CannedSolution,
	})
	rec := &recorder{}

	id, err := newService(st, p, rec).Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrSchemaViolation)

	var serr *ingest.StageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ingest.StageAnalyzed, serr.Stage)
	assert.Equal(t, id, serr.ErrorID)
	assert.Positive(t, id)

	assert.Len(t, st.errors, 1)
	assert.Empty(t, st.analyses)
	assert.Empty(t, st.solutions)
	assert.Len(t, p.Requests(), 1, "solution generator never called")

	assert.Equal(t, []ingest.Stage{ingest.StageReceived, ingest.StageStoredError, ingest.StageAnalyzed}, rec.stages())
	assert.Error(t, rec.events[2].Err)
	assert.Equal(t, 1, st.sessions[0].closed)
}

func TestIngest_SolutionFailureRollsBackAnalysis(t *testing.T) {
	st := newMemStore()
	p := mock.NewScriptedProvider(map[string]string{
		models.ShapeErrorAnalysis: mock.CannedAnalysis,
		models.ShapeErrorSolution: `{"code_fixes": "none"}`,
	})

	id, err := newService(st, p, &recorder{}).Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrSchemaViolation)

	var serr *ingest.StageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ingest.StageSolved, serr.Stage)

	assert.Contains(t, st.errors, id)
	assert.Empty(t, st.analyses, "uncommitted analysis is discarded")
	assert.Empty(t, st.solutions)
}

func TestIngest_ConfidenceOutOfRangeNeverStored(t *testing.T) {
	st := newMemStore()
	p := mock.NewScriptedProvider(map[string]string{
		models.ShapeErrorAnalysis: `{
			"probable_root_cause": "x", "impact_assessment": "y", "urgency": "low",
			"confidence": 1.01, "signals_used": [], "immediate_actions": [],
			"deeper_investigation": [], "assumptions": []
		}`,
	})

	_, err := newService(st, p, &recorder{}).Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrSchemaViolation)
	assert.Empty(t, st.analyses)
}

func TestIngest_EmptyListsAccepted(t *testing.T) {
	st := newMemStore()
	p := mock.NewScriptedProvider(map[string]string{
		models.ShapeErrorAnalysis: `{
			"probable_root_cause": "x", "impact_assessment": "y", "urgency": "medium",
			"confidence": 0.4, "signals_used": [], "immediate_actions": [],
			"deeper_investigation": [], "assumptions": []
		}`,
		models.ShapeErrorSolution: mock.CannedSolution,
	})

	id, err := newService(st, p, &recorder{}).Ingest(context.Background(), databasePayload())
	require.NoError(t, err)
	a := st.analyses[id]
	require.NotNil(t, a)
	assert.Empty(t, a.SignalsUsed)
	assert.Empty(t, a.ImmediateActions)
}

func TestIngest_NoDeduplication(t *testing.T) {
	st := newMemStore()
	svc := newService(st, mock.NewMockProvider(), &recorder{})

	first, err := svc.Ingest(context.Background(), databasePayload())
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), databasePayload())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, st.errors, 2)
	assert.Len(t, st.analyses, 2)
}

func TestIngest_ProviderTimeout(t *testing.T) {
	st := newMemStore()
	svc := ingest.NewService(st,
		ai.NewAnalyzer(mock.NewTimeoutProvider(), 20*time.Millisecond),
		ai.NewSolutionGenerator(mock.NewTimeoutProvider(), 20*time.Millisecond),
	)

	id, err := svc.Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
	assert.Contains(t, st.errors, id)
}

func TestIngest_CallerCancellationDoesNotAbortRun(t *testing.T) {
	st := newMemStore()
	canned := mock.NewMockProvider()
	p := &mock.MockProvider{
		Name_: "mock-slow",
		CompleteFunc: func(ctx context.Context, req models.CompletionRequest) (string, error) {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			return canned.Complete(ctx, req)
		},
	}
	rec := &recorder{}

	// The caller gives up while the analysis call is in flight.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	id, err := newService(st, p, rec).Ingest(ctx, databasePayload())
	require.NoError(t, err)
	assert.Contains(t, st.errors, id)
	assert.Contains(t, st.analyses, id)
	assert.Contains(t, st.solutions, id)
	assert.Equal(t, ingest.Stages, rec.stages())
}

func TestIngest_StoreErrorFailsBeforeAnalysis(t *testing.T) {
	st := newMemStore()
	st.saveErr = errors.New("disk full")
	p := mock.NewMockProvider()
	rec := &recorder{}

	id, err := newService(st, p, rec).Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.Zero(t, id)

	var serr *ingest.StageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ingest.StageStoredError, serr.Stage)
	assert.Zero(t, serr.ErrorID)
	assert.Empty(t, p.Requests())
	assert.Equal(t, 1, st.sessions[0].closed)
}

func TestIngest_FirstCommitFails(t *testing.T) {
	st := newMemStore()
	st.commitErrAt = 1

	id, err := newService(st, mock.NewMockProvider(), &recorder{}).Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.Zero(t, id)
	assert.Empty(t, st.errors)
}

func TestIngest_FinalCommitFails(t *testing.T) {
	st := newMemStore()
	st.commitErrAt = 2

	id, err := newService(st, mock.NewMockProvider(), &recorder{}).Ingest(context.Background(), databasePayload())
	require.Error(t, err)

	var serr *ingest.StageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ingest.StageCommitted, serr.Stage)
	assert.Contains(t, st.errors, id)
	assert.Empty(t, st.analyses)
	assert.Empty(t, st.solutions)
}

func TestIngest_SessionUnavailable(t *testing.T) {
	st := newMemStore()
	st.sessionErr = errors.New("pool closed")

	_, err := newService(st, mock.NewMockProvider(), &recorder{}).Ingest(context.Background(), databasePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool closed")
}

func TestIngest_NilPayload(t *testing.T) {
	_, err := newService(newMemStore(), mock.NewMockProvider(), &recorder{}).Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, ingest.ErrInvalidPayload)
}

func TestIngest_UrgencyNormalized(t *testing.T) {
	st := newMemStore()
	analyzer := analyzerFunc(func(context.Context, map[string]any) (models.ErrorAnalysis, error) {
		return models.ErrorAnalysis{Urgency: " HIGH ", Confidence: 0.5}, nil
	})
	svc := ingest.NewService(st, analyzer, ai.NewSolutionGenerator(mock.NewMockProvider(), time.Second))

	id, err := svc.Ingest(context.Background(), databasePayload())
	require.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, st.analyses[id].Urgency)
}

type analyzerFunc func(ctx context.Context, payload map[string]any) (models.ErrorAnalysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, payload map[string]any) (models.ErrorAnalysis, error) {
	return f(ctx, payload)
}

func TestStageError_Message(t *testing.T) {
	err := &ingest.StageError{Stage: ingest.StageAnalyzed, ErrorID: 7, Err: ai.ErrInferenceTimeout}
	assert.Equal(t, "analyze error (error 7): ai inference timeout", err.Error())

	err = &ingest.StageError{Stage: ingest.StageStoredError, Err: errors.New("boom")}
	assert.Equal(t, "store error: boom", err.Error())
}
