// Package ingest drives one error payload through storage, analysis and
// solution generation.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/renatobalun/langchain-error/internal/analysis"
	"github.com/renatobalun/langchain-error/internal/store"
	"github.com/renatobalun/langchain-error/pkg/models"
)

const tracerName = "github.com/renatobalun/langchain-error/internal/ingest"

// Analyzer produces a structured analysis from a raw payload.
type Analyzer interface {
	Analyze(ctx context.Context, payload map[string]any) (models.ErrorAnalysis, error)
}

// SolutionGenerator produces a remediation plan from an analysis.
type SolutionGenerator interface {
	GenerateSolution(ctx context.Context, a models.ErrorAnalysis) (models.Solution, error)
}

// Service runs ingestions. It holds no per-run state and is safe for
// concurrent use.
type Service struct {
	store    store.Store
	analyzer Analyzer
	solver   SolutionGenerator
	observer Observer
	tracer   trace.Tracer
}

type Option func(*Service)

// WithObserver sets the observer notified of every stage transition.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func NewService(st store.Store, analyzer Analyzer, solver SolutionGenerator, opts ...Option) *Service {
	s := &Service{
		store:    st,
		analyzer: analyzer,
		solver:   solver,
		observer: nopObserver,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run carries the state of a single ingestion.
type run struct {
	svc     *Service
	start   time.Time
	errorID int64
	name    string
	sev     string
}

// Ingest stores the payload as an error record, commits it, then analyzes
// it, generates a solution and commits both together. It returns the error
// record's ID. A failure after the first commit leaves the error record in
// place and is reported as a *StageError carrying that ID.
//
// A started run is not cancelled with its caller: ctx contributes values and
// the trace parent only, and each inference call is bounded by its own timeout.
func (s *Service) Ingest(ctx context.Context, payload map[string]any) (int64, error) {
	if payload == nil {
		return 0, ErrInvalidPayload
	}
	ctx = context.WithoutCancel(ctx)

	ctx, span := s.tracer.Start(ctx, "ingest.Ingest")
	defer span.End()

	rec := RecordFromPayload(payload)
	r := &run{svc: s, start: time.Now(), name: rec.Name, sev: string(rec.Severity)}
	span.SetAttributes(
		attribute.String("error.name", rec.Name),
		attribute.String("error.severity", string(rec.Severity)),
	)
	r.emit(ctx, StageReceived, nil)

	sess, err := s.store.NewSession(ctx)
	if err != nil {
		return 0, r.fail(ctx, span, StageStoredError, fmt.Errorf("open session: %w", err))
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			slog.Warn("failed to close storage session", "error", err, "error_id", r.errorID)
		}
	}()

	err = r.step(ctx, StageStoredError, func(ctx context.Context) error {
		if err := sess.SaveError(ctx, rec); err != nil {
			return err
		}
		return sess.Commit(ctx)
	})
	if err != nil {
		return 0, r.finish(span, err)
	}
	r.errorID = rec.ID
	span.SetAttributes(attribute.Int64("error.id", rec.ID))
	r.emit(ctx, StageStoredError, nil)

	var result models.ErrorAnalysis
	err = r.step(ctx, StageAnalyzed, func(ctx context.Context) error {
		var err error
		result, err = s.analyzer.Analyze(ctx, payload)
		return err
	})
	if err != nil {
		return rec.ID, r.finish(span, err)
	}
	result.Urgency = analysis.NormalizeSeverity(string(result.Urgency))
	r.emit(ctx, StageAnalyzed, nil)

	err = r.step(ctx, StageStoredAnalysis, func(ctx context.Context) error {
		_, err := sess.SaveErrorAnalysis(ctx, rec.ID, result)
		return err
	})
	if err != nil {
		return rec.ID, r.finish(span, err)
	}
	r.emit(ctx, StageStoredAnalysis, nil)

	var solution models.Solution
	err = r.step(ctx, StageSolved, func(ctx context.Context) error {
		var err error
		solution, err = s.solver.GenerateSolution(ctx, result)
		return err
	})
	if err != nil {
		return rec.ID, r.finish(span, err)
	}
	r.emit(ctx, StageSolved, nil)

	err = r.step(ctx, StageStoredSolution, func(ctx context.Context) error {
		_, err := sess.SaveErrorSolution(ctx, rec.ID, solution)
		return err
	})
	if err != nil {
		return rec.ID, r.finish(span, err)
	}
	r.emit(ctx, StageStoredSolution, nil)

	if err := r.step(ctx, StageCommitted, sess.Commit); err != nil {
		return rec.ID, r.finish(span, err)
	}
	r.emit(ctx, StageCommitted, nil)

	return rec.ID, nil
}

// step runs fn in a child span. On failure it reports the stage that was not
// reached and returns the error as a *StageError.
func (r *run) step(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := r.svc.tracer.Start(ctx, "ingest."+stage.action())
	defer span.End()

	if err := fn(ctx); err != nil {
		return r.fail(ctx, span, stage, err)
	}
	return nil
}

func (r *run) fail(ctx context.Context, span trace.Span, stage Stage, err error) error {
	serr := &StageError{Stage: stage, ErrorID: r.errorID, Err: err}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.emit(ctx, stage, serr)
	return serr
}

// finish marks the run's root span failed.
func (r *run) finish(span trace.Span, err error) error {
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (r *run) emit(ctx context.Context, stage Stage, err error) {
	r.svc.observer.OnEvent(ctx, Event{
		Stage:     stage,
		ErrorID:   r.errorID,
		ErrorName: r.name,
		Severity:  r.sev,
		Elapsed:   time.Since(r.start),
		Err:       err,
	})
}
