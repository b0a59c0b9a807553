package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/renatobalun/langchain-error/pkg/models"
)

var errSessionClosed = errors.New("session closed")

// rollbackTimeout bounds the rollback Close issues when the caller's
// context is already done.
const rollbackTimeout = 5 * time.Second

// pgSession holds one pooled connection and, while writes are pending, one
// transaction on it.
type pgSession struct {
	conn   *pgxpool.Conn
	tx     pgx.Tx
	closed bool
}

func (s *pgSession) begin(ctx context.Context) (pgx.Tx, error) {
	if s.closed {
		return nil, errSessionClosed
	}
	if s.tx == nil {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}
		s.tx = tx
	}
	return s.tx, nil
}

func (s *pgSession) SaveError(ctx context.Context, rec *models.ErrorRecord) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	payload := rec.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode error payload: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO errors (name, status_code, severity, detail, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		rec.Name, rec.StatusCode, string(rec.Severity), rec.Detail, body,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return mapWriteError("save error", err)
	}
	rec.Payload = payload
	return nil
}

func (s *pgSession) SaveErrorAnalysis(ctx context.Context, errorID int64, a models.ErrorAnalysis) (*models.AnalysisRecord, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	lists := [][]string{a.SignalsUsed, a.ImmediateActions, a.DeeperInvestigation, a.Assumptions}
	encoded := make([][]byte, len(lists))
	for i, l := range lists {
		if encoded[i], err = jsonList(l); err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
	}

	rec := &models.AnalysisRecord{ErrorID: errorID, ErrorAnalysis: a}
	err = tx.QueryRow(ctx,
		`INSERT INTO error_analyses (error_id, probable_root_cause, impact_assessment, urgency, confidence,
		                             signals_used, immediate_actions, deeper_investigation, assumptions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		errorID, a.ProbableRootCause, a.ImpactAssessment, string(a.Urgency), a.Confidence,
		encoded[0], encoded[1], encoded[2], encoded[3],
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, mapWriteError("save error analysis", err)
	}

	rec.SignalsUsed = emptyIfNil(a.SignalsUsed)
	rec.ImmediateActions = emptyIfNil(a.ImmediateActions)
	rec.DeeperInvestigation = emptyIfNil(a.DeeperInvestigation)
	rec.Assumptions = emptyIfNil(a.Assumptions)
	return rec, nil
}

func (s *pgSession) SaveErrorSolution(ctx context.Context, errorID int64, sol models.Solution) (*models.SolutionRecord, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	sol.CodeFixes = emptyIfNil(sol.CodeFixes)
	sol.ConfigurationChanges = emptyIfNil(sol.ConfigurationChanges)
	sol.DeploymentSteps = emptyIfNil(sol.DeploymentSteps)
	sol.RollbackPlan.SignalsToMonitor = emptyIfNil(sol.RollbackPlan.SignalsToMonitor)
	sol.RollbackPlan.Steps = emptyIfNil(sol.RollbackPlan.Steps)

	fixes, err := json.Marshal(sol.CodeFixes)
	if err != nil {
		return nil, fmt.Errorf("encode code fixes: %w", err)
	}
	changes, err := json.Marshal(sol.ConfigurationChanges)
	if err != nil {
		return nil, fmt.Errorf("encode configuration changes: %w", err)
	}
	steps, err := json.Marshal(sol.DeploymentSteps)
	if err != nil {
		return nil, fmt.Errorf("encode deployment steps: %w", err)
	}
	rollback, err := json.Marshal(sol.RollbackPlan)
	if err != nil {
		return nil, fmt.Errorf("encode rollback plan: %w", err)
	}

	rec := &models.SolutionRecord{ErrorID: errorID, Solution: sol}
	err = tx.QueryRow(ctx,
		`INSERT INTO error_solutions (error_id, code_fixes, configuration_changes, deployment_steps, rollback_plan)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		errorID, fixes, changes, steps, rollback,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, mapWriteError("save error solution", err)
	}
	return rec, nil
}

func (s *pgSession) Commit(ctx context.Context) error {
	if s.closed {
		return errSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError("commit", err)
	}
	return nil
}

func (s *pgSession) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.conn.Release()

	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil

	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
