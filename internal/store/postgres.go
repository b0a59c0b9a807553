package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/renatobalun/langchain-error/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// NewSession acquires a dedicated connection from the pool.
func (s *PostgresStore) NewSession(ctx context.Context) (Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &pgSession{conn: conn}, nil
}

// --- Errors ---

const errorColumns = `id, name, status_code, severity, detail, payload, created_at, updated_at`

func scanError(row pgx.Row) (*models.ErrorRecord, error) {
	var r models.ErrorRecord
	if err := row.Scan(&r.ID, &r.Name, &r.StatusCode, &r.Severity, &r.Detail,
		&r.Payload, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) GetError(ctx context.Context, id int64) (*models.ErrorRecord, error) {
	rec, err := scanError(s.pool.QueryRow(ctx,
		`SELECT `+errorColumns+` FROM errors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get error: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListErrors(ctx context.Context, filter ErrorFilter) ([]*models.ErrorRecord, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.Severity != "" {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", argIdx))
		args = append(args, string(filter.Severity))
		argIdx++
	}
	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, filter.Name)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM errors"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count errors: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT `+errorColumns+` FROM errors%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list errors: %w", err)
	}
	defer rows.Close()

	records := []*models.ErrorRecord{}
	for rows.Next() {
		rec, err := scanError(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan error: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// --- Analyses ---

func (s *PostgresStore) GetErrorAnalysis(ctx context.Context, errorID int64) (*models.AnalysisRecord, error) {
	var r models.AnalysisRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, error_id, probable_root_cause, impact_assessment, urgency, confidence,
		        signals_used, immediate_actions, deeper_investigation, assumptions, created_at
		 FROM error_analyses WHERE error_id = $1`, errorID,
	).Scan(&r.ID, &r.ErrorID, &r.ProbableRootCause, &r.ImpactAssessment, &r.Urgency, &r.Confidence,
		&r.SignalsUsed, &r.ImmediateActions, &r.DeeperInvestigation, &r.Assumptions, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get error analysis: %w", err)
	}
	return &r, nil
}

// --- Solutions ---

func (s *PostgresStore) GetErrorSolution(ctx context.Context, errorID int64) (*models.SolutionRecord, error) {
	var r models.SolutionRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, error_id, code_fixes, configuration_changes, deployment_steps, rollback_plan, created_at
		 FROM error_solutions WHERE error_id = $1`, errorID,
	).Scan(&r.ID, &r.ErrorID, &r.CodeFixes, &r.ConfigurationChanges, &r.DeploymentSteps,
		&r.RollbackPlan, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get error solution: %w", err)
	}
	return &r, nil
}

// jsonList encodes a list column, storing nil as an empty JSON array.
func jsonList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// mapWriteError translates constraint violations into store sentinels.
func mapWriteError(op string, err error) error {
	switch {
	case isDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	case isForeignKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrForeignKey)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}
