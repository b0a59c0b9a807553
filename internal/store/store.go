package store

import (
	"context"
	"errors"

	"github.com/renatobalun/langchain-error/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrForeignKey = errors.New("referenced row does not exist")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// NewSession acquires a connection for one ingestion run. The caller
	// must Close it.
	NewSession(ctx context.Context) (Session, error)

	GetError(ctx context.Context, id int64) (*models.ErrorRecord, error)
	ListErrors(ctx context.Context, filter ErrorFilter) ([]*models.ErrorRecord, int, error)
	GetErrorAnalysis(ctx context.Context, errorID int64) (*models.AnalysisRecord, error)
	GetErrorSolution(ctx context.Context, errorID int64) (*models.SolutionRecord, error)
}

// Session is a unit of work bound to a single connection. Writes join an
// open transaction that only Commit makes durable.
type Session interface {
	SaveError(ctx context.Context, rec *models.ErrorRecord) error
	SaveErrorAnalysis(ctx context.Context, errorID int64, a models.ErrorAnalysis) (*models.AnalysisRecord, error)
	SaveErrorSolution(ctx context.Context, errorID int64, s models.Solution) (*models.SolutionRecord, error)

	// Commit makes pending writes durable. It is a no-op when nothing is pending.
	Commit(ctx context.Context) error
	// Close rolls back pending writes and releases the connection. Safe to
	// call more than once.
	Close(ctx context.Context) error
}

type ErrorFilter struct {
	Severity models.Severity
	Name     string
	Page     int
	Limit    int
}
