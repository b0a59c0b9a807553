package ingest

import (
	"errors"
	"fmt"
)

var ErrInvalidPayload = errors.New("invalid error payload")

// Stage is a point in an ingestion run. Stages are reached strictly in the
// order they are declared.
type Stage string

const (
	StageReceived       Stage = "RECEIVED"
	StageStoredError    Stage = "STORED_ERROR"
	StageAnalyzed       Stage = "ANALYZED"
	StageStoredAnalysis Stage = "STORED_ANALYSIS"
	StageSolved         Stage = "SOLVED"
	StageStoredSolution Stage = "STORED_SOLUTION"
	StageCommitted      Stage = "COMMITTED"
)

// Stages lists every stage in run order.
var Stages = []Stage{
	StageReceived, StageStoredError, StageAnalyzed, StageStoredAnalysis,
	StageSolved, StageStoredSolution, StageCommitted,
}

// action names the work that leads to the stage.
func (s Stage) action() string {
	switch s {
	case StageReceived:
		return "receive payload"
	case StageStoredError:
		return "store error"
	case StageAnalyzed:
		return "analyze error"
	case StageStoredAnalysis:
		return "store analysis"
	case StageSolved:
		return "generate solution"
	case StageStoredSolution:
		return "store solution"
	case StageCommitted:
		return "commit"
	default:
		return string(s)
	}
}

// StageError reports the stage a run failed to reach. ErrorID is set once
// the error record has been committed.
type StageError struct {
	Stage   Stage
	ErrorID int64
	Err     error
}

func (e *StageError) Error() string {
	if e.ErrorID > 0 {
		return fmt.Sprintf("%s (error %d): %v", e.Stage.action(), e.ErrorID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage.action(), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
