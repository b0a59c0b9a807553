package models

import "time"

// ErrorAnalysis is the structured diagnosis the reasoning service must return.
// Every field is required in the model output; list fields may be empty.
type ErrorAnalysis struct {
	ProbableRootCause   string   `json:"probable_root_cause" jsonschema:"most likely underlying cause of the error"`
	ImpactAssessment    string   `json:"impact_assessment" jsonschema:"who and what is affected and how badly"`
	Urgency             Severity `json:"urgency" jsonschema:"how quickly this must be addressed: high, medium or low"`
	Confidence          float64  `json:"confidence" jsonschema:"confidence in the diagnosis between 0 and 1"`
	SignalsUsed         []string `json:"signals_used" jsonschema:"payload signals the diagnosis relies on"`
	ImmediateActions    []string `json:"immediate_actions" jsonschema:"actions to take right now"`
	DeeperInvestigation []string `json:"deeper_investigation" jsonschema:"follow-up investigation steps"`
	Assumptions         []string `json:"assumptions" jsonschema:"assumptions made where the payload is silent"`
}

// AnalysisRecord is a stored ErrorAnalysis. At most one exists per error.
type AnalysisRecord struct {
	ID      int64 `db:"id"       json:"id"`
	ErrorID int64 `db:"error_id" json:"error_id"`
	ErrorAnalysis
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
