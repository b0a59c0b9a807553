package models

import "time"

// Solution is the remediation plan the reasoning service must return.
type Solution struct {
	CodeFixes            []CodeFix             `json:"code_fixes" jsonschema:"concrete code changes, each scoped to one file"`
	ConfigurationChanges []ConfigurationChange `json:"configuration_changes" jsonschema:"explicit configuration changes"`
	DeploymentSteps      []string              `json:"deployment_steps" jsonschema:"ordered deployment procedure"`
	RollbackPlan         RollbackPlan          `json:"rollback_plan" jsonschema:"how to roll back and when"`
}

type CodeFix struct {
	File        string `json:"file" jsonschema:"path of the file to change"`
	Description string `json:"description" jsonschema:"what the change does"`
	Code        string `json:"code" jsonschema:"the code to apply"`
}

type ConfigurationChange struct {
	Key    string `json:"key" jsonschema:"configuration key"`
	Value  string `json:"value" jsonschema:"new value"`
	Reason string `json:"reason" jsonschema:"why the value changes"`
}

type RollbackPlan struct {
	SignalsToMonitor []string `json:"signals_to_monitor" jsonschema:"observable signals that justify rolling back"`
	Steps            []string `json:"steps" jsonschema:"ordered rollback steps"`
}

// SolutionRecord is a stored Solution. At most one exists per error.
type SolutionRecord struct {
	ID      int64 `db:"id"       json:"id"`
	ErrorID int64 `db:"error_id" json:"error_id"`
	Solution
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
