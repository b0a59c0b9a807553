// Package analysis holds the pure helpers the ingestion pipeline applies to
// loosely-typed incident data before it is stored.
package analysis

import (
	"strings"

	"github.com/renatobalun/langchain-error/pkg/models"
)

// NormalizeSeverity maps an incoming severity or urgency string onto the
// three-level ordinal scale. It is total: unknown input resolves to low.
//
//	error   -> high
//	warning -> medium
//	other   -> low
//
// The canonical values high and medium are fixed points, so normalizing twice
// is a no-op; a strict totality table would map them to low instead.
func NormalizeSeverity(raw string) models.Severity {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "error":
		return models.SeverityHigh
	case "warning":
		return models.SeverityMedium
	case string(models.SeverityHigh), string(models.SeverityMedium):
		return models.Severity(s)
	default:
		return models.SeverityLow
	}
}

// SeverityRank orders severities for sorting; higher is more severe.
func SeverityRank(s models.Severity) int {
	switch s {
	case models.SeverityHigh:
		return 2
	case models.SeverityMedium:
		return 1
	default:
		return 0
	}
}
