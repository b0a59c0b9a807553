package generator

import (
	"fmt"
	"time"
)

// BuildPayload renders catalog entry index as a webhook body stamped with now.
func BuildPayload(e Entry, index int, now time.Time) map[string]any {
	checks := e.SuggestedChecks
	if checks == nil {
		checks = []string{}
	}
	return map[string]any{
		"error_id":         fmt.Sprintf("err_%s_%d", now.Format("20060102_150405"), index),
		"timestamp":        now.Format(time.RFC3339Nano),
		"error_name":       e.Name,
		"status_code":      e.StatusCode,
		"detail":           e.Detail,
		"severity":         e.Severity,
		"context":          orEmpty(e.Context),
		"metrics":          orEmpty(e.Metrics),
		"suggested_checks": checks,
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
