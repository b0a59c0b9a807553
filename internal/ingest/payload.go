package ingest

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/renatobalun/langchain-error/internal/analysis"
	"github.com/renatobalun/langchain-error/pkg/models"
)

const (
	unknownErrorName = "UnknownError"
	defaultSeverity  = "error"
	maxNameLength    = 200
)

// RecordFromPayload maps a raw webhook payload onto an ErrorRecord. The
// payload itself is kept verbatim.
func RecordFromPayload(payload map[string]any) *models.ErrorRecord {
	rec := &models.ErrorRecord{
		Name:     truncateString(errorName(payload), maxNameLength),
		Payload:  payload,
		Severity: analysis.NormalizeSeverity(defaultSeverity),
	}

	if raw, ok := payload["severity"]; ok {
		s, _ := raw.(string)
		rec.Severity = analysis.NormalizeSeverity(s)
	}
	if code, ok := statusCode(payload["status_code"]); ok {
		rec.StatusCode = &code
	}
	if detail, ok := detailText(payload["detail"]); ok {
		rec.Detail = &detail
	}
	return rec
}

func errorName(payload map[string]any) string {
	for _, key := range []string{"error_name", "name"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return unknownErrorName
}

// statusCode reads an integral status code that fits the INTEGER column.
func statusCode(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return int32Range(int64(n))
	case int64:
		return int32Range(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int32Range(i)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 32)
		return int(i), err == nil
	default:
		return 0, false
	}
}

func int32Range(n int64) (int, bool) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func detailText(v any) (string, bool) {
	switch d := v.(type) {
	case nil:
		return "", false
	case string:
		return d, true
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// truncateString truncates s to maxLen runes.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}
