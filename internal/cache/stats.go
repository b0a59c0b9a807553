package cache

import "fmt"

// Stats summarizes the buffered entries.
type Stats struct {
	TotalErrors          int            `json:"total_errors"`
	ErrorDistribution    map[string]int `json:"error_distribution"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
	FirstError           Entry          `json:"first_error"`
	LatestError          Entry          `json:"latest_error"`
}

// ComputeStats counts entries by error_name and raw severity, with missing
// values counted as "Unknown". Entries must be oldest first.
func ComputeStats(entries []Entry) Stats {
	s := Stats{
		TotalErrors:          len(entries),
		ErrorDistribution:    map[string]int{},
		SeverityDistribution: map[string]int{},
	}
	for _, e := range entries {
		s.ErrorDistribution[label(e["error_name"])]++
		s.SeverityDistribution[label(e["severity"])]++
	}
	if len(entries) > 0 {
		s.FirstError = entries[0]
		s.LatestError = entries[len(entries)-1]
	}
	return s
}

func label(v any) string {
	switch x := v.(type) {
	case nil:
		return "Unknown"
	case string:
		if x == "" {
			return "Unknown"
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}
