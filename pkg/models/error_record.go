package models

import "time"

// ErrorRecord is one ingested incident. Payload holds the raw inbound body
// verbatim (context, metrics, suggested checks, ...).
type ErrorRecord struct {
	ID         int64          `db:"id"          json:"id"`
	Name       string         `db:"name"        json:"name"`
	StatusCode *int           `db:"status_code" json:"status_code,omitempty"`
	Severity   Severity       `db:"severity"    json:"severity"`
	Detail     *string        `db:"detail"      json:"detail,omitempty"`
	Payload    map[string]any `db:"payload"     json:"payload"`
	CreatedAt  time.Time      `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"  json:"updated_at"`
}
