package handler

import (
	"net/http"
	"strconv"

	"github.com/renatobalun/langchain-error/internal/api/response"
	"github.com/renatobalun/langchain-error/internal/cache"
)

const defaultRecentLimit = 10

type messageResponse struct {
	Message string `json:"message"`
}

var noErrorsYet = messageResponse{Message: "No errors received yet"}

// NewStatusHandler returns an http.HandlerFunc for GET /.
func NewStatusHandler(buf cache.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := buf.Len(r.Context())
		if err != nil {
			bufferUnavailable(w)
			return
		}
		response.Plain(w, http.StatusOK, map[string]any{
			"status":                "running",
			"service":               "Webhook Receiver",
			"total_errors_received": n,
			"endpoints": map[string]string{
				"webhook":       "POST /webhook/error",
				"errors":        "GET /errors",
				"latest":        "GET /errors/latest",
				"stats":         "GET /errors/stats",
				"clear":         "DELETE /errors",
				"stored_errors": "GET /api/v1/errors",
				"health":        "GET /api/v1/health",
			},
		})
	}
}

// NewRecentErrorsHandler returns an http.HandlerFunc for GET /errors.
func NewRecentErrorsHandler(buf cache.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRecentLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a positive integer", nil)
				return
			}
			limit = n
		}

		total, err := buf.Len(r.Context())
		if err != nil {
			bufferUnavailable(w)
			return
		}
		entries, err := buf.Recent(r.Context(), limit)
		if err != nil {
			bufferUnavailable(w)
			return
		}
		response.Plain(w, http.StatusOK, map[string]any{
			"total":  total,
			"errors": entries,
		})
	}
}

// NewLatestErrorHandler returns an http.HandlerFunc for GET /errors/latest.
func NewLatestErrorHandler(buf cache.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := buf.Recent(r.Context(), 1)
		if err != nil {
			bufferUnavailable(w)
			return
		}
		if len(entries) == 0 {
			response.Plain(w, http.StatusOK, noErrorsYet)
			return
		}
		response.Plain(w, http.StatusOK, entries[0])
	}
}

// NewErrorStatsHandler returns an http.HandlerFunc for GET /errors/stats.
func NewErrorStatsHandler(buf cache.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := buf.Recent(r.Context(), buf.Capacity())
		if err != nil {
			bufferUnavailable(w)
			return
		}
		if len(entries) == 0 {
			response.Plain(w, http.StatusOK, noErrorsYet)
			return
		}
		response.Plain(w, http.StatusOK, cache.ComputeStats(entries))
	}
}

// NewClearErrorsHandler returns an http.HandlerFunc for DELETE /errors.
// Only the buffer is cleared; stored errors are untouched.
func NewClearErrorsHandler(buf cache.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := buf.Clear(r.Context())
		if err != nil {
			bufferUnavailable(w)
			return
		}
		remaining, err := buf.Len(r.Context())
		if err != nil {
			bufferUnavailable(w)
			return
		}
		response.Plain(w, http.StatusOK, map[string]any{
			"message":   "Cleared " + strconv.Itoa(n) + " errors",
			"remaining": remaining,
		})
	}
}

func bufferUnavailable(w http.ResponseWriter) {
	response.Error(w, http.StatusServiceUnavailable, "BUFFER_UNAVAILABLE",
		"The recent-errors buffer is not available", nil)
}
