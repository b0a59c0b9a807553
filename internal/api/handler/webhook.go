package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/renatobalun/langchain-error/internal/ai"
	mw "github.com/renatobalun/langchain-error/internal/api/middleware"
	"github.com/renatobalun/langchain-error/internal/api/response"
	"github.com/renatobalun/langchain-error/internal/cache"
	"github.com/renatobalun/langchain-error/internal/ingest"
)

const maxPayloadBytes = 1 << 20

// Ingester defines the interface the webhook handler depends on.
type Ingester interface {
	Ingest(ctx context.Context, payload map[string]any) (int64, error)
}

type webhookResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ErrorID       int64  `json:"error_id"`
	SourceErrorID any    `json:"source_error_id,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// NewWebhookHandler returns an http.HandlerFunc for POST /webhook/error.
// The payload is buffered for the recent-errors views before ingestion runs,
// so it shows up there even when analysis fails.
func NewWebhookHandler(svc Ingester, buf cache.Buffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodePayload(w, r)
		if !ok {
			return
		}

		entry := make(cache.Entry, len(payload)+1)
		maps.Copy(entry, payload)
		entry["received_at"] = time.Now().UTC().Format(time.RFC3339Nano)
		if err := buf.Push(r.Context(), entry); err != nil {
			slog.Warn("failed to buffer received error", "error", err)
		}

		requestID, _ := mw.GetRequestID(r)
		slog.Info("error received",
			"request_id", requestID,
			"source_error_id", payload["error_id"],
			"error_name", payload["error_name"],
			"severity", payload["severity"],
		)

		errorID, err := svc.Ingest(r.Context(), payload)
		if err != nil {
			writeIngestError(w, errorID, err)
			return
		}

		response.Plain(w, http.StatusOK, webhookResponse{
			Status:        "success",
			Message:       "Error received, analyzed and stored",
			ErrorID:       errorID,
			SourceErrorID: payload["error_id"],
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				"Request body exceeds 1 MiB", nil)
			return nil, false
		}
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return nil, false
	}
	payload, ok := body.(map[string]any)
	if !ok {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Body must be a JSON object", nil)
		return nil, false
	}
	return payload, true
}

func writeIngestError(w http.ResponseWriter, errorID int64, err error) {
	details := map[string]any{}
	if errorID > 0 {
		details["error_id"] = errorID
	}
	var serr *ingest.StageError
	if errors.As(err, &serr) {
		details["stage"] = string(serr.Stage)
	}
	if len(details) == 0 {
		details = nil
	}

	slog.Error("ingestion failed", "error", err, "error_id", errorID)

	switch {
	case errors.Is(err, ingest.ErrInvalidPayload):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Body must be a JSON object", details)
	case errors.Is(err, ai.ErrSchemaViolation), errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "AI_INVALID_OUTPUT",
			"The AI provider returned output that does not match the expected shape", details)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", details)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"AI analysis took too long and was cancelled", details)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", details)
	}
}
