package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/renatobalun/langchain-error/internal/api/response"
	"github.com/renatobalun/langchain-error/internal/store"
	"github.com/renatobalun/langchain-error/pkg/models"
)

// ErrorReader is the read side of the store the stored-error handlers use.
type ErrorReader interface {
	GetError(ctx context.Context, id int64) (*models.ErrorRecord, error)
	ListErrors(ctx context.Context, filter store.ErrorFilter) ([]*models.ErrorRecord, int, error)
	GetErrorAnalysis(ctx context.Context, errorID int64) (*models.AnalysisRecord, error)
	GetErrorSolution(ctx context.Context, errorID int64) (*models.SolutionRecord, error)
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// NewListErrorsHandler returns an http.HandlerFunc for GET /api/v1/errors.
func NewListErrorsHandler(s ErrorReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, ok := intParam(w, q.Get("page"), 1, "page")
		if !ok {
			return
		}
		limit, ok := intParam(w, q.Get("limit"), defaultPageLimit, "limit")
		if !ok {
			return
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		sev := models.Severity(q.Get("severity"))
		if sev != "" && !sev.Valid() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"severity must be one of high, medium, low", nil)
			return
		}

		records, total, err := s.ListErrors(r.Context(), store.ErrorFilter{
			Severity: sev,
			Name:     q.Get("name"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Collection(w, records, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

type errorDetail struct {
	Error    *models.ErrorRecord    `json:"error"`
	Analysis *models.AnalysisRecord `json:"analysis"`
	Solution *models.SolutionRecord `json:"solution"`
}

// NewGetErrorHandler returns an http.HandlerFunc for GET /api/v1/errors/{errorID}.
func NewGetErrorHandler(s ErrorReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "errorID"), 10, 64)
		if err != nil || id <= 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid error ID", nil)
			return
		}

		rec, err := s.GetError(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Error not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		detail := errorDetail{Error: rec}
		if detail.Analysis, err = s.GetErrorAnalysis(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if detail.Solution, err = s.GetErrorSolution(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, detail)
	}
}

func intParam(w http.ResponseWriter, raw string, def int, name string) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			name+" must be a positive integer", nil)
		return 0, false
	}
	return n, true
}
