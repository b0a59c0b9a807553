package generator

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	mw "github.com/renatobalun/langchain-error/internal/api/middleware"
	"github.com/renatobalun/langchain-error/internal/api/response"
)

// Server exposes the generator's state and a manual send trigger over HTTP.
type Server struct {
	catalog    Catalog
	rotation   *Rotation
	sender     Sender
	webhookURL string
	interval   time.Duration
	now        func() time.Time
}

func NewServer(c Catalog, r *Rotation, s Sender, webhookURL string, interval time.Duration) *Server {
	return &Server{
		catalog:    c,
		rotation:   r,
		sender:     s,
		webhookURL: webhookURL,
		interval:   interval,
		now:        time.Now,
	}
}

// Handler builds the status router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/", s.status)
	r.Get("/current-error", s.currentError)
	r.Get("/all-errors", s.allErrors)
	r.Post("/send-error", s.sendError)
	return r
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	response.Plain(w, http.StatusOK, map[string]any{
		"status":            "running",
		"service":           "Error Generator",
		"webhook_url":       s.webhookURL,
		"current_error":     s.catalog[s.rotation.Current()].Name,
		"total_error_types": len(s.catalog),
		"rotation_interval": s.interval.String(),
		"endpoints": map[string]string{
			"send_error":    "POST /send-error",
			"current_error": "GET /current-error",
			"all_errors":    "GET /all-errors",
		},
	})
}

func (s *Server) currentError(w http.ResponseWriter, _ *http.Request) {
	index := s.rotation.Current()
	response.Plain(w, http.StatusOK, BuildPayload(s.catalog[index], index, s.now()))
}

type catalogItem struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Severity   string `json:"severity"`
	StatusCode int    `json:"status_code"`
}

func (s *Server) allErrors(w http.ResponseWriter, _ *http.Request) {
	items := make([]catalogItem, len(s.catalog))
	for i, e := range s.catalog {
		items[i] = catalogItem{Index: i, Name: e.Name, Severity: e.Severity, StatusCode: e.StatusCode}
	}
	response.Plain(w, http.StatusOK, map[string]any{
		"total":  len(s.catalog),
		"errors": items,
	})
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request) {
	payload, status, err := SendCurrent(r.Context(), s.sender, s.catalog, s.rotation, s.now())
	body := map[string]any{
		"error_name":     payload["error_name"],
		"webhook_url":    s.webhookURL,
		"webhook_status": status,
	}
	if err != nil {
		body["success"] = false
		body["message"] = "Failed to send error to webhook"
		body["reason"] = err.Error()
		response.Plain(w, http.StatusBadGateway, body)
		return
	}
	body["success"] = true
	body["message"] = "Error sent successfully to webhook"
	response.Plain(w, http.StatusOK, body)
}
