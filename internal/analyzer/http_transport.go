package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abdorenouni/WEB-TESTER/internal/model"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/errs"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/middleware"
)

const (
	msgInvalidBody = "Invalid request body. Please send a JSON object with a \"url\" field."
	msgUnexpected  = "Analysis failed"
)

// Transport handles HTTP requests for website analysis.
type Transport struct {
	service *Service
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, logger *slog.Logger) *Transport {
	return &Transport{service: service, logger: logger}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", t.handleAnalyze)
	mux.HandleFunc("GET /health", t.handleHealth)
}

// Handler returns the routes wrapped in the request ID, access log, and CORS
// middleware, ready to serve.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()
	t.RegisterRoutes(mux)
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(t.logger),
		middleware.CORS,
	)
}

func (t *Transport) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req model.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.logger.Warn("rejecting request body", "error", err)
		t.renderError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	// The upstream call inherits the request context and no deadline of its own.
	report, err := t.service.Analyze(r.Context(), req.URL)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, model.Envelope{Success: true, Data: report})
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		t.renderError(w, appErr.Kind.HTTPStatus(), appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, msgUnexpected)
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"` + msgUnexpected + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.Envelope{Success: false, Error: message})
}
