// Package api implements the psyscore REST API.
// It scores submissions and encodes feature vectors; it keeps no state
// between requests.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/psyscore/psyscore/internal/export"
	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/instrument"
	"github.com/psyscore/psyscore/pkg/scoring"
)

// maxBodyBytes bounds request bodies. A full submission is a few KB.
const maxBodyBytes = 1 << 20

// Handler is the top-level API handler for the scoring service.
type Handler struct {
	catalog   *instrument.Catalog
	calc      *scoring.Calculator
	evaluator *assessment.Evaluator
	encoder   *features.Encoder
	sink      export.Sink
	log       *zap.Logger
}

// NewHandler creates a new API handler. sink may be nil, in which case
// assessments are scored but not published.
func NewHandler(calc *scoring.Calculator, sink export.Sink, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		catalog:   calc.Catalog(),
		calc:      calc,
		evaluator: assessment.NewEvaluator(calc, log.Named("assessment")),
		encoder:   features.NewEncoder(calc.Catalog()),
		sink:      sink,
		log:       log,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)

	// Catalog
	mux.HandleFunc("GET /v1/instruments", h.handleListInstruments)
	mux.HandleFunc("GET /v1/instruments/{id}", h.handleGetInstrument)
	mux.HandleFunc("GET /v1/layout", h.handleLayout)

	// Scoring
	mux.HandleFunc("POST /v1/instruments/{id}/score", h.handleScore)
	mux.HandleFunc("POST /v1/assessments", h.handleAssess)
	mux.HandleFunc("POST /v1/assessments/flat", h.handleAssessFlat)
	mux.HandleFunc("POST /v1/encode", h.handleEncode)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"instruments": h.catalog.Len(),
		"policy":      h.calc.Policy(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeScoringError maps scoring failures to HTTP status codes.
func writeScoringError(w http.ResponseWriter, err error) {
	var answerErr *scoring.AnswerError
	switch {
	case errors.Is(err, instrument.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &answerErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
