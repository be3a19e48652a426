package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/psyscore/psyscore/internal/export"
	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/scoring"
)

type scoreRequest struct {
	Answers []int `json:"answers"`
}

type flatResponse struct {
	Results []*scoring.ScoreResult `json:"results"`
}

type encodeRequest struct {
	Instruments []string `json:"instruments"`
	Answers     []int    `json:"answers"`
}

type encodeResponse struct {
	Length int   `json:"length"`
	Vector []int `json:"vector"`
}

// handleScore scores a single instrument.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.calc.Compute(r.PathValue("id"), req.Answers)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAssess scores every instrument of a submission, encodes the feature
// vector, and publishes the report when a sink is configured.
func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	var sub assessment.Submission
	if !decodeBody(w, r, &sub) {
		return
	}

	report, err := h.evaluator.Evaluate(&sub)
	if err != nil {
		writeScoringError(w, err)
		return
	}

	if h.sink != nil {
		if err := export.Publish(r.Context(), h.sink, report); err != nil {
			h.log.Error("publish failed", zap.String("report", report.ID), zap.Error(err))
			writeError(w, http.StatusBadGateway, "failed to publish report")
			return
		}
	}

	h.log.Info("assessment scored",
		zap.String("report", report.ID),
		zap.String("submission", report.SubmissionID),
		zap.Int("instruments", len(report.Results)),
	)
	writeJSON(w, http.StatusCreated, report)
}

// handleAssessFlat scores every catalog instrument from a vector-shaped answer
// array, each instrument read at its own offset.
func (h *Handler) handleAssessFlat(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	results, err := h.evaluator.ScoreFlat(req.Answers)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flatResponse{Results: results})
}

func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vec, err := h.encoder.Encode(req.Instruments, req.Answers)
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{Length: features.Length, Vector: vec.Slice()})
}
