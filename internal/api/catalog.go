package api

import (
	"net/http"

	"github.com/psyscore/psyscore/pkg/instrument"
)

type instrumentSummary struct {
	ID          string              `json:"id"`
	ShortName   string              `json:"short_name"`
	Description string              `json:"description,omitempty"`
	Aliases     []string            `json:"aliases,omitempty"`
	Rule        instrument.RuleKind `json:"rule"`
	Questions   int                 `json:"questions"`
	Offset      int                 `json:"offset"`
}

func (h *Handler) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	all := h.catalog.All()
	out := make([]instrumentSummary, 0, len(all))
	for _, in := range all {
		out = append(out, instrumentSummary{
			ID:          in.ID,
			ShortName:   in.ShortName,
			Description: in.Description,
			Aliases:     in.Aliases,
			Rule:        in.Scoring.Rule,
			Questions:   in.QuestionCount(),
			Offset:      in.Offset,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"instruments": out})
}

func (h *Handler) handleGetInstrument(w http.ResponseWriter, r *http.Request) {
	in, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *Handler) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"length": instrument.SlotCount,
		"slots":  h.encoder.Layout(),
	})
}
