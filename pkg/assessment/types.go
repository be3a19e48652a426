// Package assessment ties scoring and feature encoding together for one
// pre-assessment submission: a set of completed instruments and their answers.
package assessment

import (
	"time"

	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/scoring"
)

// Submission is one user's completed pre-assessment.
type Submission struct {
	ID          string    `json:"id"`
	Instruments []string  `json:"instruments"` // in the order answers were collected
	Answers     []int     `json:"answers"`     // concatenated per instrument, same order
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
}

// Report is the scored form of a Submission.
// Immutable once produced.
type Report struct {
	ID           string                 `json:"id"`
	SubmissionID string                 `json:"submission_id,omitempty"`
	Instruments  []string               `json:"instruments"` // canonical ids
	Results      []*scoring.ScoreResult `json:"results"`
	Vector       features.Vector        `json:"vector"`
	ScoredAt     time.Time              `json:"scored_at"`
}

// Severities returns the severity label of every scored instrument keyed by id.
func (r *Report) Severities() map[string]string {
	out := make(map[string]string, len(r.Results))
	for _, res := range r.Results {
		out[res.Instrument] = res.Severity
	}
	return out
}

// Scores returns the numeric score of every scored instrument keyed by id.
func (r *Report) Scores() map[string]int {
	out := make(map[string]int, len(r.Results))
	for _, res := range r.Results {
		out[res.Instrument] = res.Score
	}
	return out
}

// Result returns the result for an instrument id, or nil.
func (r *Report) Result(id string) *scoring.ScoreResult {
	for _, res := range r.Results {
		if res.Instrument == id {
			return res
		}
	}
	return nil
}
