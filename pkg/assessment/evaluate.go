package assessment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/instrument"
	"github.com/psyscore/psyscore/pkg/scoring"
)

// Evaluator scores submissions. It is safe for concurrent use.
type Evaluator struct {
	calc *scoring.Calculator
	enc  *features.Encoder
	log  *zap.Logger
	now  func() time.Time
}

// NewEvaluator creates an evaluator whose calculator and encoder share one catalog.
func NewEvaluator(calc *scoring.Calculator, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{
		calc: calc,
		enc:  features.NewEncoder(calc.Catalog()),
		log:  log,
		now:  time.Now,
	}
}

// Evaluate splits the submission's flat answers per instrument, scores each
// one, and encodes the feature vector. Nothing is returned on error.
func (e *Evaluator) Evaluate(sub *Submission) (*Report, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission is nil")
	}

	report := &Report{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		Results:      make([]*scoring.ScoreResult, 0, len(sub.Instruments)),
	}

	seen := make(map[string]bool, len(sub.Instruments))
	cursor := 0
	for _, id := range sub.Instruments {
		in, err := e.calc.Catalog().Get(id)
		if err != nil {
			return nil, fmt.Errorf("evaluating submission %s: %w", sub.ID, err)
		}
		if seen[in.ID] {
			return nil, fmt.Errorf("evaluating submission %s: instrument %q selected more than once", sub.ID, in.ID)
		}
		seen[in.ID] = true

		answers := window(sub.Answers, cursor, len(in.Questions))
		cursor += len(in.Questions)

		res, err := e.calc.ComputeInstrument(in, answers)
		if err != nil {
			return nil, fmt.Errorf("evaluating submission %s: %w", sub.ID, err)
		}
		report.Instruments = append(report.Instruments, in.ID)
		report.Results = append(report.Results, res)
	}

	if cursor < len(sub.Answers) {
		e.log.Warn("submission has trailing answers",
			zap.String("submission", sub.ID),
			zap.Int("expected", cursor),
			zap.Int("got", len(sub.Answers)),
		)
	}

	vec, err := e.enc.Encode(report.Instruments, sub.Answers)
	if err != nil {
		return nil, fmt.Errorf("evaluating submission %s: %w", sub.ID, err)
	}
	report.Vector = vec
	report.ScoredAt = e.now().UTC()

	e.log.Debug("scored submission",
		zap.String("submission", sub.ID),
		zap.String("report", report.ID),
		zap.Int("instruments", len(report.Results)),
	)
	return report, nil
}

// ScoreFlat scores every catalog instrument from a full feature-vector-shaped
// answer array, reading each instrument at its own offset. A short array
// scores the missing positions as unanswered.
func (e *Evaluator) ScoreFlat(flat []int) ([]*scoring.ScoreResult, error) {
	if len(flat) > features.Length {
		return nil, fmt.Errorf("flat answers have %d values, want at most %d", len(flat), features.Length)
	}
	all := e.calc.Catalog().All()
	results := make([]*scoring.ScoreResult, 0, len(all))
	for _, in := range all {
		res, err := e.calc.ComputeInstrument(in, slotAnswers(flat, in))
		if err != nil {
			return nil, fmt.Errorf("scoring %s from flat answers: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// window returns up to n values of s starting at start.
func window(s []int, start, n int) []int {
	if start >= len(s) {
		return nil
	}
	end := start + n
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

func slotAnswers(flat []int, in *instrument.Instrument) []int {
	out := make([]int, len(in.Questions))
	for i := range out {
		if p := in.Offset + i; p < len(flat) {
			out[i] = flat[p]
		} else {
			out[i] = scoring.Unanswered
		}
	}
	return out
}
