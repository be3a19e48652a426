package scoring

import "github.com/psyscore/psyscore/pkg/instrument"

// SimpleSum scores an instrument as the plain sum of its answers.
type SimpleSum struct{}

func (SimpleSum) Kind() instrument.RuleKind { return instrument.RuleSimpleSum }

func (SimpleSum) Evaluate(in *instrument.Instrument, answers []int) ScoreResult {
	score := sum(answers)
	return ScoreResult{
		Score:    score,
		Severity: Classify(in.Scoring.SeverityLevels, score),
	}
}
