package scoring

import "github.com/psyscore/psyscore/pkg/instrument"

// CriteriaScreen evaluates a compound screening rule. Every criterion must pass
// for the screen to be positive.
//
// A binary screen scores 1 or 0. A screen that reports its sum scores the raw
// answer total; when negative it is labelled from the severity ranges, falling
// back to the negative label if no range matches.
type CriteriaScreen struct{}

func (CriteriaScreen) Kind() instrument.RuleKind { return instrument.RuleCriteriaScreen }

func (CriteriaScreen) Evaluate(in *instrument.Instrument, answers []int) ScoreResult {
	cfg := in.Scoring.Screen
	outcome := &ScreenOutcome{Positive: true}

	for _, c := range cfg.Criteria {
		cr := evaluateCriterion(c, answers)
		outcome.Criteria = append(outcome.Criteria, cr)
		if !cr.Met {
			outcome.Positive = false
		}
	}

	result := ScoreResult{Screen: outcome}
	switch {
	case cfg.ReportsSum():
		result.Score = sum(answers)
		if outcome.Positive {
			result.Severity = cfg.PositiveLabel
		} else if label := Classify(in.Scoring.SeverityLevels, result.Score); label != InvalidScore {
			result.Severity = label
		} else {
			result.Severity = cfg.NegativeLabel
		}
	case outcome.Positive:
		result.Score = 1
		result.Severity = cfg.PositiveLabel
	default:
		result.Score = 0
		result.Severity = cfg.NegativeLabel
	}
	return result
}

func evaluateCriterion(c instrument.Criterion, answers []int) CriterionResult {
	count := 0
	for i, a := range answers[c.Span.Start:c.Span.End] {
		if a == Unanswered {
			continue
		}
		if c.Satisfied(i, a) {
			count++
		}
	}
	return CriterionResult{
		Name:     c.Name,
		Count:    count,
		Required: c.MinCount,
		Met:      count >= c.MinCount,
	}
}
