package scoring

import (
	"strings"

	"github.com/psyscore/psyscore/pkg/instrument"
)

// SubscaleSum scores each contiguous group independently and composes the
// severity as "<Group>: <Label>" fragments in declaration order.
type SubscaleSum struct{}

func (SubscaleSum) Kind() instrument.RuleKind { return instrument.RuleSubscaleSum }

func (SubscaleSum) Evaluate(in *instrument.Instrument, answers []int) ScoreResult {
	cfg := in.Scoring.Subscales
	result := ScoreResult{
		Subscales:          make(map[string]int, len(cfg.Groups)),
		SubscaleSeverities: make(map[string]string, len(cfg.Groups)),
		SubscaleOrder:      make([]string, 0, len(cfg.Groups)),
	}

	parts := make([]string, 0, len(cfg.Groups))
	total := 0
	for _, g := range cfg.Groups {
		s := sum(answers[g.Span.Start:g.Span.End])
		label := Classify(g.SeverityLevels, s)
		result.Subscales[g.Name] = s
		result.SubscaleSeverities[g.Name] = label
		result.SubscaleOrder = append(result.SubscaleOrder, g.Name)
		parts = append(parts, g.Name+": "+label)
		total += s
	}

	if cfg.Aggregate != "" {
		result.Score = result.Subscales[cfg.Aggregate]
	} else {
		result.Score = total
	}
	result.Severity = strings.Join(parts, cfg.JoinSeparator())
	return result
}
