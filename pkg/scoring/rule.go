package scoring

import "github.com/psyscore/psyscore/pkg/instrument"

// Rule is the interface every scoring strategy implements.
type Rule interface {
	// Kind returns the rule kind this strategy handles.
	Kind() instrument.RuleKind
	// Evaluate scores answers for in. answers always has exactly one entry per
	// question; missing answers have already been replaced with Unanswered.
	Evaluate(in *instrument.Instrument, answers []int) ScoreResult
}

// DefaultRules returns the standard strategy for each rule kind.
func DefaultRules() []Rule {
	return []Rule{
		SimpleSum{},
		SubscaleSum{},
		CriteriaScreen{},
	}
}

// value returns the contribution of a single answer to a sum.
func value(a int) int {
	if a < 0 {
		return 0
	}
	return a
}

func sum(answers []int) int {
	total := 0
	for _, a := range answers {
		total += value(a)
	}
	return total
}

func answered(answers []int) int {
	n := 0
	for _, a := range answers {
		if a != Unanswered {
			n++
		}
	}
	return n
}
