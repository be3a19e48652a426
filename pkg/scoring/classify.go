package scoring

import "github.com/psyscore/psyscore/pkg/instrument"

// InvalidScore is returned by Classify when no range contains the score.
const InvalidScore = "Invalid score"

// Classify returns the label of the first range containing score, scanning in
// declaration order. It never fails: an out-of-domain score yields InvalidScore.
func Classify(levels []instrument.SeverityLevel, score int) string {
	for _, l := range levels {
		if l.Contains(score) {
			return l.Label
		}
	}
	return InvalidScore
}
